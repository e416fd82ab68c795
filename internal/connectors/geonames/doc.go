// Package geonames resolves place names through the GeoNames web services:
// searchJSON for the best candidate and hierarchyJSON for the
// administrative chain. Responses can be cached through a ResponseCache so
// repeated runs stay off the network.
package geonames
