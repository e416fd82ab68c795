// Package connectors groups the outbound service clients. Each subpackage
// implements one driven port against a specific remote service: familysearch
// for the tree data source, geonames for place resolution.
package connectors
