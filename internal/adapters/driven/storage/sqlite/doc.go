// Package sqlite provides the on-disk gazetteer response cache. Entries are
// keyed by request URL and expire after a day, so repeated runs over the
// same tree resolve their places without touching the network.
package sqlite
