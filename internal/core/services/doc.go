// Package services holds the application core: the entity registry that owns
// every identifier in the graph, the place resolver, and the graph builder
// that drives traversal against a data source through the driven ports.
package services
