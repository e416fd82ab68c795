// Package driven defines the outbound ports of the core: the tree data
// source, the geocoding provider, the response cache and the settings store.
// Adapters under internal/connectors and internal/adapters/driven implement
// these interfaces.
package driven
