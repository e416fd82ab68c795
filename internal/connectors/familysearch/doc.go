// Package familysearch implements the tree data source against the
// FamilySearch API: web login with OAuth2 token exchange, the batched
// persons endpoint and the per-record detail endpoints. Missing or denied
// records surface as no data, never as traversal failures.
package familysearch
