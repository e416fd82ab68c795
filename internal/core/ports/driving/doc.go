// Package driving defines the inbound ports of the core: the graph builder
// operations the CLI drives and the export surface the serializers provide.
package driving
