// Package gedcomx declares the wire payload types and vocabulary of the
// FamilySearch tree service, which speaks the GedcomX JSON media type.
// There is no maintained Go SDK for this API, so the payload surface the
// exporter consumes is declared here.
package gedcomx
