// Package domain contains the genealogical entity model.
//
// Entities are created once and keep their identity for the whole run;
// fields are filled in incrementally as more remote data arrives, and the
// serializers only ever read. Identifier assignment and deduplication are
// owned by the EntityRegistry in the services package, not by the entities
// themselves.
package domain
