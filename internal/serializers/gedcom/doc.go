// Package gedcom serializes a finished entity graph as a GEDCOM 5.5.1
// document. Output order is deterministic: individuals by sequence number,
// families and sources by id, notes by composite id with adjacent
// duplicates collapsed.
package gedcom
