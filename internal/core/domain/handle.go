package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewHandle returns an opaque token used for intra-document cross-references
// in the Gramps XML output. Handles carry no ordering semantics; they only
// need to be unique within one document. They are assigned eagerly at entity
// creation so that serializer access order has no side effects.
func NewHandle() string {
	u := uuid.New()
	return "_" + hex.EncodeToString(u[:])
}
