package domain

import "strconv"

// NoteKind describes where a note came from; it is used purely for
// presentation in the XML output.
type NoteKind int

const (
	NoteSource NoteKind = iota
	NoteEvent
	NoteName
	NotePerson
	NoteMarriage
	NoteContribution
)

// String returns the Gramps XML note type.
func (k NoteKind) String() string {
	switch k {
	case NoteEvent:
		return "Event Note"
	case NoteName:
		return "Name Note"
	case NotePerson:
		return "Person Note"
	case NoteMarriage:
		return "Marriage Note"
	case NoteContribution:
		return "Contribution Note"
	default:
		return "Source Note"
	}
}

// Note is a free-text annotation. Sequence numbers are assigned per scope
// prefix so ids stay stable regardless of global creation order.
type Note struct {
	Handle string
	Scope  string // owning-entity scope prefix, may be empty
	Seq    int
	Kind   NoteKind
	Text   string
}

// ID returns the composite identifier used in output records.
func (n *Note) ID() string {
	if n.Scope != "" {
		return n.Scope + "_" + strconv.Itoa(n.Seq)
	}
	return strconv.Itoa(n.Seq)
}
