package domain

// FactKind classifies an event or attribute. Kinds with a GEDCOM tag map to
// that tag; FactCustom carries free text from the remote record; FactOther is
// a recognized event type without a dedicated tag (emitted as EVEN);
// FactUnrecognized is remote schema drift and is dropped from output.
type FactKind int

const (
	FactUnrecognized FactKind = iota
	FactBirth
	FactChristening
	FactDeath
	FactBurial
	FactCremation
	FactBaptism
	FactMarriage
	FactDivorce
	FactResidence
	FactOccupation
	FactImmigration
	FactEmigration
	FactNaturalization
	FactMilitaryService
	FactReligion
	FactCustom
	FactOther
)

// DateQualifier qualifies a normalized date value.
type DateQualifier int

const (
	DateExact DateQualifier = iota
	DateAbout
	DateBefore
	DateAfter
)

// String returns the Gramps XML date type attribute, "" for exact dates.
func (q DateQualifier) String() string {
	switch q {
	case DateAbout:
		return "about"
	case DateBefore:
		return "before"
	case DateAfter:
		return "after"
	default:
		return ""
	}
}

// factTags maps fact kinds to their GEDCOM tag. Kinds not listed are emitted
// through the EVEN fallback or dropped.
var factTags = map[FactKind]string{
	FactBirth:           "BIRT",
	FactChristening:     "CHR",
	FactDeath:           "DEAT",
	FactBurial:          "BURI",
	FactCremation:       "CREM",
	FactBaptism:         "BAPM",
	FactMarriage:        "MARR",
	FactDivorce:         "DIV",
	FactResidence:       "RESI",
	FactOccupation:      "OCCU",
	FactImmigration:     "IMMI",
	FactEmigration:      "EMIG",
	FactNaturalization:  "NATU",
	FactMilitaryService: "_MILT",
}

// Tag returns the GEDCOM tag for the kind, or "" when it has none.
func (k FactKind) Tag() string {
	return factTags[k]
}

// Fact is a single event or attribute attached to a person or family.
type Fact struct {
	Handle string
	ID     string // scope-prefixed composite id
	Kind   FactKind
	// Label is the display name of the fact type: the vocabulary suffix for
	// recognized types, the decoded text for custom types.
	Label string
	Value string

	Date          string
	DateQualifier DateQualifier

	Place *Place
	Note  *Note
}
