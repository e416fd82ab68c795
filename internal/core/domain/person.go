package domain

import "strconv"

// Gender is the sex recorded for an individual.
type Gender int

const (
	GenderUnset Gender = iota
	GenderMale
	GenderFemale
	GenderUnknown
)

// Tag returns the GEDCOM SEX value, or "" when unset.
func (g Gender) Tag() string {
	switch g {
	case GenderMale:
		return "M"
	case GenderFemale:
		return "F"
	case GenderUnknown:
		return "U"
	default:
		return ""
	}
}

// ParentPair is a raw parent relationship edge as returned by the tree
// service, before any Family entity exists. Either side may be empty.
type ParentPair struct {
	Father string
	Mother string
}

// CoupleEdge is a raw spousal relationship edge.
type CoupleEdge struct {
	Person1        string
	Person2        string
	RelationshipID string
}

// ChildEdge is a raw child relationship edge seen from a parent.
type ChildEdge struct {
	Father string
	Mother string
	Child  string
}

// Person is an individual in the tree.
type Person struct {
	Handle string
	ID     string // remote tree-service id, may be empty
	Seq    int    // registry-assigned sequence number

	Name       *Name
	Nicknames  []*Name
	Birthnames []*Name
	AKA        []*Name
	Married    []*Name

	Gender Gender
	Living bool

	Facts     []*Fact
	Notes     []*Note
	Citations []*Citation
	Memories  []*Memory

	Baptism          *Ordinance
	Confirmation     *Ordinance
	Initiatory       *Ordinance
	Endowment        *Ordinance
	SealingToParents *Ordinance

	FamiliesAsChild  []*Family
	FamiliesAsSpouse []*Family

	// Raw relationship edges, used only during traversal before Family
	// entities are materialized.
	Parents  map[ParentPair]struct{}
	Spouses  map[CoupleEdge]struct{}
	Children map[ChildEdge]struct{}
}

// RecordID is the identifier used in output records: the remote id when
// present, otherwise the sequence number.
func (p *Person) RecordID() string {
	if p.ID != "" {
		return p.ID
	}
	return strconv.Itoa(p.Seq)
}

// AddFamilyAsChild links the person as a child of fam, once.
func (p *Person) AddFamilyAsChild(fam *Family) {
	for _, f := range p.FamiliesAsChild {
		if f == fam {
			return
		}
	}
	p.FamiliesAsChild = append(p.FamiliesAsChild, fam)
}

// AddFamilyAsSpouse links the person as a spouse in fam, once.
func (p *Person) AddFamilyAsSpouse(fam *Family) {
	for _, f := range p.FamiliesAsSpouse {
		if f == fam {
			return
		}
	}
	p.FamiliesAsSpouse = append(p.FamiliesAsSpouse, fam)
}

// AltNames returns all alternate names in a stable order.
func (p *Person) AltNames() []*Name {
	out := make([]*Name, 0, len(p.Nicknames)+len(p.Birthnames)+len(p.AKA)+len(p.Married))
	out = append(out, p.Nicknames...)
	out = append(out, p.Birthnames...)
	out = append(out, p.AKA...)
	out = append(out, p.Married...)
	return out
}
