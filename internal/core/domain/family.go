package domain

// SourceRef attaches a source to a record together with the optional quote
// text carried on the source reference.
type SourceRef struct {
	Source *Source
	Quote  string
}

// Family is a couple plus their children. Identity is a pure function of the
// (husband, wife) pair; see services.Registry.EnsureFamily.
type Family struct {
	Handle string
	ID     string // FAM_<husband>-<wife>, UNK for an absent side
	// RelationshipID is the remote couple-relationship id, set on first
	// marriage-detail fetch. It doubles as the fetched-once guard.
	RelationshipID string

	Husband *Person
	Wife    *Person

	Children []*Person
	Facts    []*Fact

	SealingToSpouse *Ordinance

	Notes   []*Note
	Sources []SourceRef
}

// AddChild adds child to the family, once. Nil children are ignored.
func (f *Family) AddChild(child *Person) {
	if child == nil {
		return
	}
	for _, c := range f.Children {
		if c == child {
			return
		}
	}
	f.Children = append(f.Children, child)
}

// Fetched reports whether marriage details were already retrieved.
func (f *Family) Fetched() bool {
	return f.RelationshipID != ""
}
