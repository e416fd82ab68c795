package domain

// Graph is a read-only snapshot of the finished entity graph, handed to the
// serializers. Slices are sorted the way the output formats expect:
// persons and sources by sequence number, families lexicographically by id,
// notes by composite id.
type Graph struct {
	Submitter string
	Language  string

	Persons   []*Person
	Families  []*Family
	Facts     []*Fact
	Notes     []*Note
	Places    []*Place
	Sources   []*Source
	Citations []*Citation
}
