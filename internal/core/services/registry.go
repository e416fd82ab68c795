package services

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/gedcomx"
)

// Registry is the single source of truth for identifier assignment and
// entity deduplication. All sequence counters live here, owned by the
// instance, so a fresh registry starts every run (and every test) from a
// clean slate. Mutation is serialized by one mutex; contention is rare and
// the critical sections are short.
type Registry struct {
	mu sync.Mutex

	persons   map[string]*domain.Person
	personSeq int

	families  map[string]*domain.Family
	familySeq int // disambiguates families with neither spouse resolvable

	sources     map[string]*domain.Source // keyed by remote id
	sourceOrder []*domain.Source
	sourceSeq   int

	citations     map[string]*domain.Citation
	citationOrder []*domain.Citation

	notes   []*domain.Note
	noteSeq map[string]int // per scope prefix

	facts   []*domain.Fact
	factSeq map[string]int // per scope prefix

	places         []*domain.Place
	placesByName   map[string]*domain.Place
	placesByID     map[string]*domain.Place
	placeSeq       int
	placeCoords    map[string]domain.Coord // coordinate hints from batch sidecars

	submitter string
	language  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		persons:      make(map[string]*domain.Person),
		families:     make(map[string]*domain.Family),
		sources:      make(map[string]*domain.Source),
		citations:    make(map[string]*domain.Citation),
		noteSeq:      make(map[string]int),
		factSeq:      make(map[string]int),
		placesByName: make(map[string]*domain.Place),
		placesByID:   make(map[string]*domain.Place),
		placeCoords:  make(map[string]domain.Coord),
	}
}

// SetSubmitter records the display name and language of the authenticated
// user for the output headers.
func (r *Registry) SetSubmitter(name, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitter = name
	r.language = language
}

// Person looks up a known individual by remote id.
func (r *Registry) Person(id string) (*domain.Person, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.persons[id]
	return p, ok
}

// PersonIDs returns the remote ids of all known individuals.
func (r *Registry) PersonIDs() map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]struct{}, len(r.persons))
	for id := range r.persons {
		ids[id] = struct{}{}
	}
	return ids
}

// EnsurePerson returns the individual with the given remote id, creating it
// on first reference. The second return value reports whether it was new.
func (r *Registry) EnsurePerson(id string) (*domain.Person, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.persons[id]; ok {
		return p, false
	}
	r.personSeq++
	p := &domain.Person{
		Handle:   domain.NewHandle(),
		ID:       id,
		Seq:      r.personSeq,
		Parents:  make(map[domain.ParentPair]struct{}),
		Spouses:  make(map[domain.CoupleEdge]struct{}),
		Children: make(map[domain.ChildEdge]struct{}),
	}
	r.persons[id] = p
	return p, true
}

// FamilyID derives the family identifier from a spouse pair. Family identity
// is a pure function of the pair, so re-deriving the same pair always names
// the same family. The empty id (both spouses absent) is resolved with a
// counter inside EnsureFamily.
func FamilyID(husband, wife *domain.Person) string {
	h, w := "UNK", "UNK"
	if husband != nil {
		h = husband.RecordID()
	}
	if wife != nil {
		w = wife.RecordID()
	}
	if h == "UNK" && w == "UNK" {
		return ""
	}
	return "FAM_" + h + "-" + w
}

// EnsureFamily returns the family for the spouse pair, creating it on first
// reference. Calling it twice with the same pair returns the same instance.
func (r *Registry) EnsureFamily(husband, wife *domain.Person) *domain.Family {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := FamilyID(husband, wife)
	if id == "" {
		r.familySeq++
		id = "FAM_UNK-UNK-" + strconv.Itoa(r.familySeq)
	} else if f, ok := r.families[id]; ok {
		return f
	}
	f := &domain.Family{
		Handle:  domain.NewHandle(),
		ID:      id,
		Husband: husband,
		Wife:    wife,
	}
	r.families[id] = f
	return f
}

// FamilyByPair looks up a family by the record ids of its spouses, in the
// given order.
func (r *Registry) FamilyByPair(husbandID, wifeID string) (*domain.Family, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families["FAM_"+husbandID+"-"+wifeID]
	return f, ok
}

// EnsureSource returns the source for a remote description, creating and
// populating it on first reference.
func (r *Registry) EnsureSource(data *gedcomx.SourceDescription) *domain.Source {
	if data == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sources[data.ID]; ok {
		return s
	}
	r.sourceSeq++
	s := &domain.Source{
		Handle:   domain.NewHandle(),
		RemoteID: data.ID,
		Seq:      r.sourceSeq,
		Modified: data.Attribution.Modified,
	}
	// Memory artifact URLs are rewritten to their public viewer form.
	s.URL = strings.Replace(data.About,
		"familysearch.org/platform/memories/memories",
		"www.familysearch.org/photos/artifacts", 1)
	if len(data.Citations) > 0 {
		s.Citation = data.Citations[0].Value
	}
	if len(data.Titles) > 0 {
		s.Title = data.Titles[0].Value
	}
	for i, n := range data.Notes {
		if n.Text == "" {
			continue
		}
		s.Notes = append(s.Notes, r.noteLocked(n.Text, s.ID(), i+1, domain.NoteSource))
	}
	r.sources[data.ID] = s
	r.sourceOrder = append(r.sourceOrder, s)
	return s
}

// EnsureCitation returns the citation for a source reference, creating it on
// first reference.
func (r *Registry) EnsureCitation(ref *gedcomx.SourceReference, src *domain.Source) *domain.Citation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.citations[ref.ID]; ok {
		return c
	}
	c := &domain.Citation{
		Handle:   domain.NewHandle(),
		RemoteID: ref.ID,
		Source:   src,
		Message:  ref.Attribution.ChangeMessage,
		Modified: ref.Attribution.Modified,
	}
	r.citations[ref.ID] = c
	r.citationOrder = append(r.citationOrder, c)
	return c
}

// NewNote creates a note under the given scope prefix. Sequence numbers are
// independent per scope, keeping ids stable regardless of global creation
// order.
func (r *Registry) NewNote(text, scope string, kind domain.NoteKind) *domain.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteSeq[scope]++
	return r.noteLocked(text, scope, r.noteSeq[scope], kind)
}

func (r *Registry) noteLocked(text, scope string, seq int, kind domain.NoteKind) *domain.Note {
	n := &domain.Note{
		Handle: domain.NewHandle(),
		Scope:  scope,
		Seq:    seq,
		Kind:   kind,
		Text:   strings.TrimSpace(text),
	}
	r.notes = append(r.notes, n)
	return n
}

// ContributionNote returns a note with the given contributor text, reusing
// an existing note anywhere in the tree when the text matches exactly.
// Identical contributor lists recur across related records.
func (r *Registry) ContributionNote(text, scope string) *domain.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	trimmed := strings.TrimSpace(text)
	for _, n := range r.notes {
		if n.Text == trimmed {
			return n
		}
	}
	scope += "_CONTRIB"
	r.noteSeq[scope]++
	return r.noteLocked(text, scope, r.noteSeq[scope], domain.NoteContribution)
}

// SetSealingToSpouse records a couple sealing on the family. Both spouses
// report the same sealing, and their ordinance workers run concurrently, so
// the write to the shared family is serialized here.
func (r *Registry) SetSealingToSpouse(f *domain.Family, o *domain.Ordinance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.SealingToSpouse = o
}

// AddFact assigns the fact its scope-prefixed identifier and registers it in
// the events list. The scope is widened with the output tag for recognized
// kinds, so counters stay independent per fact type within one owner.
func (r *Registry) AddFact(f *domain.Fact, scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := scope
	if tag := f.Kind.Tag(); tag != "" {
		prefix = scope + "_" + tag
	}
	r.factSeq[prefix]++
	f.Handle = domain.NewHandle()
	f.ID = prefix + "_" + strconv.Itoa(r.factSeq[prefix])
	r.facts = append(r.facts, f)
}

// PlaceByName looks up a place previously resolved under the given display
// name.
func (r *Registry) PlaceByName(name string) (*domain.Place, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.placesByName[name]
	return p, ok
}

// PlaceByID looks up a place by its assigned identifier.
func (r *Registry) PlaceByID(id string) (*domain.Place, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.placesByID[id]
	return p, ok
}

// AddPlace registers a new place, assigning its handle.
func (r *Registry) AddPlace(p *domain.Place) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Handle = domain.NewHandle()
	r.places = append(r.places, p)
	r.placesByID[p.ID] = p
}

// IndexPlaceName caches a resolved place under its display name.
func (r *Registry) IndexPlaceName(name string, p *domain.Place) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placesByName[name] = p
}

// NextPlaceSeq returns the next synthetic place sequence number.
func (r *Registry) NextPlaceSeq() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeSeq++
	return r.placeSeq
}

// CachePlaceCoord remembers a coordinate observed for a remote place id in a
// batch sidecar.
func (r *Registry) CachePlaceCoord(id string, c domain.Coord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.placeCoords[id]; !ok {
		r.placeCoords[id] = c
	}
}

// PlaceCoord returns a previously observed coordinate for a remote place id.
func (r *Registry) PlaceCoord(id string) (domain.Coord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.placeCoords[id]
	return c, ok
}

// Counts reports entity totals for the run summary.
func (r *Registry) Counts() (persons, families, sources, notes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.persons), len(r.families), len(r.sourceOrder), len(r.notes)
}

// Snapshot freezes the graph for serialization. Persons and sources are
// ordered by sequence number, families and notes lexicographically by id;
// facts, places and citations keep creation order.
func (r *Registry) Snapshot() *domain.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &domain.Graph{
		Submitter: r.submitter,
		Language:  r.language,
		Facts:     append([]*domain.Fact(nil), r.facts...),
		Places:    append([]*domain.Place(nil), r.places...),
		Sources:   append([]*domain.Source(nil), r.sourceOrder...),
		Citations: append([]*domain.Citation(nil), r.citationOrder...),
		Notes:     append([]*domain.Note(nil), r.notes...),
	}
	for _, p := range r.persons {
		g.Persons = append(g.Persons, p)
	}
	sort.Slice(g.Persons, func(i, j int) bool { return g.Persons[i].Seq < g.Persons[j].Seq })
	for _, f := range r.families {
		g.Families = append(g.Families, f)
	}
	sort.Slice(g.Families, func(i, j int) bool { return g.Families[i].ID < g.Families[j].ID })
	sort.Slice(g.Sources, func(i, j int) bool { return g.Sources[i].Seq < g.Sources[j].Seq })
	sort.Slice(g.Notes, func(i, j int) bool { return g.Notes[i].ID() < g.Notes[j].ID() })
	return g
}
