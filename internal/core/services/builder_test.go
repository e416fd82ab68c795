package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lineage-cli/internal/gedcomx"
)

// fakeSource is an in-memory DataSource. Fixture maps are read-only during a
// test; the mutex only guards the call counters, which concurrent build
// workers bump.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	persons    map[string]gedcomx.Person
	trios      []gedcomx.ChildAndParentsRelationship
	couples    []gedcomx.Relationship
	places     []gedcomx.PlaceDescription
	sources    map[string]*gedcomx.SourcesResult
	notes      map[string][]gedcomx.Note
	contribs   map[string][]string
	memories   map[string][]gedcomx.SourceDescription
	rels       map[string]*gedcomx.Relationship
	relSources map[string][]gedcomx.SourceDescription
	ordErr     error
	ords       map[string]*gedcomx.OrdinancesResult
}

var _ driven.DataSource = (*fakeSource)(nil)

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:      make(map[string]int),
		persons:    make(map[string]gedcomx.Person),
		sources:    make(map[string]*gedcomx.SourcesResult),
		notes:      make(map[string][]gedcomx.Note),
		contribs:   make(map[string][]string),
		memories:   make(map[string][]gedcomx.SourceDescription),
		rels:       make(map[string]*gedcomx.Relationship),
		relSources: make(map[string][]gedcomx.SourceDescription),
		ords:       make(map[string]*gedcomx.OrdinancesResult),
	}
}

func (f *fakeSource) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *fakeSource) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSource) addPerson(id, given, surname string) {
	f.persons[id] = gedcomx.Person{
		ID: id,
		Names: []gedcomx.Name{{
			Preferred: true,
			NameForms: []gedcomx.NameForm{{Parts: []gedcomx.NamePart{
				{Type: gedcomx.TypeGiven, Value: given},
				{Type: gedcomx.TypeSurname, Value: surname},
			}}},
		}},
		Gender: &gedcomx.Gender{Type: gedcomx.TypeMale},
	}
}

func (f *fakeSource) CurrentUser(ctx context.Context) (*gedcomx.UserInfo, error) {
	f.count("CurrentUser")
	return &gedcomx.UserInfo{PersonID: "KWQS-BB1", DisplayName: "Test User", PreferredLanguage: "en"}, nil
}

func (f *fakeSource) FetchBatch(ctx context.Context, ids []string) (*gedcomx.PersonBatch, error) {
	f.count("FetchBatch")
	batch := &gedcomx.PersonBatch{
		ChildAndParentsRelationships: f.trios,
		Relationships:                f.couples,
		Places:                       f.places,
	}
	for _, id := range ids {
		if p, ok := f.persons[id]; ok {
			batch.Persons = append(batch.Persons, p)
		}
	}
	return batch, nil
}

func (f *fakeSource) PersonSources(ctx context.Context, id string) (*gedcomx.SourcesResult, error) {
	f.count("PersonSources")
	return f.sources[id], nil
}

func (f *fakeSource) PersonNotes(ctx context.Context, id string) ([]gedcomx.Note, error) {
	f.count("PersonNotes")
	return f.notes[id], nil
}

func (f *fakeSource) PersonContributors(ctx context.Context, id string) ([]string, error) {
	f.count("PersonContributors")
	return f.contribs[id], nil
}

func (f *fakeSource) Memory(ctx context.Context, id string) ([]gedcomx.SourceDescription, error) {
	f.count("Memory")
	return f.memories[id], nil
}

func (f *fakeSource) CoupleRelationship(ctx context.Context, id string) (*gedcomx.Relationship, error) {
	f.count("CoupleRelationship")
	return f.rels[id], nil
}

func (f *fakeSource) CoupleSources(ctx context.Context, id string) ([]gedcomx.SourceDescription, error) {
	f.count("CoupleSources")
	return f.relSources[id], nil
}

func (f *fakeSource) CoupleNotes(ctx context.Context, id string) ([]gedcomx.Note, error) {
	f.count("CoupleNotes")
	return f.notes["rel:"+id], nil
}

func (f *fakeSource) CoupleContributors(ctx context.Context, id string) ([]string, error) {
	f.count("CoupleContributors")
	return f.contribs["rel:"+id], nil
}

func (f *fakeSource) Ordinances(ctx context.Context, id string) (*gedcomx.OrdinancesResult, error) {
	f.count("Ordinances")
	if f.ordErr != nil {
		return nil, f.ordErr
	}
	return f.ords[id], nil
}

func (f *fakeSource) Requests() int64 { return 0 }

func newTestBuilder(src *fakeSource, exclude ...string) (*Builder, *Registry) {
	reg := NewRegistry()
	return NewBuilder(reg, src, NewPlaceResolver(reg, nil), exclude), reg
}

func TestAddIndividuals_BuildsAndDedups(t *testing.T) {
	src := newFakeSource()
	src.addPerson("A", "Jean", "Dupont")
	src.addPerson("B", "Marie", "Dupont")
	b, reg := newTestBuilder(src)

	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A", "B", "A", ""}))

	p, ok := reg.Person("A")
	require.True(t, ok)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Jean", p.Name.Given)
	assert.Equal(t, "Dupont", p.Name.Surname)
	assert.Equal(t, domain.GenderMale, p.Gender)
	assert.Equal(t, 1, src.callCount("FetchBatch"))

	// Already-known ids never trigger another fetch.
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A", "B"}))
	assert.Equal(t, 1, src.callCount("FetchBatch"))
}

func TestAddIndividuals_PreferredNameIsExclusive(t *testing.T) {
	src := newFakeSource()
	src.persons["A"] = gedcomx.Person{
		ID: "A",
		Names: []gedcomx.Name{
			{
				Type:      gedcomx.TypeBirthName,
				Preferred: true,
				NameForms: []gedcomx.NameForm{{Parts: []gedcomx.NamePart{
					{Type: gedcomx.TypeGiven, Value: "Jean"},
					{Type: gedcomx.TypeSurname, Value: "Dupont"},
				}}},
			},
			{
				Type: gedcomx.TypeAKA,
				NameForms: []gedcomx.NameForm{{Parts: []gedcomx.NamePart{
					{Type: gedcomx.TypeGiven, Value: "Johnny"},
					{Type: gedcomx.TypeSurname, Value: "Dupont"},
				}}},
			},
		},
	}
	b, reg := newTestBuilder(src)

	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A"}))

	p, _ := reg.Person("A")
	require.NotNil(t, p.Name)
	assert.Equal(t, "Jean", p.Name.Given)
	assert.False(t, p.Name.Alternative)
	// The preferred name lives only on Name, never in its type bucket, so
	// the serializers emit it exactly once.
	assert.Empty(t, p.Birthnames)
	require.Len(t, p.AKA, 1)
	assert.Equal(t, "Johnny", p.AKA[0].Given)
	assert.True(t, p.AKA[0].Alternative)
}

func TestAddIndividuals_HonorsExclusion(t *testing.T) {
	src := newFakeSource()
	src.addPerson("A", "Jean", "Dupont")
	src.addPerson("X", "Not", "Wanted")
	b, reg := newTestBuilder(src, "X")

	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A", "X"}))

	_, ok := reg.Person("X")
	assert.False(t, ok)
	_, ok = reg.Person("A")
	assert.True(t, ok)
}

func TestAddIndividuals_LifeSketchAndCustomFacts(t *testing.T) {
	src := newFakeSource()
	src.persons["A"] = gedcomx.Person{
		ID: "A",
		Facts: []gedcomx.Fact{
			{Type: gedcomx.TypeLifeSketch, Value: "a full life"},
			{Type: "data:,Weaver", Value: "master weaver"},
			{Type: "http://gedcomx.org/Death"},
			{Type: "http://example.org/Bogus"},
		},
	}
	b, reg := newTestBuilder(src)

	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A"}))

	p, _ := reg.Person("A")
	require.Len(t, p.Notes, 1)
	assert.Equal(t, "=== Life Sketch ===\na full life", p.Notes[0].Text)

	// The unrecognized type is dropped, the rest kept.
	require.Len(t, p.Facts, 2)
	assert.Equal(t, domain.FactCustom, p.Facts[0].Kind)
	assert.Equal(t, "Weaver", p.Facts[0].Label)
	assert.Equal(t, domain.FactDeath, p.Facts[1].Kind)
	// A death without date or place still records that the person died.
	assert.Equal(t, "Y", p.Facts[1].Value)
}

func TestAddParents_ResolvableCombinations(t *testing.T) {
	src := newFakeSource()
	for _, id := range []string{"C1", "C2", "F1", "M1", "M2"} {
		src.addPerson(id, id, "Test")
	}
	src.trios = []gedcomx.ChildAndParentsRelationship{
		{
			Parent1: &gedcomx.ResourceReference{ResourceID: "F1"},
			Parent2: &gedcomx.ResourceReference{ResourceID: "M1"},
			Child:   &gedcomx.ResourceReference{ResourceID: "C1"},
		},
		// One parent explicitly absent.
		{
			Parent2: &gedcomx.ResourceReference{ResourceID: "M2"},
			Child:   &gedcomx.ResourceReference{ResourceID: "C2"},
		},
	}
	b, reg := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"C1", "C2"}))

	discovered, err := b.AddParents(context.Background(), b.Known())
	require.NoError(t, err)
	assert.Equal(t, driving.Set{"F1": {}, "M1": {}, "M2": {}}, discovered)

	fam, ok := reg.FamilyByPair("F1", "M1")
	require.True(t, ok)
	require.Len(t, fam.Children, 1)
	assert.Equal(t, "C1", fam.Children[0].ID)

	half, ok := reg.FamilyByPair("UNK", "M2")
	require.True(t, ok)
	assert.Equal(t, "FAM_UNK-M2", half.ID)
	assert.Nil(t, half.Husband)

	c1, _ := reg.Person("C1")
	require.Len(t, c1.FamiliesAsChild, 1)
	f1, _ := reg.Person("F1")
	require.Len(t, f1.FamiliesAsSpouse, 1)
}

func TestAddChildren_LinksKnownChildren(t *testing.T) {
	src := newFakeSource()
	for _, id := range []string{"F1", "M1", "C1"} {
		src.addPerson(id, id, "Test")
	}
	src.trios = []gedcomx.ChildAndParentsRelationship{{
		Parent1: &gedcomx.ResourceReference{ResourceID: "F1"},
		Parent2: &gedcomx.ResourceReference{ResourceID: "M1"},
		Child:   &gedcomx.ResourceReference{ResourceID: "C1"},
	}}
	b, reg := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"F1"}))

	children, err := b.AddChildren(context.Background(), b.Known())
	require.NoError(t, err)
	assert.Equal(t, driving.Set{"C1": {}}, children)

	fam, ok := reg.FamilyByPair("F1", "M1")
	require.True(t, ok)
	require.Len(t, fam.Children, 1)
	assert.Equal(t, "C1", fam.Children[0].ID)
}

func TestAddSpouses_FetchesMarriageOnce(t *testing.T) {
	src := newFakeSource()
	src.addPerson("H1", "Jean", "Dupont")
	src.addPerson("W1", "Marie", "Claire")
	src.couples = []gedcomx.Relationship{{
		ID:      "REL1",
		Type:    gedcomx.TypeCouple,
		Person1: &gedcomx.ResourceReference{ResourceID: "H1"},
		Person2: &gedcomx.ResourceReference{ResourceID: "W1"},
	}}
	src.rels["REL1"] = &gedcomx.Relationship{
		ID: "REL1",
		Facts: []gedcomx.Fact{{
			Type: "http://gedcomx.org/Marriage",
			Date: &gedcomx.Date{Original: "2 June 1834"},
		}},
	}
	b, reg := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"H1", "W1"}))

	require.NoError(t, b.AddSpouses(context.Background(), b.Known()))
	require.NoError(t, b.AddSpouses(context.Background(), b.Known()))

	// Both spouses carry the edge, but the relationship is fetched once.
	assert.Equal(t, 1, src.callCount("CoupleRelationship"))

	fam, ok := reg.FamilyByPair("H1", "W1")
	require.True(t, ok)
	assert.Equal(t, "REL1", fam.RelationshipID)
	require.Len(t, fam.Facts, 1)
	assert.Equal(t, domain.FactMarriage, fam.Facts[0].Kind)
	assert.Equal(t, "2 June 1834", fam.Facts[0].Date)
}

func TestAddOrdinances(t *testing.T) {
	src := newFakeSource()
	src.addPerson("A", "Jean", "Dupont")
	temple := struct {
		Code string `json:"code"`
	}{Code: "SLAKE"}
	src.ords["A"] = &gedcomx.OrdinancesResult{
		Baptism: &gedcomx.Ordinance{CompletedDate: "12 January 1900", CompletedTemple: &temple, Status: "Completed"},
	}
	b, reg := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A"}))

	require.NoError(t, b.AddOrdinances(context.Background(), "A"))

	p, _ := reg.Person("A")
	require.NotNil(t, p.Baptism)
	assert.Equal(t, "12 January 1900", p.Baptism.Date)
	assert.Equal(t, "SLAKE", p.Baptism.TempleCode)
	assert.Equal(t, "Completed", p.Baptism.Status)
}

func TestAddOrdinances_RestrictedIsNotFatal(t *testing.T) {
	src := newFakeSource()
	src.addPerson("A", "Jean", "Dupont")
	src.ordErr = domain.ErrRestricted
	b, _ := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A"}))

	assert.NoError(t, b.AddOrdinances(context.Background(), "A"))
}

func TestAddOrdinances_SkipsLiving(t *testing.T) {
	src := newFakeSource()
	src.persons["A"] = gedcomx.Person{ID: "A", Living: true}
	b, _ := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"A"}))

	require.NoError(t, b.AddOrdinances(context.Background(), "A"))
	assert.Equal(t, 0, src.callCount("Ordinances"))
}

func TestFetchSupplements_SpouseSealingOnSharedFamily(t *testing.T) {
	src := newFakeSource()
	src.addPerson("H1", "Jean", "Dupont")
	src.addPerson("W1", "Marie", "Claire")
	src.couples = []gedcomx.Relationship{{
		ID:      "REL1",
		Type:    gedcomx.TypeCouple,
		Person1: &gedcomx.ResourceReference{ResourceID: "H1"},
		Person2: &gedcomx.ResourceReference{ResourceID: "W1"},
	}}
	src.rels["REL1"] = &gedcomx.Relationship{ID: "REL1"}
	// Both spouses report the same sealing; their workers run concurrently
	// and land on the one shared family.
	toWife := gedcomx.Ordinance{CompletedDate: "3 May 1901", Status: "Completed"}
	toWife.Relationships.SpouseID = "W1"
	src.ords["H1"] = &gedcomx.OrdinancesResult{SealingsToSpouses: []gedcomx.Ordinance{toWife}}
	toHusband := gedcomx.Ordinance{CompletedDate: "3 May 1901", Status: "Completed"}
	toHusband.Relationships.SpouseID = "H1"
	src.ords["W1"] = &gedcomx.OrdinancesResult{SealingsToSpouses: []gedcomx.Ordinance{toHusband}}

	b, reg := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"H1", "W1"}))
	require.NoError(t, b.AddSpouses(context.Background(), b.Known()))

	b.FetchSupplements(context.Background(), SupplementOptions{Ordinances: true})

	fam, ok := reg.FamilyByPair("H1", "W1")
	require.True(t, ok)
	require.NotNil(t, fam.SealingToSpouse)
	assert.Equal(t, "3 May 1901", fam.SealingToSpouse.Date)
	assert.Equal(t, "Completed", fam.SealingToSpouse.Status)
	assert.Equal(t, 2, src.callCount("Ordinances"))
}

func TestFetchSupplements_NotesAndContributors(t *testing.T) {
	src := newFakeSource()
	src.addPerson("H1", "Jean", "Dupont")
	src.addPerson("W1", "Marie", "Claire")
	src.couples = []gedcomx.Relationship{{
		ID:      "REL1",
		Type:    gedcomx.TypeCouple,
		Person1: &gedcomx.ResourceReference{ResourceID: "H1"},
		Person2: &gedcomx.ResourceReference{ResourceID: "W1"},
	}}
	src.rels["REL1"] = &gedcomx.Relationship{ID: "REL1"}
	src.notes["H1"] = []gedcomx.Note{{Subject: "Research", Text: "see parish register"}}
	src.contribs["H1"] = []string{"zoe", "alice"}
	src.contribs["rel:REL1"] = []string{"zoe", "alice"}

	b, reg := newTestBuilder(src)
	require.NoError(t, b.AddIndividuals(context.Background(), []string{"H1", "W1"}))
	require.NoError(t, b.AddSpouses(context.Background(), b.Known()))

	b.FetchSupplements(context.Background(), SupplementOptions{Contributors: true})

	h, _ := reg.Person("H1")
	require.Len(t, h.Notes, 2)
	assert.Equal(t, "=== Research ===\nsee parish register", h.Notes[0].Text)
	// Contributor names are sorted into the note text.
	assert.Equal(t, "=== Contributors ===\nalice\nzoe", h.Notes[1].Text)

	// The family reuses the identical contributor note.
	fam, ok := reg.FamilyByPair("H1", "W1")
	require.True(t, ok)
	require.Len(t, fam.Notes, 1)
	assert.Same(t, h.Notes[1], fam.Notes[0])

	assert.Equal(t, 2, src.callCount("PersonNotes"))
	assert.Equal(t, 1, src.callCount("CoupleNotes"))
	assert.Equal(t, 0, src.callCount("Ordinances"))
}
