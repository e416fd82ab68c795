package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/gedcomx"
)

func TestRegistry_EnsurePerson(t *testing.T) {
	reg := NewRegistry()

	p, created := reg.EnsurePerson("KWQS-BB1")
	require.True(t, created)
	assert.Equal(t, "KWQS-BB1", p.ID)
	assert.Equal(t, 1, p.Seq)
	assert.NotEmpty(t, p.Handle)

	again, created := reg.EnsurePerson("KWQS-BB1")
	assert.False(t, created)
	assert.Same(t, p, again)

	q, created := reg.EnsurePerson("KWQS-BB2")
	require.True(t, created)
	assert.Equal(t, 2, q.Seq)

	ids := reg.PersonIDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "KWQS-BB1")
}

func TestRegistry_EnsureFamily_PairIdentity(t *testing.T) {
	reg := NewRegistry()
	h, _ := reg.EnsurePerson("H1")
	w, _ := reg.EnsurePerson("W1")

	fam := reg.EnsureFamily(h, w)
	assert.Equal(t, "FAM_H1-W1", fam.ID)
	assert.Same(t, fam, reg.EnsureFamily(h, w))

	got, ok := reg.FamilyByPair("H1", "W1")
	require.True(t, ok)
	assert.Same(t, fam, got)

	// Order matters: the reversed pair is a different family.
	_, ok = reg.FamilyByPair("W1", "H1")
	assert.False(t, ok)
}

func TestRegistry_EnsureFamily_MissingSpouses(t *testing.T) {
	reg := NewRegistry()
	w, _ := reg.EnsurePerson("W1")

	fam := reg.EnsureFamily(nil, w)
	assert.Equal(t, "FAM_UNK-W1", fam.ID)
	assert.Nil(t, fam.Husband)
	assert.Same(t, fam, reg.EnsureFamily(nil, w))

	// Families with neither spouse are never merged.
	a := reg.EnsureFamily(nil, nil)
	b := reg.EnsureFamily(nil, nil)
	assert.Equal(t, "FAM_UNK-UNK-1", a.ID)
	assert.Equal(t, "FAM_UNK-UNK-2", b.ID)
	assert.NotSame(t, a, b)
}

func TestRegistry_NewNote_PerScopeSequences(t *testing.T) {
	reg := NewRegistry()

	a := reg.NewNote(" padded \n", "INDI_A", domain.NotePerson)
	b := reg.NewNote("second", "INDI_A", domain.NotePerson)
	c := reg.NewNote("other scope", "INDI_B", domain.NotePerson)

	assert.Equal(t, "padded", a.Text)
	assert.Equal(t, "INDI_A_1", a.ID())
	assert.Equal(t, "INDI_A_2", b.ID())
	assert.Equal(t, "INDI_B_1", c.ID())
}

func TestRegistry_ContributionNote_DedupsByText(t *testing.T) {
	reg := NewRegistry()

	a := reg.ContributionNote("=== Contributors ===\nalice\nbob", "INDI_A")
	b := reg.ContributionNote("=== Contributors ===\nalice\nbob", "FAM_A-B")
	c := reg.ContributionNote("=== Contributors ===\ncarol", "INDI_A")

	assert.Same(t, a, b)
	assert.Equal(t, "INDI_A_CONTRIB_1", a.ID())
	assert.Equal(t, "INDI_A_CONTRIB_2", c.ID())

	_, _, _, notes := reg.Counts()
	assert.Equal(t, 2, notes)
}

func TestRegistry_EnsureSource(t *testing.T) {
	reg := NewRegistry()

	desc := &gedcomx.SourceDescription{
		ID:          "Q8M5-NSP",
		About:       "https://familysearch.org/platform/memories/memories/123",
		Titles:      []gedcomx.TextValue{{Value: "A Photo"}},
		Citations:   []gedcomx.TextValue{{Value: "cite text"}},
		Notes:       []gedcomx.Note{{Text: "note one"}, {Text: ""}},
		Attribution: gedcomx.Attribution{Modified: 1467000000000},
	}

	s := reg.EnsureSource(desc)
	require.NotNil(t, s)
	assert.Equal(t, "SQ8M5-NSP", s.ID())
	assert.Equal(t, "A Photo", s.Title)
	assert.Equal(t, "cite text", s.Citation)
	assert.Equal(t, "https://www.familysearch.org/photos/artifacts/123", s.URL)
	require.Len(t, s.Notes, 1)
	assert.Equal(t, "note one", s.Notes[0].Text)

	assert.Same(t, s, reg.EnsureSource(desc))
	assert.Nil(t, reg.EnsureSource(nil))
}

func TestRegistry_EnsureCitation(t *testing.T) {
	reg := NewRegistry()
	src := reg.EnsureSource(&gedcomx.SourceDescription{ID: "SRC1"})

	c := reg.EnsureCitation(&gedcomx.SourceReference{
		ID:          "cit1",
		Attribution: gedcomx.Attribution{ChangeMessage: "attached record", Modified: 42000},
	}, src)
	assert.Equal(t, "Ccit1", c.ID())
	assert.Same(t, src, c.Source)
	assert.Equal(t, "attached record", c.Message)

	again := reg.EnsureCitation(&gedcomx.SourceReference{ID: "cit1"}, src)
	assert.Same(t, c, again)
}

func TestRegistry_AddFact_ScopedCounters(t *testing.T) {
	reg := NewRegistry()

	birth := &domain.Fact{Kind: domain.FactBirth}
	reg.AddFact(birth, "INDI_A")
	assert.Equal(t, "INDI_A_BIRT_1", birth.ID)
	assert.NotEmpty(t, birth.Handle)

	death := &domain.Fact{Kind: domain.FactDeath}
	reg.AddFact(death, "INDI_A")
	assert.Equal(t, "INDI_A_DEAT_1", death.ID)

	// Untaggable kinds count under the bare scope.
	custom := &domain.Fact{Kind: domain.FactCustom, Label: "Weaver"}
	reg.AddFact(custom, "INDI_A")
	assert.Equal(t, "INDI_A_1", custom.ID)
}

func TestRegistry_Snapshot_Ordering(t *testing.T) {
	reg := NewRegistry()
	reg.SetSubmitter("Test User", "en")

	b, _ := reg.EnsurePerson("B")
	a, _ := reg.EnsurePerson("A")
	reg.EnsureFamily(b, a)
	reg.EnsureFamily(a, b)
	reg.NewNote("z", "Z", domain.NotePerson)
	reg.NewNote("a", "A", domain.NotePerson)

	g := reg.Snapshot()
	assert.Equal(t, "Test User", g.Submitter)
	assert.Equal(t, "en", g.Language)

	// Persons keep discovery order via sequence numbers.
	require.Len(t, g.Persons, 2)
	assert.Equal(t, "B", g.Persons[0].ID)
	assert.Equal(t, "A", g.Persons[1].ID)

	require.Len(t, g.Families, 2)
	assert.Equal(t, "FAM_A-B", g.Families[0].ID)
	assert.Equal(t, "FAM_B-A", g.Families[1].ID)

	require.Len(t, g.Notes, 2)
	assert.Equal(t, "A_1", g.Notes[0].ID())
	assert.Equal(t, "Z_1", g.Notes[1].ID())
}
