package gedcomx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
)

func TestFactKindFromURI(t *testing.T) {
	kind, label := FactKindFromURI("http://gedcomx.org/Birth")
	assert.Equal(t, domain.FactBirth, kind)
	assert.Equal(t, "Birth", label)

	kind, label = FactKindFromURI("data:,Eagle%20Scout")
	assert.Equal(t, domain.FactCustom, kind)
	assert.Equal(t, "Eagle Scout", label)

	kind, label = FactKindFromURI("http://gedcomx.org/Stillbirth")
	assert.Equal(t, domain.FactOther, kind)
	assert.Equal(t, "Stillbirth", label)

	kind, _ = FactKindFromURI("http://example.org/Bogus")
	assert.Equal(t, domain.FactUnrecognized, kind)
}

func TestParseFormalDate(t *testing.T) {
	tests := []struct {
		formal    string
		date      string
		qualifier domain.DateQualifier
	}{
		{"+1854-06-02", "1854-06-02", domain.DateExact},
		{"A+1854", "1854", domain.DateAbout},
		{"/+1854", "1854", domain.DateBefore},
		{"+1854/", "1854", domain.DateAfter},
	}
	for _, tt := range tests {
		date, qualifier := ParseFormalDate(tt.formal)
		assert.Equal(t, tt.date, date, tt.formal)
		assert.Equal(t, tt.qualifier, qualifier, tt.formal)
	}
}

func TestNameKindFromURI(t *testing.T) {
	assert.Equal(t, domain.NamePreferred, NameKindFromURI(""))
	assert.Equal(t, domain.NameAKA, NameKindFromURI(TypeAKA))
	assert.Equal(t, domain.NameUnrecognized, NameKindFromURI("http://example.org/Odd"))
}
