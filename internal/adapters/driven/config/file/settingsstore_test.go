package file

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
)

func TestLoad_MissingFile(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), false)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, &domain.Settings{}, settings)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), true)
	require.NoError(t, err)

	in := &domain.Settings{
		Username:     "user@example.org",
		Password:     "secret",
		Individuals:  []string{"KWQS-BB1"},
		Exclude:      []string{"KWQS-BB9"},
		Ascend:       4,
		Marriage:     true,
		GeonamesUser: "demo",
		TimeoutSec:   60,
		OutFile:      "tree.ged",
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSave_RedactsPassword(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), false)
	require.NoError(t, err)

	require.NoError(t, store.Save(&domain.Settings{Username: "user", Password: "secret"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.Contains(t, string(raw), RedactedPassword)

	// The marker never surfaces as a usable password.
	out, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, out.Password)
}

func TestSave_FilePermissions(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), false)
	require.NoError(t, err)
	require.NoError(t, store.Save(&domain.Settings{Username: "user"}))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_CorruptFile(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{ not toml"), 0600))

	_, err = store.Load()
	assert.Error(t, err)
}
