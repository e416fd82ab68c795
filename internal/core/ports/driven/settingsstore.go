package driven

import "github.com/custodia-labs/lineage-cli/internal/core/domain"

// SettingsStore persists the effective options of a run so they can be
// reused as defaults for the next one.
type SettingsStore interface {
	Load() (*domain.Settings, error)
	Save(s *domain.Settings) error
}
