package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// RedactedPassword is stored in place of the real password unless the user
// explicitly opts in to keeping it on disk.
const RedactedPassword = "******"

// SettingsStore is a file-based implementation of driven.SettingsStore
// using TOML. Settings are stored in the lineage config directory.
type SettingsStore struct {
	mu           sync.Mutex
	filePath     string
	keepPassword bool
}

// NewSettingsStore creates a new TOML-based settings store.
// If configDir is empty, defaults to ~/.lineage. keepPassword controls
// whether Save writes the real password or a redaction marker.
func NewSettingsStore(configDir string, keepPassword bool) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".lineage")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath:     filepath.Join(configDir, "settings.toml"),
		keepPassword: keepPassword,
	}, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load reads the stored settings. A missing file yields empty settings, not
// an error. A stored redaction marker is treated as no password.
func (s *SettingsStore) Load() (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var settings domain.Settings
	if err := toml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if settings.Password == RedactedPassword {
		settings.Password = ""
	}
	return &settings, nil
}

// Save writes the settings, redacting the password unless the store was
// created with keepPassword.
func (s *SettingsStore) Save(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *settings
	if !s.keepPassword && out.Password != "" {
		out.Password = RedactedPassword
	}

	data, err := toml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
