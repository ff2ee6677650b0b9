package store

import (
	"github.com/linkdeckapp/linkdeck/internal/domain"
	"github.com/linkdeckapp/linkdeck/internal/errors"
)

// SettingsStore persists the client settings record.
type SettingsStore struct {
	kv *Store
}

// NewSettingsStore creates a settings store over the given store.
func NewSettingsStore(kv *Store) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// Load returns the persisted settings, falling back to defaults when
// nothing was saved yet.
func (s *SettingsStore) Load(defaults domain.Settings) (domain.Settings, error) {
	var settings domain.Settings
	err := s.kv.Get(SettingsKey(), &settings)
	if errors.Is(err, ErrKeyNotFound) {
		return defaults, nil
	}
	if err != nil {
		return defaults, errors.Persistence("failed to read settings", err)
	}
	return settings, nil
}

// Save records the settings.
func (s *SettingsStore) Save(settings domain.Settings) error {
	if err := s.kv.Set(SettingsKey(), settings); err != nil {
		return errors.Persistence("failed to write settings", err)
	}
	return nil
}
