package store

import (
	"log/slog"
	"sync"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

// SettingsStore holds the single notification settings record. Reads always
// see a complete record: defaults fill in when nothing was persisted yet.
type SettingsStore struct {
	mu       sync.RWMutex
	docs     storage.DocumentStore
	logger   *slog.Logger
	settings model.NotificationSettings
}

// NewSettingsStore loads the settings document, applying defaults when it
// is absent and normalizing out-of-range values.
func NewSettingsStore(docs storage.DocumentStore, logger *slog.Logger) (*SettingsStore, error) {
	s := &SettingsStore{docs: docs, logger: logger}

	found, err := docs.Read(storage.DocSettings, &s.settings)
	if err != nil {
		return nil, err
	}
	if !found {
		s.settings = model.DefaultNotificationSettings()
	}
	if s.settings.TimingMinutes <= 0 {
		s.settings.TimingMinutes = model.DefaultNotificationSettings().TimingMinutes
	}
	return s, nil
}

// Get returns the current settings record.
func (s *SettingsStore) Get() model.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the whole record after validation.
func (s *SettingsStore) Update(settings model.NotificationSettings) error {
	if settings.TimingMinutes <= 0 {
		return model.Validationf("timingMinutes", "timing must be a positive number of minutes")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	if err := s.docs.Write(storage.DocSettings, s.settings); err != nil {
		s.logger.Warn("persist settings failed, in-memory state kept", "error", err)
	}
	return nil
}
