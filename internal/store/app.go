package store

import (
	"log/slog"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

// AppStore holds one-shot application flags.
type AppStore struct {
	docs   storage.DocumentStore
	logger *slog.Logger
}

func NewAppStore(docs storage.DocumentStore, logger *slog.Logger) *AppStore {
	return &AppStore{docs: docs, logger: logger}
}

// Installed reports whether the install prompt has been acknowledged.
func (s *AppStore) Installed() bool {
	var installed bool
	if _, err := s.docs.Read(storage.DocAppInstalled, &installed); err != nil {
		s.logger.Warn("read appInstalled failed", "error", err)
		return false
	}
	return installed
}

// MarkInstalled latches the install flag.
func (s *AppStore) MarkInstalled() {
	if err := s.docs.Write(storage.DocAppInstalled, true); err != nil {
		s.logger.Warn("persist appInstalled failed", "error", err)
	}
}
