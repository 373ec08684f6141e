package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

// maxLogEntries caps the notification feed; the oldest entry is dropped
// when a 51st arrives.
const maxLogEntries = 50

// NotificationLog is the append-only, capped feed of fired reminders and
// user-action records, newest first.
type NotificationLog struct {
	mu      sync.RWMutex
	docs    storage.DocumentStore
	logger  *slog.Logger
	ids     idGen
	now     func() time.Time
	entries []model.NotificationLogEntry
}

// NewNotificationLog loads the persisted notifications document.
func NewNotificationLog(docs storage.DocumentStore, logger *slog.Logger) (*NotificationLog, error) {
	l := &NotificationLog{
		docs:   docs,
		logger: logger,
		now:    time.Now,
	}
	if _, err := docs.Read(storage.DocNotifications, &l.entries); err != nil {
		return nil, err
	}
	for _, e := range l.entries {
		l.ids.seed(e.ID)
	}
	return l, nil
}

// Add prepends an entry and persists. Never fails: a persistence error is
// logged and the entry stays in memory, so the feed remains a complete
// record of every reminder that was due.
func (l *NotificationLog) Add(message string) model.NotificationLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := model.NotificationLogEntry{
		ID:        l.ids.next(l.now()),
		Message:   message,
		Timestamp: l.now(),
	}
	l.entries = append([]model.NotificationLogEntry{entry}, l.entries...)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[:maxLogEntries]
	}
	l.flush()
	return entry
}

// List returns a copy of the feed, newest first.
func (l *NotificationLog) List() []model.NotificationLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.NotificationLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *NotificationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear empties the feed.
func (l *NotificationLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.flush()
}

func (l *NotificationLog) flush() {
	if err := l.docs.Write(storage.DocNotifications, l.entries); err != nil {
		l.logger.Warn("persist notifications failed, in-memory state kept", "error", err)
	}
}
