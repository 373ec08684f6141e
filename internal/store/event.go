package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/recurrence"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

// EventStore owns the event collection. Events live in memory and are
// flushed to the events document whole on every mutation; a failed flush is
// logged and the in-memory state stays authoritative for the session.
type EventStore struct {
	mu       sync.RWMutex
	docs     storage.DocumentStore
	loc      *time.Location
	logger   *slog.Logger
	ids      idGen
	now      func() time.Time
	events   []model.Event
	onDelete func(eventID int64)
}

// NewEventStore loads the persisted events document. An absent document is
// an empty collection.
func NewEventStore(docs storage.DocumentStore, loc *time.Location, logger *slog.Logger) (*EventStore, error) {
	s := &EventStore{
		docs:   docs,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
	if _, err := docs.Read(storage.DocEvents, &s.events); err != nil {
		return nil, err
	}
	for _, e := range s.events {
		s.ids.seed(e.ID)
	}
	return s, nil
}

// OnDelete registers the cancellation hook invoked for every removed event.
func (s *EventStore) OnDelete(fn func(eventID int64)) {
	s.mu.Lock()
	s.onDelete = fn
	s.mu.Unlock()
}

// Location returns the location event instants are interpreted in.
func (s *EventStore) Location() *time.Location {
	return s.loc
}

// Create validates the draft and appends the event. A recurring event
// materializes up to four additional weekly copies, each an independent
// record with its own id and notification latch; copies whose instant is
// not in the future are silently dropped. Returns every event created.
func (s *EventStore) Create(title, description string, groupID int64, groupName string, typ model.EventType, date, timeOfDay string, recurring bool, createdBy string) ([]model.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.Validationf("title", "title is required")
	}
	if groupID == 0 {
		return nil, model.Validationf("groupId", "group is required")
	}
	if !typ.Valid() {
		return nil, model.Validationf("type", "unknown event type %q", typ)
	}
	if !model.ValidDate(date) {
		return nil, model.Validationf("date", "date must be YYYY-MM-DD")
	}
	if !model.ValidTime(timeOfDay) {
		return nil, model.Validationf("time", "time must be HH:MM")
	}

	base := model.Event{
		Title:       title,
		Description: strings.TrimSpace(description),
		GroupID:     groupID,
		GroupName:   groupName,
		Type:        typ,
		Date:        date,
		Time:        timeOfDay,
		Recurring:   recurring,
		CreatedBy:   createdBy,
	}

	instant, err := base.Instant(s.loc)
	if err != nil {
		return nil, model.Validationf("date", "invalid date/time")
	}

	now := s.now()
	if !instant.After(now) {
		return nil, model.Validationf("date", "event must be in the future")
	}

	instants := []time.Time{instant}
	if recurring {
		occs, err := recurrence.WeeklyOccurrences(instant)
		if err != nil {
			return nil, err
		}
		instants = occs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created []model.Event
	for _, occ := range instants {
		// Each occurrence is independently checked against "future".
		if !occ.After(now) {
			continue
		}
		e := base
		e.ID = s.ids.next(s.now())
		e.Date = occ.In(s.loc).Format("2006-01-02")
		e.CreatedAt = now
		e.Participants = []string{createdBy}
		s.events = append(s.events, e)
		created = append(created, e)
	}

	s.flush()
	return created, nil
}

// Get returns the event with the given id.
func (s *EventStore) Get(id int64) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// All returns a copy of every event in repository order.
func (s *EventStore) All() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ListFiltered returns events matching the optional group and type filters
// (zero values match everything), sorted ascending by instant. Events at
// the same instant keep repository insertion order.
func (s *EventStore) ListFiltered(groupID int64, typ model.EventType) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Event
	for _, e := range s.events {
		if groupID != 0 && e.GroupID != groupID {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, erri := out[i].Instant(s.loc)
		tj, errj := out[j].Instant(s.loc)
		if erri != nil || errj != nil {
			return false
		}
		return ti.Before(tj)
	})
	return out
}

// Delete removes the event and invokes the cancellation hook.
func (s *EventStore) Delete(id int64) error {
	s.mu.Lock()
	idx := -1
	for i, e := range s.events {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return model.ErrNotFound
	}
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	s.flush()
	hook := s.onDelete
	s.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return nil
}

// DeleteByGroup removes every event of the group, invoking the cancellation
// hook for each. Returns the removed event ids.
func (s *EventStore) DeleteByGroup(groupID int64) []int64 {
	s.mu.Lock()
	var removed []int64
	kept := s.events[:0]
	for _, e := range s.events {
		if e.GroupID == groupID {
			removed = append(removed, e.ID)
		} else {
			kept = append(kept, e)
		}
	}
	s.events = kept
	if len(removed) > 0 {
		s.flush()
	}
	hook := s.onDelete
	s.mu.Unlock()

	if hook != nil {
		for _, id := range removed {
			hook(id)
		}
	}
	return removed
}

// MarkNotificationSent latches the event's sweep dedup flag and persists.
func (s *EventStore) MarkNotificationSent(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].NotificationSent = true
			s.flush()
			return nil
		}
	}
	return model.ErrNotFound
}

// Join confirms attendance for user. Joining twice is a no-op.
func (s *EventStore) Join(id int64, user string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		if !s.events[i].HasParticipant(user) {
			s.events[i].Participants = append(s.events[i].Participants, user)
			s.flush()
		}
		return s.events[i], nil
	}
	return model.Event{}, model.ErrNotFound
}

// Leave withdraws attendance for user.
func (s *EventStore) Leave(id int64, user string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		// Copies handed out earlier alias the old backing array, so
		// compact into a fresh slice instead of rewriting it in place.
		kept := make([]string, 0, len(s.events[i].Participants))
		for _, p := range s.events[i].Participants {
			if p != user {
				kept = append(kept, p)
			}
		}
		s.events[i].Participants = kept
		s.flush()
		return s.events[i], nil
	}
	return model.Event{}, model.ErrNotFound
}

// flush persists the whole collection. Callers must hold the write lock.
func (s *EventStore) flush() {
	if err := s.docs.Write(storage.DocEvents, s.events); err != nil {
		s.logger.Warn("persist events failed, in-memory state kept", "error", err)
	}
}
