package store

import (
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

// GroupStore owns the group collection, including member bookkeeping.
type GroupStore struct {
	mu     sync.RWMutex
	docs   storage.DocumentStore
	logger *slog.Logger
	ids    idGen
	now    func() time.Time
	groups []model.Group
}

// NewGroupStore loads the persisted groups document.
func NewGroupStore(docs storage.DocumentStore, logger *slog.Logger) (*GroupStore, error) {
	s := &GroupStore{
		docs:   docs,
		logger: logger,
		now:    time.Now,
	}
	if _, err := docs.Read(storage.DocGroups, &s.groups); err != nil {
		return nil, err
	}
	for _, g := range s.groups {
		s.ids.seed(g.ID)
	}
	return s, nil
}

// Create adds a group with the creator as its admin member. Group names
// must be unique.
func (s *GroupStore) Create(name, description, creatorName, creatorEmail string) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Group{}, model.Validationf("name", "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if strings.EqualFold(g.Name, name) {
			return model.Group{}, model.Validationf("name", "a group named %q already exists", name)
		}
	}

	g := model.Group{
		ID:          s.ids.next(s.now()),
		Name:        name,
		Description: strings.TrimSpace(description),
		Members: []model.Member{
			{Name: creatorName, Email: creatorEmail, IsAdmin: true},
		},
		CreatedBy: creatorName,
		CreatedAt: s.now(),
	}
	s.groups = append(s.groups, g)
	s.flush()
	return g, nil
}

// Get returns the group with the given id.
func (s *GroupStore) Get(id int64) (model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return model.Group{}, false
}

// List returns a copy of every group in creation order.
func (s *GroupStore) List() []model.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// Delete removes the group. Cascading event deletion is the caller's job
// (see handler.GroupHandler.Delete).
func (s *GroupStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.groups {
		if g.ID == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			s.flush()
			return nil
		}
	}
	return model.ErrNotFound
}

// AddMember appends a member to the group. Emails must parse and be unique
// within the group.
func (s *GroupStore) AddMember(groupID int64, name, email string) (model.Group, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return model.Group{}, model.Validationf("name", "member name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Group{}, model.Validationf("email", "invalid email address")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID != groupID {
			continue
		}
		if s.groups[i].HasMember(email) {
			return model.Group{}, model.Validationf("email", "member already in group")
		}
		s.groups[i].Members = append(s.groups[i].Members, model.Member{Name: name, Email: email})
		s.flush()
		return s.groups[i], nil
	}
	return model.Group{}, model.ErrNotFound
}

// RemoveMember removes the member with the given email from the group.
func (s *GroupStore) RemoveMember(groupID int64, email string) (model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID != groupID {
			continue
		}
		// Group copies handed out earlier alias the old backing array,
		// so compact into a fresh slice instead of rewriting it in place.
		kept := make([]model.Member, 0, len(s.groups[i].Members))
		for _, m := range s.groups[i].Members {
			if m.Email != email {
				kept = append(kept, m)
			}
		}
		s.groups[i].Members = kept
		s.flush()
		return s.groups[i], nil
	}
	return model.Group{}, model.ErrNotFound
}

func (s *GroupStore) flush() {
	if err := s.docs.Write(storage.DocGroups, s.groups); err != nil {
		s.logger.Warn("persist groups failed, in-memory state kept", "error", err)
	}
}
