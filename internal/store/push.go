package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

// PushStore tracks registered Web Push subscriptions.
type PushStore struct {
	mu     sync.RWMutex
	docs   storage.DocumentStore
	logger *slog.Logger
	subs   []model.PushSubscription
}

// NewPushStore loads the persisted subscriptions document.
func NewPushStore(docs storage.DocumentStore, logger *slog.Logger) (*PushStore, error) {
	s := &PushStore{docs: docs, logger: logger}
	if _, err := docs.Read(storage.DocSubscriptions, &s.subs); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe registers a subscription, replacing any existing record for the
// same endpoint (a re-subscribing device rotates its keys).
func (s *PushStore) Subscribe(endpoint, p256dh, auth, deviceName string) (model.PushSubscription, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return model.PushSubscription{}, model.Validationf("subscription", "endpoint and keys are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subs {
		if s.subs[i].Endpoint == endpoint {
			s.subs[i].P256dhKey = p256dh
			s.subs[i].AuthKey = auth
			s.subs[i].DeviceName = deviceName
			s.flush()
			return s.subs[i], nil
		}
	}

	sub := model.PushSubscription{
		ID:         uuid.NewString(),
		Endpoint:   endpoint,
		P256dhKey:  p256dh,
		AuthKey:    auth,
		DeviceName: deviceName,
		CreatedAt:  time.Now(),
	}
	s.subs = append(s.subs, sub)
	s.flush()
	return sub, nil
}

// List returns a copy of every subscription.
func (s *PushStore) List() []model.PushSubscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PushSubscription, len(s.subs))
	copy(out, s.subs)
	return out
}

// Delete removes the subscription with the given id.
func (s *PushStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			s.flush()
			return nil
		}
	}
	return model.ErrNotFound
}

// DeleteByEndpoint removes the subscription the push service reported as
// expired. Unknown endpoints are a no-op.
func (s *PushStore) DeleteByEndpoint(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.Endpoint == endpoint {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			s.flush()
			return
		}
	}
}

func (s *PushStore) flush() {
	if err := s.docs.Write(storage.DocSubscriptions, s.subs); err != nil {
		s.logger.Warn("persist push subscriptions failed, in-memory state kept", "error", err)
	}
}
