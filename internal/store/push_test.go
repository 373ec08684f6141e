package store

import (
	"testing"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
)

func newTestPushStore(t *testing.T) *PushStore {
	t.Helper()
	s, err := NewPushStore(testDocs(t), discard())
	if err != nil {
		t.Fatalf("new push store: %v", err)
	}
	return s
}

func TestSubscribeAndList(t *testing.T) {
	s := newTestPushStore(t)

	sub, err := s.Subscribe("https://push.example/ep1", "p256dh-key", "auth-key", "Phone")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.ID == "" {
		t.Error("id should be assigned")
	}
	if len(s.List()) != 1 {
		t.Errorf("got %d subscriptions, want 1", len(s.List()))
	}
}

func TestSubscribeSameEndpointRotatesKeys(t *testing.T) {
	s := newTestPushStore(t)

	first, _ := s.Subscribe("https://push.example/ep1", "old-key", "old-auth", "Phone")
	second, err := s.Subscribe("https://push.example/ep1", "new-key", "new-auth", "Phone")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}

	if second.ID != first.ID {
		t.Error("resubscribing the same endpoint should keep the record")
	}
	if second.P256dhKey != "new-key" {
		t.Errorf("p256dh = %q, want rotated key", second.P256dhKey)
	}
	if len(s.List()) != 1 {
		t.Errorf("got %d subscriptions, want 1", len(s.List()))
	}
}

func TestSubscribeMissingKeys(t *testing.T) {
	s := newTestPushStore(t)

	if _, err := s.Subscribe("https://push.example/ep1", "", "auth", "Phone"); !model.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestDeleteByEndpoint(t *testing.T) {
	s := newTestPushStore(t)

	s.Subscribe("https://push.example/ep1", "k", "a", "Phone")
	s.DeleteByEndpoint("https://push.example/ep1")
	if len(s.List()) != 0 {
		t.Error("expired subscription should be pruned")
	}

	// Unknown endpoint is a no-op.
	s.DeleteByEndpoint("https://push.example/unknown")
}
