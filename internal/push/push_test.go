package push

import (
	"testing"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate keys: %v", err)
	}
	if pub == "" || priv == "" {
		t.Error("keys should be non-empty")
	}
	if pub == priv {
		t.Error("public and private keys must differ")
	}
}

func TestIconFor(t *testing.T) {
	if got := IconFor(model.TypeSport); got != "/icons/sport.svg" {
		t.Errorf("sport icon = %q", got)
	}
	// Unknown types fall back to the generic icon.
	if got := IconFor("unknown"); got != "/icons/other.svg" {
		t.Errorf("fallback icon = %q", got)
	}
}

func TestReminderActions(t *testing.T) {
	if len(ReminderActions) != 3 {
		t.Fatalf("got %d actions, want 3", len(ReminderActions))
	}
	want := []string{"join", "calendar", "snooze"}
	for i, a := range ReminderActions {
		if a.Action != want[i] {
			t.Errorf("action %d = %q, want %q", i, a.Action, want[i])
		}
	}
}
