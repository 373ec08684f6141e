package store

import (
	"testing"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
)

func TestSettingsDefaultsWhenAbsent(t *testing.T) {
	s, err := NewSettingsStore(testDocs(t), discard())
	if err != nil {
		t.Fatalf("new settings store: %v", err)
	}

	got := s.Get()
	if got.TimingMinutes != 15 {
		t.Errorf("timing = %d, want 15", got.TimingMinutes)
	}
	if !got.BrowserEnabled || !got.VibrationEnabled {
		t.Error("browser and vibration default to enabled")
	}
	if got.CalendarAutoExport {
		t.Error("calendar auto-export defaults to disabled")
	}
}

func TestSettingsUpdateWholeRecord(t *testing.T) {
	docs := testDocs(t)
	s, _ := NewSettingsStore(docs, discard())

	want := model.NotificationSettings{TimingMinutes: 30, BrowserEnabled: false, VibrationEnabled: true}
	if err := s.Update(want); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Get(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	reloaded, _ := NewSettingsStore(docs, discard())
	if got := reloaded.Get(); got != want {
		t.Errorf("after reload got %+v, want %+v", got, want)
	}
}

func TestSettingsUpdateRejectsNonPositiveTiming(t *testing.T) {
	s, _ := NewSettingsStore(testDocs(t), discard())

	err := s.Update(model.NotificationSettings{TimingMinutes: 0})
	if !model.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	if s.Get().TimingMinutes != 15 {
		t.Error("rejected update must not change the record")
	}
}
