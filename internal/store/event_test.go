package store

import (
	"log/slog"
	"testing"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/storage"
)

func testDocs(t *testing.T) storage.DocumentStore {
	t.Helper()
	docs, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test storage: %v", err)
	}
	t.Cleanup(func() { docs.Close() })
	return docs
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fixedNow pins the store clock so future/past checks are deterministic.
var fixedNow = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

func newTestEventStore(t *testing.T, docs storage.DocumentStore) *EventStore {
	t.Helper()
	s, err := NewEventStore(docs, time.UTC, discard())
	if err != nil {
		t.Fatalf("new event store: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestCreateFutureEvent(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	created, err := s.Create("Run", "morning run", 10, "Runners", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("got %d events, want 1", len(created))
	}

	e := created[0]
	if e.ID == 0 {
		t.Error("id should be assigned")
	}
	if e.GroupName != "Runners" {
		t.Errorf("group name = %q, want %q", e.GroupName, "Runners")
	}
	if len(e.Participants) != 1 || e.Participants[0] != "rodrigo" {
		t.Errorf("participants = %v, want creator only", e.Participants)
	}
	if e.NotificationSent {
		t.Error("notificationSent should start false")
	}
}

func TestCreatePastEventRejected(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	_, err := s.Create("Run", "", 10, "Runners", model.TypeSport, "2026-03-02", "06:00", false, "rodrigo")
	if !model.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(s.All()) != 0 {
		t.Error("repository should be unchanged after rejected create")
	}
}

func TestCreateMissingFields(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	cases := []struct {
		name                       string
		title, date, timeOfDay     string
		groupID                    int64
		typ                        model.EventType
	}{
		{"no title", "", "2026-03-02", "08:00", 10, model.TypeSport},
		{"no group", "Run", "2026-03-02", "08:00", 0, model.TypeSport},
		{"bad date", "Run", "tomorrow", "08:00", 10, model.TypeSport},
		{"bad time", "Run", "2026-03-02", "8am", 10, model.TypeSport},
		{"bad type", "Run", "2026-03-02", "08:00", 10, "party"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(tc.title, "", tc.groupID, "g", tc.typ, tc.date, tc.timeOfDay, false, "rodrigo")
			if !model.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
	if len(s.All()) != 0 {
		t.Error("no event should have been created")
	}
}

func TestCreateRecurringMaterializesWeeklyCopies(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	created, err := s.Create("Book club", "", 20, "Readers", model.TypeReading, "2026-03-02", "19:00", true, "rodrigo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("got %d events, want 5", len(created))
	}

	seen := make(map[int64]bool)
	for i, e := range created {
		if seen[e.ID] {
			t.Errorf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true

		wantDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i).Format("2006-01-02")
		if e.Date != wantDate {
			t.Errorf("copy %d date = %s, want %s", i, e.Date, wantDate)
		}
		if e.Time != "19:00" {
			t.Errorf("copy %d time = %s, want 19:00", i, e.Time)
		}
		if e.NotificationSent {
			t.Errorf("copy %d should have its own unset latch", i)
		}
	}
}

func TestIDsStrictlyIncreasing(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	created, err := s.Create("Book club", "", 20, "Readers", model.TypeReading, "2026-03-02", "19:00", true, "rodrigo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 1; i < len(created); i++ {
		if created[i].ID <= created[i-1].ID {
			t.Fatalf("ids not strictly increasing: %d then %d", created[i-1].ID, created[i].ID)
		}
	}
}

func TestListFilteredSortsByInstant(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	s.Create("Later", "", 10, "g", model.TypeOther, "2026-03-05", "09:00", false, "rodrigo")
	s.Create("Sooner", "", 10, "g", model.TypeOther, "2026-03-03", "09:00", false, "rodrigo")
	s.Create("Other group", "", 11, "h", model.TypeSport, "2026-03-04", "09:00", false, "rodrigo")

	all := s.ListFiltered(0, "")
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Title != "Sooner" || all[2].Title != "Later" {
		t.Errorf("wrong order: %s, %s, %s", all[0].Title, all[1].Title, all[2].Title)
	}

	byGroup := s.ListFiltered(11, "")
	if len(byGroup) != 1 || byGroup[0].Title != "Other group" {
		t.Errorf("group filter returned %v", byGroup)
	}

	byType := s.ListFiltered(0, model.TypeSport)
	if len(byType) != 1 || byType[0].Title != "Other group" {
		t.Errorf("type filter returned %v", byType)
	}
}

func TestListFilteredStableTieBreak(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	s.Create("First", "", 10, "g", model.TypeOther, "2026-03-03", "09:00", false, "rodrigo")
	s.Create("Second", "", 10, "g", model.TypeOther, "2026-03-03", "09:00", false, "rodrigo")

	all := s.ListFiltered(0, "")
	if all[0].Title != "First" || all[1].Title != "Second" {
		t.Errorf("tied instants should keep insertion order, got %s then %s", all[0].Title, all[1].Title)
	}
}

func TestDeleteInvokesCancelHook(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	var cancelled []int64
	s.OnDelete(func(id int64) { cancelled = append(cancelled, id) })

	created, _ := s.Create("Run", "", 10, "g", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	if err := s.Delete(created[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(cancelled) != 1 || cancelled[0] != created[0].ID {
		t.Errorf("cancel hook got %v, want [%d]", cancelled, created[0].ID)
	}
	if _, ok := s.Get(created[0].ID); ok {
		t.Error("event should be gone")
	}
}

func TestDeleteByGroupCascades(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	var cancelled []int64
	s.OnDelete(func(id int64) { cancelled = append(cancelled, id) })

	s.Create("A", "", 10, "g", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	s.Create("B", "", 10, "g", model.TypeSport, "2026-03-03", "08:00", false, "rodrigo")
	s.Create("C", "", 11, "h", model.TypeSport, "2026-03-04", "08:00", false, "rodrigo")

	removed := s.DeleteByGroup(10)
	if len(removed) != 2 {
		t.Fatalf("removed %d events, want 2", len(removed))
	}
	if len(cancelled) != 2 {
		t.Errorf("cancel hook called %d times, want 2", len(cancelled))
	}
	if len(s.All()) != 1 {
		t.Errorf("%d events left, want 1", len(s.All()))
	}
}

func TestMarkNotificationSent(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	created, _ := s.Create("Run", "", 10, "g", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	if err := s.MarkNotificationSent(created[0].ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	got, _ := s.Get(created[0].ID)
	if !got.NotificationSent {
		t.Error("latch should be set")
	}

	if err := s.MarkNotificationSent(999); err != model.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestJoinAndLeave(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	created, _ := s.Create("Run", "", 10, "g", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	id := created[0].ID

	e, err := s.Join(id, "ana")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(e.Participants) != 2 {
		t.Errorf("participants = %v, want 2", e.Participants)
	}

	// Joining twice is a no-op.
	e, _ = s.Join(id, "ana")
	if len(e.Participants) != 2 {
		t.Errorf("double join grew participants: %v", e.Participants)
	}

	e, err = s.Leave(id, "ana")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(e.Participants) != 1 || e.Participants[0] != "rodrigo" {
		t.Errorf("participants = %v, want creator only", e.Participants)
	}
}

func TestLeaveKeepsEarlierSnapshotsIntact(t *testing.T) {
	s := newTestEventStore(t, testDocs(t))

	created, _ := s.Create("Run", "", 10, "g", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	id := created[0].ID
	s.Join(id, "ana")

	snapshot, _ := s.Get(id)
	if _, err := s.Leave(id, "rodrigo"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	// The copy handed out before the leave must not see the compaction.
	if len(snapshot.Participants) != 2 {
		t.Fatalf("snapshot participants = %v, want 2", snapshot.Participants)
	}
	if snapshot.Participants[0] != "rodrigo" || snapshot.Participants[1] != "ana" {
		t.Errorf("snapshot mutated by later leave: %v", snapshot.Participants)
	}
}

func TestEventsSurviveReload(t *testing.T) {
	docs := testDocs(t)
	s := newTestEventStore(t, docs)

	created, _ := s.Create("Run", "", 10, "g", model.TypeSport, "2026-03-02", "08:00", false, "rodrigo")
	s.MarkNotificationSent(created[0].ID)

	reloaded := newTestEventStore(t, docs)
	got, ok := reloaded.Get(created[0].ID)
	if !ok {
		t.Fatal("event missing after reload")
	}
	if !got.NotificationSent {
		t.Error("latch should survive reload")
	}
}
