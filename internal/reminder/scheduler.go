// Package reminder arms and fires event reminders. Two paths deliver:
// timers armed when an event is created, and a periodic recovery sweep
// that catches reminders whose timers were lost to a restart.
package reminder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

// Reminders fire at these minute offsets before the event, plus the
// user-configured lead time from settings.
const (
	shortOffsetMinutes = 5
	snoozeDelay        = 5 * time.Minute
)

// Deliverer receives a fired reminder for an event. The label describes
// how far out the event is ("in 15 minutes", "NOW").
type Deliverer interface {
	Deliver(ev model.Event, label string)
}

// task is one armed timer slot in the arena.
type task struct {
	eventID int64
	timer   *time.Timer
	gen     uint64
	active  bool
}

// Scheduler arms per-event reminder timers. Slots live in a reusable
// arena; a per-event index makes cancellation O(timers per event).
type Scheduler struct {
	mu        sync.Mutex
	events    *store.EventStore
	settings  *store.SettingsStore
	deliverer Deliverer
	logger    *slog.Logger

	tasks    []task
	freeList []int
	byEvent  map[int64][]int

	now   func() time.Time
	delay time.Duration // snooze re-arm delay
}

// NewScheduler creates a Scheduler delivering through d.
func NewScheduler(events *store.EventStore, settings *store.SettingsStore, d Deliverer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		events:    events,
		settings:  settings,
		deliverer: d,
		logger:    logger,
		byEvent:   make(map[int64][]int),
		now:       time.Now,
		delay:     snoozeDelay,
	}
}

// offsetLabel renders a minute offset the way notifications phrase it.
func offsetLabel(minutes int) string {
	if minutes <= 0 {
		return "NOW"
	}
	return fmt.Sprintf("in %d minutes", minutes)
}

// Schedule arms one timer per reminder offset whose fire time is still
// in the future. Offsets already in the past are skipped; the recovery
// sweep covers anything missed.
func (s *Scheduler) Schedule(ev model.Event) error {
	instant, err := ev.Instant(s.events.Location())
	if err != nil {
		return err
	}

	timing := s.settings.Get().TimingMinutes
	offsets := []int{timing, shortOffsetMinutes, 0}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, off := range offsets {
		// A configured lead equal to the built-in short offset arms two
		// timers at the same instant; both fire and both are logged.
		fireAt := instant.Add(-time.Duration(off) * time.Minute)
		wait := fireAt.Sub(now)
		if wait <= 0 {
			continue
		}
		s.armLocked(ev.ID, wait, offsetLabel(off))
	}
	return nil
}

// Snooze re-arms exactly one delivery for the event a short delay out.
func (s *Scheduler) Snooze(eventID int64) error {
	if _, ok := s.events.Get(eventID); !ok {
		return model.ErrNotFound
	}

	s.mu.Lock()
	s.armLocked(eventID, s.delay, "")
	s.mu.Unlock()

	s.logger.Info("reminder snoozed", "event_id", eventID, "delay", s.delay)
	return nil
}

// armLocked allocates a slot and starts its timer. An empty label means
// the label is computed at fire time from the event's remaining lead.
func (s *Scheduler) armLocked(eventID int64, wait time.Duration, label string) {
	var slot int
	if n := len(s.freeList); n > 0 {
		slot = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
	} else {
		slot = len(s.tasks)
		s.tasks = append(s.tasks, task{})
	}

	gen := s.tasks[slot].gen + 1
	s.tasks[slot] = task{eventID: eventID, gen: gen, active: true}
	s.byEvent[eventID] = append(s.byEvent[eventID], slot)
	s.tasks[slot].timer = time.AfterFunc(wait, func() {
		s.fire(slot, gen, label)
	})
}

// fire runs in the timer goroutine. The generation check guards against
// a slot that was cancelled and reused before the callback ran.
func (s *Scheduler) fire(slot int, gen uint64, label string) {
	s.mu.Lock()
	if s.tasks[slot].gen != gen || !s.tasks[slot].active {
		s.mu.Unlock()
		return
	}
	eventID := s.tasks[slot].eventID
	s.releaseLocked(slot)
	s.mu.Unlock()

	// Re-fetch at fire time: a deleted event is a silent skip.
	ev, ok := s.events.Get(eventID)
	if !ok {
		return
	}

	if label == "" {
		label = s.remainingLabel(ev)
	}
	s.deliverer.Deliver(ev, label)
}

// remainingLabel computes the label from the event's remaining lead time.
func (s *Scheduler) remainingLabel(ev model.Event) string {
	instant, err := ev.Instant(s.events.Location())
	if err != nil {
		return "NOW"
	}
	mins := int(instant.Sub(s.now()).Round(time.Minute) / time.Minute)
	return offsetLabel(mins)
}

// releaseLocked stops tracking a slot and returns it to the free list.
func (s *Scheduler) releaseLocked(slot int) {
	eventID := s.tasks[slot].eventID
	s.tasks[slot].active = false
	s.tasks[slot].gen++
	s.tasks[slot].timer = nil
	s.freeList = append(s.freeList, slot)

	slots := s.byEvent[eventID]
	for i, sl := range slots {
		if sl == slot {
			s.byEvent[eventID] = append(slots[:i], slots[i+1:]...)
			break
		}
	}
	if len(s.byEvent[eventID]) == 0 {
		delete(s.byEvent, eventID)
	}
}

// Cancel stops every armed timer for the event. Cancelling an event with
// no timers is a no-op.
func (s *Scheduler) Cancel(eventID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := s.byEvent[eventID]
	for _, slot := range slots {
		if t := s.tasks[slot].timer; t != nil {
			t.Stop()
		}
		s.tasks[slot].active = false
		s.tasks[slot].gen++
		s.tasks[slot].timer = nil
		s.freeList = append(s.freeList, slot)
	}
	delete(s.byEvent, eventID)
}

// Active returns the number of armed timers.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if t.active {
			n++
		}
	}
	return n
}

// Rearm schedules reminders for every future event. Called at startup to
// recover timers lost to the previous shutdown.
func (s *Scheduler) Rearm() {
	for _, ev := range s.events.All() {
		if err := s.Schedule(ev); err != nil {
			s.logger.Warn("rearm reminder", "event_id", ev.ID, "error", err)
		}
	}
}

// Shutdown cancels every armed timer.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].active {
			if t := s.tasks[i].timer; t != nil {
				t.Stop()
			}
			s.tasks[i].active = false
			s.tasks[i].gen++
			s.tasks[i].timer = nil
			s.freeList = append(s.freeList, i)
		}
	}
	s.byEvent = make(map[int64][]int)
}
