package reminder

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
)

const (
	// DefaultSweepSpec is the cron schedule for the recovery sweep.
	DefaultSweepSpec = "@every 30s"
	// DefaultSweepTolerance is how far a notification time may lie from
	// the current tick and still count as due.
	DefaultSweepTolerance = 60 * time.Second
)

// Sweep periodically re-checks every event against the current settings
// and delivers reminders whose timers were lost (restart, closed tab).
// An event's NotificationSent latch gates the sweep only; it never
// suppresses timer deliveries.
type Sweep struct {
	events    *store.EventStore
	settings  *store.SettingsStore
	deliverer Deliverer
	logger    *slog.Logger

	cron      *cron.Cron
	tolerance time.Duration
	now       func() time.Time
}

// NewSweep builds a Sweep ticking on the given cron spec.
func NewSweep(events *store.EventStore, settings *store.SettingsStore, d Deliverer, logger *slog.Logger, spec string, tolerance time.Duration) (*Sweep, error) {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	if tolerance <= 0 {
		tolerance = DefaultSweepTolerance
	}

	s := &Sweep{
		events:    events,
		settings:  settings,
		deliverer: d,
		logger:    logger,
		cron:      cron.New(),
		tolerance: tolerance,
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins ticking in a background goroutine.
func (s *Sweep) Start() {
	s.cron.Start()
	s.logger.Info("recovery sweep started", "tolerance", s.tolerance)
}

// Stop halts the tick schedule and waits for a running sweep to finish.
func (s *Sweep) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs a single sweep pass. The lead time is read from the
// current settings on every pass, so a settings change retargets
// reminders for events that have not fired yet.
func (s *Sweep) RunOnce() {
	now := s.now()
	timing := s.settings.Get().TimingMinutes
	lead := time.Duration(timing) * time.Minute
	loc := s.events.Location()

	for _, ev := range s.events.All() {
		if ev.NotificationSent {
			continue
		}

		instant, err := ev.Instant(loc)
		if err != nil {
			s.logger.Warn("sweep: unparseable event instant", "event_id", ev.ID, "error", err)
			continue
		}

		notifyAt := instant.Add(-lead)
		diff := now.Sub(notifyAt)
		if diff < 0 {
			diff = -diff
		}
		if diff >= s.tolerance {
			continue
		}

		s.deliverer.Deliver(ev, offsetLabel(timing))
		if err := s.events.MarkNotificationSent(ev.ID); err != nil {
			s.logger.Warn("sweep: latch notification", "event_id", ev.ID, "error", err)
		}
	}
}
