// Package delivery fans a fired reminder out to the user-facing channels
// and records it in the notification feed. The feed append is
// unconditional: a reminder that was due is logged even when every alert
// channel is disabled or unavailable.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/push"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/store"
	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/websocket"
)

const sendTimeout = 10 * time.Second

// Pusher sends one Web Push notification. *push.Service satisfies it.
type Pusher interface {
	Send(ctx context.Context, sub model.PushSubscription, payload push.Payload) error
}

// Broadcaster fans a message out to connected WebSocket clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

// Sink delivers reminders. Alerts are best effort; a nil Pusher or
// Broadcaster means that channel is unavailable and is skipped silently.
type Sink struct {
	settings *store.SettingsStore
	subs     *store.PushStore
	feed     *store.NotificationLog
	pusher   Pusher
	hub      Broadcaster
	logger   *slog.Logger
	baseURL  string
}

// NewSink wires the delivery channels together.
func NewSink(settings *store.SettingsStore, subs *store.PushStore, feed *store.NotificationLog, pusher Pusher, hub Broadcaster, baseURL string, logger *slog.Logger) *Sink {
	return &Sink{
		settings: settings,
		subs:     subs,
		feed:     feed,
		pusher:   pusher,
		hub:      hub,
		logger:   logger,
		baseURL:  baseURL,
	}
}

// Deliver alerts every channel about a fired reminder, then appends the
// feed entry. Channel failures never suppress the feed append.
func (s *Sink) Deliver(ev model.Event, label string) {
	msg := fmt.Sprintf("Reminder: '%s' starting %s", ev.Title, label)
	st := s.settings.Get()

	if st.BrowserEnabled {
		s.sendPush(ev, label, st)
		if s.hub != nil {
			s.hub.Broadcast(websocket.ReminderMessage(ev.ID, msg, st.VibrationEnabled))
		}
	}

	s.feed.Add(msg)
	s.logger.Info("reminder delivered", "event_id", ev.ID, "label", label)
}

// sendPush pushes the reminder to every registered device. Subscriptions
// the push service reports as expired are pruned on the spot.
func (s *Sink) sendPush(ev model.Event, label string, st model.NotificationSettings) {
	if s.pusher == nil {
		return
	}

	payload := push.Payload{
		Title:              ev.Title,
		Body:               fmt.Sprintf("Starting %s", label),
		Icon:               push.IconFor(ev.Type),
		Tag:                fmt.Sprintf("event-%d", ev.ID),
		URL:                fmt.Sprintf("%s/?event=%d&action=join", s.baseURL, ev.ID),
		EventID:            ev.ID,
		RequireInteraction: true,
		Actions:            push.ReminderActions,
	}
	if st.VibrationEnabled {
		payload.Vibration = push.ReminderVibration
	}

	for _, sub := range s.subs.List() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := s.pusher.Send(ctx, sub, payload)
		cancel()

		switch {
		case err == nil:
		case errors.Is(err, push.ErrExpired):
			s.subs.DeleteByEndpoint(sub.Endpoint)
			s.logger.Info("pruned expired push subscription", "device", sub.DeviceName)
		default:
			s.logger.Warn("push delivery failed", "device", sub.DeviceName, "error", err)
		}
	}
}
