// Package push sends Web Push notifications to subscribed devices. The
// service worker on the receiving end renders the payload and routes the
// action buttons.
package push

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sethvargo/go-retry"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Action is one button on the rendered notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Payload is the JSON handed to the service worker. EventID and URL let the
// worker deep-link back into the app; Vibration is the device vibration
// pattern in milliseconds.
type Payload struct {
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	Icon               string   `json:"icon,omitempty"`
	Tag                string   `json:"tag,omitempty"`
	URL                string   `json:"url,omitempty"`
	EventID            int64    `json:"eventId,omitempty"`
	RequireInteraction bool     `json:"requireInteraction"`
	Vibration          []int    `json:"vibrate,omitempty"`
	Actions            []Action `json:"actions,omitempty"`
}

// ReminderVibration is the pattern used for event reminders.
var ReminderVibration = []int{200, 100, 200, 100, 200}

// ReminderActions are the three buttons every reminder carries.
var ReminderActions = []Action{
	{Action: "join", Title: "Confirm attendance"},
	{Action: "calendar", Title: "View in calendar"},
	{Action: "snooze", Title: "Remind me in 5 min"},
}

var typeIcons = map[model.EventType]string{
	model.TypeSport:   "/icons/sport.svg",
	model.TypeReading: "/icons/reading.svg",
	model.TypeAdmin:   "/icons/admin.svg",
	model.TypeOther:   "/icons/other.svg",
}

// IconFor selects the notification icon for an event type.
func IconFor(t model.EventType) string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return typeIcons[model.TypeOther]
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// Service handles sending web push notifications.
type Service struct {
	publicKey  string
	privateKey string
	subscriber string
}

// NewService creates a new push service with VAPID keys.
func NewService(cfg Config) *Service {
	sub := cfg.Subscriber
	if sub == "" {
		sub = "mailto:noreply@agendaemgrupo.app"
	}
	return &Service{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: sub,
	}
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send delivers a payload to one subscription. Transient push-service
// failures (5xx) are retried twice before giving up.
func (s *Service) Send(ctx context.Context, sub model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	backoff := retry.WithMaxRetries(2, retry.NewConstant(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return s.send(ctx, sub, data)
	})
}

func (s *Service) send(ctx context.Context, sub model.PushSubscription, data []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             86400,
	})
	if err != nil {
		return retry.RetryableError(fmt.Errorf("send push: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		return ErrExpired
	case resp.StatusCode >= 500:
		return retry.RetryableError(fmt.Errorf("push service returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.Bytes())

	return publicKey, privateKey, nil
}
