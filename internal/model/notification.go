package model

import "time"

// NotificationSettings controls reminder timing and delivery channels.
// It is read and written as a whole record.
type NotificationSettings struct {
	TimingMinutes      int  `json:"timingMinutes"`
	BrowserEnabled     bool `json:"browserEnabled"`
	VibrationEnabled   bool `json:"vibrationEnabled"`
	CalendarAutoExport bool `json:"calendarAutoExport"`
}

// DefaultNotificationSettings returns the settings applied when no record
// has been persisted yet.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		TimingMinutes:      15,
		BrowserEnabled:     true,
		VibrationEnabled:   true,
		CalendarAutoExport: false,
	}
}

// NotificationLogEntry is one row of the in-app notification feed.
// Read is persisted for the feed renderer but no core operation flips it.
type NotificationLogEntry struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// PushSubscription is a registered Web Push endpoint for one device.
type PushSubscription struct {
	ID         string    `json:"id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dhKey"`
	AuthKey    string    `json:"authKey"`
	DeviceName string    `json:"deviceName"`
	CreatedAt  time.Time `json:"createdAt"`
}
