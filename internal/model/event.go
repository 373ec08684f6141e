package model

import (
	"fmt"
	"time"
)

// EventType categorizes an event for icon selection and filtering.
type EventType string

const (
	TypeSport   EventType = "sport"
	TypeReading EventType = "reading"
	TypeAdmin   EventType = "admin"
	TypeOther   EventType = "other"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case TypeSport, TypeReading, TypeAdmin, TypeOther:
		return true
	}
	return false
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Event is a scheduled group event. Date and Time are kept as the user
// entered them; Instant combines them in the configured location.
//
// NotificationSent latches the recovery sweep only: once true, the sweep
// never fires for this event again. Timers armed at creation time are not
// gated by it.
type Event struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	GroupID          int64     `json:"groupId"`
	GroupName        string    `json:"groupName"`
	Type             EventType `json:"type"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Recurring        bool      `json:"recurring"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	Participants     []string  `json:"participants"`
	NotificationSent bool      `json:"notificationSent"`
}

// Instant returns the single point in time the event starts at, interpreting
// Date and Time in the given location.
func (e Event) Instant(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+"T"+timeLayout, e.Date+"T"+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event instant: %w", err)
	}
	return t, nil
}

// HasParticipant reports whether user has confirmed attendance.
func (e Event) HasParticipant(user string) bool {
	for _, p := range e.Participants {
		if p == user {
			return true
		}
	}
	return false
}

// ValidDate reports whether s is a well-formed calendar date (2006-01-02).
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a well-formed local time of day (15:04).
func ValidTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil
}
