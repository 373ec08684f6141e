// Package ics renders events as iCalendar files so reminders survive in
// the user's external calendar. Each event carries display alarms at 15
// and 5 minutes before start.
package ics

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
)

const (
	uidDomain     = "agendaemgrupo.app"
	productID     = "-//Agenda em Grupo//PT-BR"
	eventDuration = time.Hour
)

var alarmTriggers = []string{"-PT15M", "-PT5M"}

// Calendar renders the events as one iCalendar document.
func Calendar(events []model.Event, loc *time.Location) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		if err := addEvent(cal, ev, loc); err != nil {
			return "", err
		}
	}
	return cal.Serialize(), nil
}

// Export renders a single event.
func Export(ev model.Event, loc *time.Location) (string, error) {
	return Calendar([]model.Event{ev}, loc)
}

// WriteFile renders the events and writes the document to path. Used by
// the auto-export option to keep a calendar file current on disk.
func WriteFile(path string, events []model.Event, loc *time.Location) error {
	data, err := Calendar(events, loc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write calendar file: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, ev model.Event, loc *time.Location) error {
	start, err := ev.Instant(loc)
	if err != nil {
		return fmt.Errorf("event %d: %w", ev.ID, err)
	}

	e := cal.AddEvent(fmt.Sprintf("%d@%s", ev.ID, uidDomain))
	e.SetDtStampTime(time.Now())
	e.SetStartAt(start)
	e.SetEndAt(start.Add(eventDuration))
	e.SetSummary(ev.Title)
	e.SetDescription(description(ev))
	e.SetStatus(ical.ObjectStatusConfirmed)

	for _, trigger := range alarmTriggers {
		a := e.AddAlarm()
		a.SetAction(ical.ActionDisplay)
		a.SetTrigger(trigger)
	}
	return nil
}

// description augments the user text with the group and provenance so
// the entry stays meaningful inside an external calendar.
func description(ev model.Event) string {
	parts := make([]string, 0, 3)
	if ev.Description != "" {
		parts = append(parts, ev.Description)
	}
	if ev.GroupName != "" {
		parts = append(parts, "Group: "+ev.GroupName)
	}
	parts = append(parts, "Exported from Agenda em Grupo")
	return strings.Join(parts, "\n")
}
