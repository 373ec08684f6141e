// Package recurrence expands recurring events into concrete occurrences.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// WeeklyCopies is how many additional weekly occurrences a recurring event
// materializes beyond the base occurrence.
const WeeklyCopies = 4

// WeeklyOccurrences returns the start instants of a weekly series beginning
// at start: the base occurrence plus WeeklyCopies more, one per week.
func WeeklyOccurrences(start time.Time) ([]time.Time, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   WeeklyCopies + 1,
		Dtstart: start,
	})
	if err != nil {
		return nil, fmt.Errorf("build weekly rule: %w", err)
	}
	return r.All(), nil
}
