package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange    = errors.New("schedule: end date is before start date")
	ErrInvalidDuration = errors.New("schedule: session duration must be positive")
)

const occurrenceKeyLayout = "2006-01-02T15:04"

// Conflict reports overlaps with already committed sessions. A nil *Conflict
// on an occurrence means the check was never run, which is distinct from a
// check that found nothing.
type Conflict struct {
	HasConflict bool `json:"has_conflict"`
	Count       int  `json:"count"`
}

// Occurrence is one computed instance of a series' recurrence. It is not
// persisted; publishing turns selected occurrences into class sessions.
type Occurrence struct {
	Key      string    `json:"key"`
	Date     string    `json:"date"`
	Weekday  int       `json:"weekday"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	Conflict *Conflict `json:"conflict,omitempty"`
}

// Expander turns a date range and a recurrence rule into concrete
// occurrences. It is pure: no I/O, safe for concurrent use, and for fixed
// inputs it always yields the same ordered list with the same keys.
type Expander struct {
	loc *time.Location
}

// NewExpander returns an expander that generates occurrences in loc.
// A nil location means UTC.
func NewExpander(loc *time.Location) *Expander {
	if loc == nil {
		loc = time.UTC
	}
	return &Expander{loc: loc}
}

// Expand walks the inclusive [startDate, endDate] calendar range and emits an
// occurrence for every day whose weekday is selected by the rule, anchored at
// the rule's time of day and lasting durationMinutes. A nil rule means the
// series has no recurring expansion and yields an empty list; so does a rule
// with an empty weekday set. Results are strictly ascending by start time.
func (e *Expander) Expand(startDate, endDate time.Time, rule *Rule, durationMinutes int) ([]Occurrence, error) {
	startDay := dateOnly(startDate, e.loc)
	endDay := dateOnly(endDate, e.loc)
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			startDay.Format(time.DateOnly), endDay.Format(time.DateOnly))
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, durationMinutes)
	}
	if rule == nil || len(rule.Weekdays) == 0 {
		return []Occurrence{}, nil
	}

	selected := make(map[time.Weekday]bool, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		selected[day] = true
	}

	duration := time.Duration(durationMinutes) * time.Minute
	occurrences := make([]Occurrence, 0)

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		if !selected[day.Weekday()] {
			continue
		}

		startAt := time.Date(day.Year(), day.Month(), day.Day(), rule.Hour, rule.Minute, 0, 0, e.loc)
		occurrences = append(occurrences, Occurrence{
			Key:     OccurrenceKey(startAt),
			Date:    day.Format(time.DateOnly),
			Weekday: ISOWeekday(day.Weekday()),
			StartAt: startAt,
			EndAt:   startAt.Add(duration),
		})
	}

	return occurrences, nil
}

// OccurrenceKey derives the stable identifier for an occurrence from its
// local start time and the current rule version.
func OccurrenceKey(startAt time.Time) string {
	return startAt.Format(occurrenceKeyLayout) + "#" + RuleVersion
}

// dateOnly keeps the calendar components of t as-is and re-anchors them in
// loc. Dates arrive from storage as UTC midnights; converting the instant
// instead of the components would shift the day west of UTC.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
