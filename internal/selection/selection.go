// Package selection picks the most recently completed event that has a SHOW
// verdict.
package selection

import (
	"slices"
	"strings"
	"time"

	"lastseen/internal/calendar"
	"lastseen/internal/verdict"
)

// Verdicts is the read side of the verdict cache.
type Verdicts interface {
	Get(ev calendar.Event) (verdict.Record, bool)
}

// Instant is the moment an event counts as completed: the end timestamp,
// else the start timestamp, else the end date at 23:59 in loc, else the
// start date at 23:59.
func Instant(ev calendar.Event, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch {
	case ev.End.HasDateTime():
		return ev.End.DateTime, true
	case ev.Start.HasDateTime():
		return ev.Start.DateTime, true
	}
	for _, date := range []string{ev.End.Date, ev.Start.Date} {
		if date == "" {
			continue
		}
		day, err := time.ParseInLocation(calendar.DateLayout, date, loc)
		if err != nil {
			continue
		}
		return day.Add(23*time.Hour + 59*time.Minute), true
	}
	return time.Time{}, false
}

// Select returns the event with the latest instant inside
// [now-lookback, now] whose cached verdict is a Show with a place. Equal
// instants keep the input order.
func Select(events []calendar.Event, now time.Time, lookback time.Duration, cache Verdicts, loc *time.Location) (calendar.Event, bool) {
	type candidate struct {
		ev calendar.Event
		at time.Time
	}
	cutoff := now.Add(-lookback)
	candidates := make([]candidate, 0, len(events))
	for _, ev := range events {
		at, ok := Instant(ev, loc)
		if !ok || at.Before(cutoff) || at.After(now) {
			continue
		}
		candidates = append(candidates, candidate{ev: ev, at: at})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return b.at.Compare(a.at)
	})
	for _, c := range candidates {
		rec, ok := cache.Get(c.ev)
		if !ok {
			continue
		}
		if show, ok := rec.(verdict.Show); ok && strings.TrimSpace(show.Place) != "" {
			return c.ev, true
		}
	}
	return calendar.Event{}, false
}
