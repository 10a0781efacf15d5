package testsupport

import (
	"context"
	"sync"
	"time"

	"lastseen/internal/calendar"
)

// StaticSource serves a fixed event list, keeping events that overlap the
// requested window. All-day events are always returned.
type StaticSource struct {
	Events []calendar.Event
	Err    error

	mu      sync.Mutex
	windows [][2]time.Time
}

// ListEvents implements calendar.Source.
func (s *StaticSource) ListEvents(_ context.Context, start, end time.Time) ([]calendar.Event, error) {
	s.mu.Lock()
	s.windows = append(s.windows, [2]time.Time{start, end})
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []calendar.Event
	for _, ev := range s.Events {
		if !ev.Start.HasDateTime() {
			out = append(out, ev)
			continue
		}
		evEnd := ev.Start.DateTime
		if ev.End.HasDateTime() {
			evEnd = ev.End.DateTime
		}
		if ev.Start.DateTime.After(end) || evEnd.Before(start) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Windows returns every requested [start, end] pair.
func (s *StaticSource) Windows() [][2]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]time.Time(nil), s.windows...)
}
