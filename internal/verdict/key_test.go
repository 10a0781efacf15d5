package verdict_test

import (
	"strings"
	"testing"
	"time"

	"lastseen/internal/calendar"
	"lastseen/internal/verdict"
)

func TestKeyForInstantFallbacks(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)
	start := time.Date(2025, 2, 3, 10, 0, 0, 0, pst)
	end := start.Add(time.Hour)

	tests := []struct {
		name string
		ev   calendar.Event
		want string
	}{
		{"end timestamp", calendar.Event{ID: "e1", Start: calendar.At(start), End: calendar.At(end)}, "e1|2025-02-03T11:00:00-08:00|"},
		{"start timestamp", calendar.Event{ID: "e1", Start: calendar.At(start)}, "e1|2025-02-03T10:00:00-08:00|"},
		{"end date", calendar.Event{ID: "e1", Start: calendar.OnDate("2025-02-05"), End: calendar.OnDate("2025-02-06")}, "e1|2025-02-06|"},
		{"start date", calendar.Event{ID: "e1", Start: calendar.OnDate("2025-02-05")}, "e1|2025-02-05|"},
		{"no times", calendar.Event{ID: "e1"}, "e1|na|"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(verdict.KeyFor(tt.ev))
			if !strings.HasPrefix(got, tt.want) {
				t.Fatalf("KeyFor = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestKeyForLocationFingerprint(t *testing.T) {
	ev := calendar.Event{ID: "e1", Location: "Golden Gate Park"}
	first := verdict.KeyFor(ev)
	if first != verdict.KeyFor(ev) {
		t.Fatal("key must be deterministic")
	}
	parts := strings.Split(string(first), "|")
	if len(parts) != 3 || len(parts[2]) != 8 {
		t.Fatalf("unexpected key shape %q", first)
	}

	// sha1("") = da39a3ee...
	if got := verdict.KeyFor(calendar.Event{ID: "e1"}); got != "e1|na|da39a3ee" {
		t.Fatalf("empty location key = %q", got)
	}

	ev.Location = "Ocean Beach"
	if verdict.KeyFor(ev) == first {
		t.Fatal("changed location must change the key")
	}
	if first.EventID() != "e1" {
		t.Fatalf("EventID = %q", first.EventID())
	}
}
