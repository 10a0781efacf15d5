package calendar_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lastseen/internal/calendar"
	"lastseen/internal/services"
)

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

func februaryWindow(loc *time.Location) (time.Time, time.Time) {
	return time.Date(2025, 2, 1, 0, 0, 0, 0, loc), time.Date(2025, 2, 15, 0, 0, 0, 0, loc)
}

func TestICSSourceListsExpandedEventsInOrder(t *testing.T) {
	loc := losAngeles(t)
	src := calendar.NewICSSource(calendar.ICSOptions{
		Location: filepath.Join("testdata", "feed.ics"),
		TimeZone: loc,
	})
	start, end := februaryWindow(loc)

	events, err := src.ListEvents(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}

	wantIDs := []string{"single-1", "cancel-1", "allday-1", "weekly-1_20250213T170000Z"}
	if len(events) != len(wantIDs) {
		ids := make([]string, 0, len(events))
		for _, ev := range events {
			ids = append(ids, ev.ID)
		}
		t.Fatalf("got events %v, want %v", ids, wantIDs)
	}
	for i, id := range wantIDs {
		if events[i].ID != id {
			t.Fatalf("events[%d].ID = %q, want %q", i, events[i].ID, id)
		}
	}

	single := events[0]
	if single.Location != "Blue Bottle Coffee, Oakland" {
		t.Fatalf("escaped location not decoded: %q", single.Location)
	}
	if got := single.End.DateTime.Format(time.RFC3339); got != "2025-02-03T11:00:00-08:00" {
		t.Fatalf("single end = %s", got)
	}

	cancelled := events[1]
	if !cancelled.Cancelled() || !cancelled.Private() {
		t.Fatalf("expected cancelled private event, got status=%q visibility=%q", cancelled.Status, cancelled.Visibility)
	}

	allDay := events[2]
	if allDay.Start.Date != "2025-02-05" || allDay.End.Date != "2025-02-06" || allDay.Start.HasDateTime() {
		t.Fatalf("unexpected all-day times: %+v", allDay)
	}

	moved := events[3]
	if moved.Location != "Golden Gate Park" {
		t.Fatalf("override not applied: %+v", moved)
	}
	if moved.Start.DateTime.Hour() != 12 {
		t.Fatalf("override start = %s", moved.Start.DateTime)
	}
}

func TestICSSourceCapsResults(t *testing.T) {
	loc := losAngeles(t)
	src := calendar.NewICSSource(calendar.ICSOptions{
		Location:   filepath.Join("testdata", "feed.ics"),
		TimeZone:   loc,
		MaxResults: 2,
	})
	start, end := februaryWindow(loc)
	events, err := src.ListEvents(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 || events[0].ID != "single-1" {
		t.Fatalf("unexpected capped events: %+v", events)
	}
}

func TestICSSourceExpandsRecurrenceAcrossWindow(t *testing.T) {
	loc := losAngeles(t)
	src := calendar.NewICSSource(calendar.ICSOptions{Location: filepath.Join("testdata", "feed.ics"), TimeZone: loc})
	start := time.Date(2025, 1, 29, 0, 0, 0, 0, loc)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, loc)
	events, err := src.ListEvents(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].ID != "weekly-1_20250130T170000Z" || events[0].Location != "Crissy Field" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestICSSourceFetchesURL(t *testing.T) {
	loc := losAngeles(t)
	body, err := os.ReadFile(filepath.Join("testdata", "feed.ics"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	src := calendar.NewICSSource(calendar.ICSOptions{Location: srv.URL + "/basic.ics", TimeZone: loc})
	start, end := februaryWindow(loc)
	events, err := src.ListEvents(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
}

func TestICSSourceSurfacesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	src := calendar.NewICSSource(calendar.ICSOptions{Location: srv.URL})
	_, err := src.ListEvents(context.Background(), time.Now(), time.Now().Add(time.Hour))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for 403, got %v", err)
	}

	missing := calendar.NewICSSource(calendar.ICSOptions{Location: filepath.Join(t.TempDir(), "absent.ics")})
	if _, err := missing.ListEvents(context.Background(), time.Now(), time.Now().Add(time.Hour)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing file, got %v", err)
	}
}

func TestICSSourceRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ics")
	if err := os.WriteFile(path, []byte("not a calendar\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := calendar.NewICSSource(calendar.ICSOptions{Location: path})
	if _, err := src.ListEvents(context.Background(), time.Now(), time.Now().Add(time.Hour)); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
