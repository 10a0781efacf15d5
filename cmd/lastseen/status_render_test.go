package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"lastseen/internal/publish"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Store", statusOK, "file:/tmp", false)
	if !strings.Contains(line, "Store:") || !strings.Contains(line, "[OK] file:/tmp") {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("Store", statusError, "down", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
	if got := renderField("Place", "Dolores Park"); got != "  Place:           Dolores Park" {
		t.Fatalf("renderField = %q", got)
	}
}

func TestStatusLines(t *testing.T) {
	lines := statusLines(publish.State{}, false, "file:/x/last-seen.json", time.UTC, false)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "[WARN] nothing published yet") {
		t.Fatalf("unexpected empty status: %s", joined)
	}

	event := time.Date(2025, 2, 3, 19, 0, 0, 0, time.UTC)
	state := publish.State{
		Place:     "Dolores Park",
		City:      "San Francisco, CA",
		Updated:   time.Date(2025, 2, 3, 20, 0, 0, 0, time.UTC),
		EventTime: &event,
	}
	joined = strings.Join(statusLines(state, true, "file:/x/last-seen.json", time.UTC, false), "\n")
	for _, want := range []string{"Dolores Park", "San Francisco, CA", "2025-02-03 19:00 UTC", "2025-02-03 20:00 UTC"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("status missing %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, "Map:") {
		t.Fatalf("empty map url should be omitted: %s", joined)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Event", "Action"}, [][]string{{"e1", "SHOW"}, {"e2"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"Event", "Action", "e1", "SHOW", "e2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}
