package heuristic

import (
	"testing"

	"lastseen/internal/calendar"
)

func TestEvaluateDefaults(t *testing.T) {
	f := New(Options{})

	tests := []struct {
		name   string
		ev     calendar.Event
		reason string
	}{
		{"public venue", calendar.Event{Summary: "Coffee", Location: "Blue Bottle Coffee, Oakland"}, ""},
		{"cancelled", calendar.Event{Location: "Golden Gate Park", Status: calendar.StatusCancelled}, ReasonCancelled},
		{"cancelled upper case", calendar.Event{Location: "Golden Gate Park", Status: "CANCELLED"}, ReasonCancelled},
		{"no location", calendar.Event{Summary: "Lunch"}, ReasonNoLocation},
		{"blank location", calendar.Event{Summary: "Lunch", Location: "   "}, ReasonNoLocation},
		{"zoom link", calendar.Event{Location: "https://us02web.zoom.us/j/123456"}, ReasonVirtual},
		{"teams", calendar.Event{Location: "Microsoft Teams Meeting"}, ReasonVirtual},
		{"google meet", calendar.Event{Location: "Google Meet"}, ReasonVirtual},
		{"marker with street address", calendar.Event{Location: "Zoom room at 500 Market Street"}, ""},
		{"denylist in location", calendar.Event{Location: "Dr. Smith Dentist"}, ReasonDenylist},
		{"denylist in summary", calendar.Event{Summary: "Therapy session", Location: "Mission Bay"}, ReasonDenylist},
		{"denylist in description", calendar.Event{Location: "Corner building", Description: "meet at the office"}, ReasonDenylist},
		{"denylist case folded", calendar.Event{Location: "Company HQ"}, ReasonDenylist},
		{"suite abbreviation", calendar.Event{Location: "Pier 39, Ste 200"}, ReasonDenylist},
		{"keyword inside a word", calendar.Event{Location: "Lawn bowling club"}, ""},
		{"steak house", calendar.Event{Location: "House of Prime Rib steakhouse"}, ""},
		{"steams is not teams", calendar.Event{Location: "Steamship museum"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Evaluate(tt.ev)
			if got.Reason != tt.reason {
				t.Fatalf("Evaluate reason = %q, want %q", got.Reason, tt.reason)
			}
			if got.Pass != (tt.reason == "") {
				t.Fatalf("Evaluate pass = %v with reason %q", got.Pass, got.Reason)
			}
		})
	}
}

func TestEvaluateRejectPrivate(t *testing.T) {
	ev := calendar.Event{Location: "Golden Gate Park", Visibility: calendar.VisibilityPrivate}

	if got := New(Options{}).Evaluate(ev); !got.Pass {
		t.Fatalf("private events pass unless enabled, got %+v", got)
	}
	if got := New(Options{RejectPrivate: true}).Evaluate(ev); got.Reason != ReasonPrivate {
		t.Fatalf("expected private rejection, got %+v", got)
	}
	ev.Visibility = calendar.VisibilityPublic
	if got := New(Options{RejectPrivate: true}).Evaluate(ev); !got.Pass {
		t.Fatalf("public event rejected: %+v", got)
	}
}

func TestEvaluateCustomLists(t *testing.T) {
	f := New(Options{DenyKeywords: []string{"Gym"}, VirtualMarkers: []string{}})

	if got := f.Evaluate(calendar.Event{Location: "Zoom"}); !got.Pass {
		t.Fatalf("empty marker list disables the virtual rule, got %+v", got)
	}
	if got := f.Evaluate(calendar.Event{Location: "Home"}); !got.Pass {
		t.Fatalf("custom keywords replace the defaults, got %+v", got)
	}
	if got := f.Evaluate(calendar.Event{Location: "24 Hour GYM"}); got.Reason != ReasonDenylist {
		t.Fatalf("expected denylist, got %+v", got)
	}
}
