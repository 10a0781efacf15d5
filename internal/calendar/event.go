package calendar

import (
	"strings"
	"time"
)

// DateLayout is the all-day date format.
const DateLayout = "2006-01-02"

// Status is the scheduling status of an event.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// Visibility is the access class of an event.
type Visibility string

const (
	VisibilityDefault      Visibility = "default"
	VisibilityPublic       Visibility = "public"
	VisibilityPrivate      Visibility = "private"
	VisibilityConfidential Visibility = "confidential"
)

// EventTime is either a timestamp or an all-day date. At most one is set.
type EventTime struct {
	DateTime time.Time
	Date     string
}

// At returns a timed EventTime.
func At(t time.Time) EventTime { return EventTime{DateTime: t} }

// OnDate returns an all-day EventTime for a YYYY-MM-DD date.
func OnDate(date string) EventTime { return EventTime{Date: date} }

// HasDateTime reports whether the value carries a timestamp.
func (t EventTime) HasDateTime() bool { return !t.DateTime.IsZero() }

// HasDate reports whether the value carries an all-day date.
func (t EventTime) HasDate() bool { return strings.TrimSpace(t.Date) != "" }

// IsZero reports whether neither form is set.
func (t EventTime) IsZero() bool { return !t.HasDateTime() && !t.HasDate() }

// Event is one calendar entry as read from a source. Events are treated as
// immutable once listed.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       EventTime
	End         EventTime
	Status      Status
	Visibility  Visibility
}

// Cancelled reports whether the event was cancelled.
func (e Event) Cancelled() bool {
	return Status(strings.ToLower(string(e.Status))) == StatusCancelled
}

// Private reports whether the event is marked private or confidential.
func (e Event) Private() bool {
	switch Visibility(strings.ToLower(string(e.Visibility))) {
	case VisibilityPrivate, VisibilityConfidential:
		return true
	default:
		return false
	}
}

// startSortKey orders events by start, all-day dates at local midnight.
func (e Event) startSortKey(loc *time.Location) time.Time {
	if e.Start.HasDateTime() {
		return e.Start.DateTime
	}
	if e.Start.HasDate() {
		if day, err := time.ParseInLocation(DateLayout, e.Start.Date, loc); err == nil {
			return day
		}
	}
	return time.Time{}
}
