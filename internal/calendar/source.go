package calendar

import (
	"context"
	"time"
)

// Source lists events overlapping [start, end], ordered by start time.
// Failures are transient run-level errors.
type Source interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]Event, error)
}
