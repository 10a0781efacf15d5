// Package publish writes the public "last seen" status document.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lastseen/internal/blobstore"
	"lastseen/internal/logging"
	"lastseen/internal/verdict"
)

// State is the status document. It is always replaced as a whole.
type State struct {
	Place     string     `json:"place"`
	City      string     `json:"city,omitempty"`
	MapURL    string     `json:"mapUrl,omitempty"`
	Updated   time.Time  `json:"updated"`
	EventTime *time.Time `json:"eventTime,omitempty"`
}

// FromShow builds the document for a shown verdict. A zero eventTime is
// omitted.
func FromShow(show verdict.Show, updated, eventTime time.Time) State {
	state := State{
		Place:   show.Place,
		City:    show.City,
		MapURL:  show.MapURL,
		Updated: updated.UTC(),
	}
	if !eventTime.IsZero() {
		at := eventTime.UTC()
		state.EventTime = &at
	}
	return state
}

// Placeholder builds the neutral document published when nothing qualifies.
func Placeholder(place string, updated time.Time) State {
	return State{Place: place, Updated: updated.UTC()}
}

// Publisher stores the status document under a fixed key.
type Publisher struct {
	blobs  blobstore.Store
	key    string
	logger *slog.Logger
}

// New returns a publisher writing to key in blobs.
func New(blobs blobstore.Store, key string, logger *slog.Logger) *Publisher {
	return &Publisher{blobs: blobs, key: key, logger: logging.NewComponentLogger(logger, "publish")}
}

// Key returns the document key.
func (p *Publisher) Key() string {
	return p.key
}

// Publish replaces the status document with state.
func (p *Publisher) Publish(ctx context.Context, state State) error {
	if state.Place == "" {
		return errors.New("publish: place is required")
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("publish: encode: %w", err)
	}
	if err := p.blobs.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.key, err)
	}
	logging.WithContext(ctx, p.logger).Info("status published",
		logging.String("place", state.Place),
		logging.String("city", state.City),
		logging.String("target", blobstore.Describe(p.blobs)+"/"+p.key),
	)
	return nil
}

// Current reads the published document. ok is false when nothing has been
// published yet.
func (p *Publisher) Current(ctx context.Context) (State, bool, error) {
	data, err := p.blobs.Get(ctx, p.key)
	if errors.Is(err, blobstore.ErrNotFound) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("read %s: %w", p.key, err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, false, fmt.Errorf("decode %s: %w", p.key, err)
	}
	return state, true, nil
}
