package verdict

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the persisted verdict discriminator.
type Action string

const (
	ActionShow Action = "SHOW"
	ActionHide Action = "HIDE"
)

// Record is either Hide or Show. Callers switch on the concrete type.
type Record interface {
	Action() Action
	Decided() time.Time
	sealed()
}

// Hide withholds the event's location.
type Hide struct {
	DecidedAt time.Time
}

// Show allows publishing the normalized place.
type Show struct {
	Place     string
	City      string
	MapURL    string
	DecidedAt time.Time
}

func (Hide) Action() Action { return ActionHide }
func (Show) Action() Action { return ActionShow }

func (h Hide) Decided() time.Time { return h.DecidedAt }
func (s Show) Decided() time.Time { return s.DecidedAt }

func (Hide) sealed() {}
func (Show) sealed() {}

// wireRecord is the persisted JSON shape of a Record.
type wireRecord struct {
	Action    Action `json:"action"`
	Place     string `json:"place,omitempty"`
	City      string `json:"city,omitempty"`
	MapURL    string `json:"mapUrl,omitempty"`
	DecidedAt string `json:"decidedAt,omitempty"`
}

func toWire(rec Record) wireRecord {
	w := wireRecord{Action: rec.Action()}
	if at := rec.Decided(); !at.IsZero() {
		w.DecidedAt = at.UTC().Format(time.RFC3339Nano)
	}
	if show, ok := rec.(Show); ok {
		w.Place = show.Place
		w.City = show.City
		w.MapURL = show.MapURL
	}
	return w
}

func fromWire(w wireRecord) (Record, error) {
	var decided time.Time
	if w.DecidedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, w.DecidedAt)
		if err != nil {
			return nil, fmt.Errorf("decidedAt %q: %w", w.DecidedAt, err)
		}
		decided = parsed
	}
	switch w.Action {
	case ActionShow:
		return Show{Place: w.Place, City: w.City, MapURL: w.MapURL, DecidedAt: decided}, nil
	case ActionHide:
		return Hide{DecidedAt: decided}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", w.Action)
	}
}

// EncodeDocument renders a snapshot as the cache document: one JSON object
// keyed by event key.
func EncodeDocument(snapshot map[Key]Record) ([]byte, error) {
	doc := make(map[Key]wireRecord, len(snapshot))
	for key, rec := range snapshot {
		doc[key] = toWire(rec)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeDocument parses a cache document. Entries with an unknown action are
// skipped and reported in the returned count; a document that is not a JSON
// object is an error.
func DecodeDocument(data []byte) (map[Key]Record, int, error) {
	var doc map[Key]wireRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parse cache document: %w", err)
	}
	out := make(map[Key]Record, len(doc))
	skipped := 0
	for key, w := range doc {
		rec, err := fromWire(w)
		if err != nil {
			skipped++
			continue
		}
		out[key] = rec
	}
	return out, skipped, nil
}
