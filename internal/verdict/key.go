package verdict

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"lastseen/internal/calendar"
)

// Key identifies one decided event.
type Key string

const (
	keySeparator   = "|"
	noInstant      = "na"
	fingerprintLen = 8
)

// KeyFor derives the cache key for ev as "<id>|<instant>|<location hash>".
// The instant is the end timestamp, else start timestamp, else end date, else
// start date, else "na".
func KeyFor(ev calendar.Event) Key {
	return Key(ev.ID + keySeparator + instantText(ev) + keySeparator + locationFingerprint(ev.Location))
}

func instantText(ev calendar.Event) string {
	switch {
	case ev.End.HasDateTime():
		return ev.End.DateTime.Format(time.RFC3339)
	case ev.Start.HasDateTime():
		return ev.Start.DateTime.Format(time.RFC3339)
	case ev.End.HasDate():
		return strings.TrimSpace(ev.End.Date)
	case ev.Start.HasDate():
		return strings.TrimSpace(ev.Start.Date)
	default:
		return noInstant
	}
}

func locationFingerprint(location string) string {
	sum := sha1.Sum([]byte(location))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// EventID returns the event identifier portion of the key.
func (k Key) EventID() string {
	id, _, _ := strings.Cut(string(k), keySeparator)
	return id
}
