// Package geocode resolves a free-text place label to a display name, a
// "City, ST" label and a map link. Every lookup gap degrades to a partial
// result; only transport failures are errors.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"lastseen/internal/logging"
	"lastseen/internal/services/places"
)

// Lookup is the two-step place search. *places.Client satisfies it.
type Lookup interface {
	Configured() bool
	SearchText(ctx context.Context, query string) (string, bool, error)
	Details(ctx context.Context, id string) (places.Details, error)
}

// Place is a normalized location. OK is true whenever the label can be
// published, including the degraded pass-through cases.
type Place struct {
	Place  string
	City   string
	MapURL string
	OK     bool
}

// Normalizer resolves labels through a Lookup.
type Normalizer struct {
	lookup Lookup
	logger *slog.Logger
}

// New returns a normalizer. A nil or unconfigured lookup passes labels
// through unchanged.
func New(lookup Lookup, logger *slog.Logger) *Normalizer {
	return &Normalizer{lookup: lookup, logger: logging.NewComponentLogger(logger, "geocode")}
}

// Normalize resolves label.
func (n *Normalizer) Normalize(ctx context.Context, label string) (Place, error) {
	label = strings.TrimSpace(label)
	passthrough := Place{Place: label, OK: true}
	log := logging.WithContext(ctx, n.logger)

	if n.lookup == nil || !n.lookup.Configured() {
		log.Debug("geocoding unconfigured; using label as-is", logging.String("label", label))
		return passthrough, nil
	}
	if label == "" {
		return passthrough, nil
	}

	id, found, err := n.lookup.SearchText(ctx, label)
	if err != nil {
		return Place{}, fmt.Errorf("geocode search %q: %w", label, err)
	}
	if !found {
		log.Debug("no place candidate; using label as-is", logging.String("label", label))
		return passthrough, nil
	}

	details, err := n.lookup.Details(ctx, id)
	if err != nil {
		return Place{}, fmt.Errorf("geocode details %q: %w", id, err)
	}

	place := Place{
		Place:  details.DisplayName,
		City:   cityLabel(details),
		MapURL: details.MapURL,
		OK:     true,
	}
	if place.Place == "" {
		place.Place = label
	}
	log.Debug("place normalized",
		logging.String("label", label),
		logging.String("place", place.Place),
		logging.String("city", place.City),
	)
	return place, nil
}

// cityLabel prefers structured components (locality and the short state
// code) and fills whatever is missing from the formatted address.
func cityLabel(details places.Details) string {
	var city, state string
	for _, comp := range details.Components {
		if city == "" && comp.HasType("locality") {
			city = comp.LongText
		}
		if state == "" && comp.HasType("administrative_area_level_1") {
			state = comp.ShortText
			if state == "" {
				state = comp.LongText
			}
		}
	}
	if city == "" || state == "" {
		fallbackCity, fallbackState := parseFormattedAddress(details.FormattedAddress)
		if city == "" {
			city = fallbackCity
		}
		if state == "" {
			state = fallbackState
		}
	}
	return joinNonEmpty(city, state)
}

// parseFormattedAddress takes the last two comma-separated segments as city
// and state after dropping a trailing country segment and postal codes.
// "501 Stanyan St, San Francisco, CA 94117, USA" yields ("San Francisco", "CA").
func parseFormattedAddress(address string) (string, string) {
	var parts []string
	for _, part := range strings.Split(address, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) >= 3 && !hasDigit(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", stripPostalCode(parts[0])
	default:
		return stripPostalCode(parts[len(parts)-2]), stripPostalCode(parts[len(parts)-1])
	}
}

func stripPostalCode(segment string) string {
	fields := strings.Fields(segment)
	kept := fields[:0]
	for _, field := range fields {
		if !hasDigit(field) {
			kept = append(kept, field)
		}
	}
	return strings.Join(kept, " ")
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func joinNonEmpty(values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}
