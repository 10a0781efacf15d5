package geocode

import (
	"context"
	"errors"
	"testing"

	"lastseen/internal/services/places"
)

type fakeLookup struct {
	configured bool
	id         string
	details    places.Details
	searchErr  error
	detailErr  error
	searches   int
}

func (f *fakeLookup) Configured() bool { return f.configured }

func (f *fakeLookup) SearchText(context.Context, string) (string, bool, error) {
	f.searches++
	return f.id, f.id != "", f.searchErr
}

func (f *fakeLookup) Details(context.Context, string) (places.Details, error) {
	return f.details, f.detailErr
}

func TestNormalizeUnconfigured(t *testing.T) {
	for name, lookup := range map[string]Lookup{
		"nil":          nil,
		"unconfigured": &fakeLookup{id: "x"},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := New(lookup, nil).Normalize(context.Background(), "Ocean Beach")
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != (Place{Place: "Ocean Beach", OK: true}) {
				t.Fatalf("Normalize = %+v", got)
			}
		})
	}
}

func TestNormalizeNoCandidate(t *testing.T) {
	got, err := New(&fakeLookup{configured: true}, nil).Normalize(context.Background(), "Ocean Beach")
	if err != nil || got != (Place{Place: "Ocean Beach", OK: true}) {
		t.Fatalf("Normalize = %+v, %v", got, err)
	}
}

func TestNormalizeComponents(t *testing.T) {
	lookup := &fakeLookup{configured: true, id: "p1", details: places.Details{
		DisplayName: "Golden Gate Park",
		MapURL:      "https://maps.google.com/?cid=1",
		Components: []places.Component{
			{LongText: "San Francisco", ShortText: "SF", Types: []string{"locality", "political"}},
			{LongText: "California", ShortText: "CA", Types: []string{"administrative_area_level_1"}},
		},
	}}
	got, err := New(lookup, nil).Normalize(context.Background(), "GG Park")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := Place{Place: "Golden Gate Park", City: "San Francisco, CA", MapURL: "https://maps.google.com/?cid=1", OK: true}
	if got != want {
		t.Fatalf("Normalize = %+v, want %+v", got, want)
	}
}

func TestNormalizeFormattedAddressFallback(t *testing.T) {
	lookup := &fakeLookup{configured: true, id: "p1", details: places.Details{
		FormattedAddress: "501 Stanyan St, San Francisco, CA 94117, USA",
	}}
	got, err := New(lookup, nil).Normalize(context.Background(), "Kezar Stadium")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Place != "Kezar Stadium" || got.City != "San Francisco, CA" || !got.OK {
		t.Fatalf("Normalize = %+v", got)
	}
}

func TestNormalizeErrors(t *testing.T) {
	boom := errors.New("unreachable")
	if _, err := New(&fakeLookup{configured: true, searchErr: boom}, nil).Normalize(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("search error not propagated: %v", err)
	}
	if _, err := New(&fakeLookup{configured: true, id: "p", detailErr: boom}, nil).Normalize(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("details error not propagated: %v", err)
	}
}

func TestParseFormattedAddress(t *testing.T) {
	tests := []struct {
		address     string
		city, state string
	}{
		{"501 Stanyan St, San Francisco, CA 94117, USA", "San Francisco", "CA"},
		{"Golden Gate Park, San Francisco, CA, USA", "San Francisco", "CA"},
		{"Portland, OR", "Portland", "OR"},
		{"Oregon", "", "Oregon"},
		{"", "", ""},
		{"1 Main St, Springfield, IL 62701", "Springfield", "IL"},
	}
	for _, tt := range tests {
		city, state := parseFormattedAddress(tt.address)
		if city != tt.city || state != tt.state {
			t.Errorf("parseFormattedAddress(%q) = %q, %q; want %q, %q", tt.address, city, state, tt.city, tt.state)
		}
	}
}
