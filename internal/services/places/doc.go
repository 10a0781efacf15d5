// Package places is a minimal Google Places API (v1) client: a text search
// that returns the best candidate id, and a details fetch for that id.
//
// Responses are read leniently with gjson so that a missing or renamed field
// degrades to an empty value instead of a decode error. Only transport and
// HTTP status failures are reported as errors.
package places
