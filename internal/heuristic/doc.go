// Package heuristic implements the deterministic gate that runs before the
// classification oracle. It rejects events that can never be shown publicly
// (cancelled, location-less, purely virtual, or mentioning a private or
// sensitive place) without any network call.
package heuristic
