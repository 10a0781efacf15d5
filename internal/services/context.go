package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	modeKey     contextKey = "mode"
	eventKeyKey contextKey = "event_key"
)

// WithRunID annotates context with the correlation identifier of one run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMode annotates context with the run mode (batch/incremental).
func WithMode(ctx context.Context, mode string) context.Context {
	if mode == "" {
		return ctx
	}
	return context.WithValue(ctx, modeKey, mode)
}

// ModeFromContext returns the run mode if present.
func ModeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(modeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEventKey annotates context with the verdict cache key of the event
// currently being decided.
func WithEventKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, eventKeyKey, key)
}

// EventKeyFromContext returns the event key if present.
func EventKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(eventKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
