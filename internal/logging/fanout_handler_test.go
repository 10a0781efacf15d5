package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerFiltersNil(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when all handlers are nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := TeeHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsPerHandlerLevels(t *testing.T) {
	var infoBuf, errorBuf bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "runner")
	logger.Info("batch finished")
	logger.Error("persist failed")

	if !strings.Contains(infoBuf.String(), "batch finished") || !strings.Contains(infoBuf.String(), "persist failed") {
		t.Fatalf("info handler missing records: %q", infoBuf.String())
	}
	if strings.Contains(errorBuf.String(), "batch finished") {
		t.Fatalf("error handler received info record: %q", errorBuf.String())
	}
	if !strings.Contains(errorBuf.String(), "component=runner") {
		t.Fatalf("WithAttrs not propagated: %q", errorBuf.String())
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected tee to be enabled when any handler accepts the level")
	}
}
