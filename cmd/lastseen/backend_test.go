package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lastseen/internal/config"
	"lastseen/internal/publish"
	"lastseen/internal/testsupport"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenBackendRoundTrip(t *testing.T) {
	for _, backendName := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backendName, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithBackend(backendName))
			if err := cfg.EnsureDirectories(); err != nil {
				t.Fatalf("EnsureDirectories: %v", err)
			}
			ctx := context.Background()
			b, err := openBackend(ctx, cfg, discardLogger())
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			defer b.Close()
			if !strings.HasPrefix(b.describe(), backendName+":") {
				t.Fatalf("describe = %q", b.describe())
			}

			publisher := publish.New(b.blobs, cfg.Store.StatusKey, discardLogger())
			updated := time.Date(2025, 2, 3, 20, 0, 0, 0, time.UTC)
			if err := publisher.Publish(ctx, publish.Placeholder("Somewhere", updated)); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			state, ok, err := publisher.Current(ctx)
			if err != nil || !ok {
				t.Fatalf("Current: ok=%v err=%v", ok, err)
			}
			if state.Place != "Somewhere" || !state.Updated.Equal(updated) {
				t.Fatalf("unexpected state %+v", state)
			}
		})
	}
}

func TestNewRunnerRequiresRunSettings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	b := &backend{}
	if _, err := newRunner(cfg, b, discardLogger()); err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestNewRunnerPublishesPlaceholder(t *testing.T) {
	server := testsupport.NewChatServer(t, showReply)
	cfg := testsupport.NewConfig(t,
		testsupport.WithLLMEndpoint(server.URL),
		testsupport.WithPlaceholder("Somewhere"),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//lastseen//backend test//EN",
		"BEGIN:VEVENT",
		"UID:old-1",
		"DTSTAMP:20200101T000000Z",
		"DTSTART:20200101T100000Z",
		"DTEND:20200101T110000Z",
		"SUMMARY:Long ago",
		"LOCATION:Dolores Park",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	if err := os.WriteFile(filepath.Join(testsupport.BaseDir(cfg), "calendar.ics"), []byte(feed), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	ctx := context.Background()
	b, err := openBackend(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer b.Close()
	r, err := newRunner(cfg, b, discardLogger())
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	report, err := r.Incremental(ctx)
	if err != nil {
		t.Fatalf("Incremental: %v", err)
	}
	if !report.Placeholder || report.State.Place != "Somewhere" || report.Events != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}
