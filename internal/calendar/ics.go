package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"lastseen/internal/logging"
	"lastseen/internal/services"
)

const maxFeedBytes = 32 << 20

// ICSOptions configures an ICSSource.
type ICSOptions struct {
	// Location is an http(s) or webcal URL, or a local file path.
	Location   string
	TimeZone   *time.Location
	MaxResults int
	// Client is used for URL feeds. Defaults to services.NewHTTPClient.
	Client *retryablehttp.Client
	Logger *slog.Logger
}

// ICSSource lists events from an iCalendar feed.
type ICSSource struct {
	location   string
	loc        *time.Location
	maxResults int
	client     *retryablehttp.Client
	logger     *slog.Logger
}

// NewICSSource constructs a feed-backed Source.
func NewICSSource(opts ICSOptions) *ICSSource {
	loc := opts.TimeZone
	if loc == nil {
		loc = time.Local
	}
	client := opts.Client
	if client == nil {
		client = services.NewHTTPClient(services.HTTPOptions{Timeout: 15 * time.Second, MaxRetries: 2})
	}
	return &ICSSource{
		location:   strings.TrimSpace(opts.Location),
		loc:        loc,
		maxResults: opts.MaxResults,
		client:     client,
		logger:     logging.NewComponentLogger(opts.Logger, "calendar"),
	}
}

// ListEvents implements Source.
func (s *ICSSource) ListEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	if end.Before(start) {
		return nil, services.Wrap(services.ErrValidation, "calendar", "list events", "window end before start", nil)
	}
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := parseFeed(body, s.loc, s.logger)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "calendar", "parse feed", "", err)
	}

	events := expandEvents(parsed, start, end, s.loc, s.logger)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].startSortKey(s.loc).Before(events[j].startSortKey(s.loc))
	})
	if s.maxResults > 0 && len(events) > s.maxResults {
		events = events[:s.maxResults]
	}

	logging.WithContext(ctx, s.logger).Debug("calendar events listed",
		logging.Int("vevents", len(parsed)),
		logging.Int("events", len(events)),
		logging.Time("window_start", start),
		logging.Time("window_end", end),
	)
	return events, nil
}

func (s *ICSSource) fetch(ctx context.Context) ([]byte, error) {
	if s.location == "" {
		return nil, services.Wrap(services.ErrConfiguration, "calendar", "fetch feed", "calendar.ics_url is empty", nil)
	}
	lower := strings.ToLower(s.location)
	switch {
	case strings.HasPrefix(lower, "webcal://"):
		return s.fetchURL(ctx, "https://"+s.location[len("webcal://"):])
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return s.fetchURL(ctx, s.location)
	default:
		return s.readFile(s.location)
	}
}

func (s *ICSSource) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "calendar", "build request", "", err)
	}
	req.Header.Set("Accept", "text/calendar")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "calendar", "fetch feed", "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.StatusMarker(resp.StatusCode), "calendar", "fetch feed", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "calendar", "read feed", "", err)
	}
	return body, nil
}

func (s *ICSSource) readFile(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "calendar", "read feed", path, err)
		}
		return nil, services.Wrap(services.ErrTransient, "calendar", "read feed", path, err)
	}
	return body, nil
}
