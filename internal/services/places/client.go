package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"lastseen/internal/services"
)

const (
	component          = "places"
	defaultBaseURL     = "https://places.googleapis.com/v1"
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	searchFieldMask    = "places.id,places.displayName,places.formattedAddress"
	detailFields       = "displayName,formattedAddress,addressComponents,googleMapsUri"
	maxResponseBytes   = 1 << 20
)

// Config captures the Places API settings.
type Config struct {
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	MaxRetries        int
	RequestsPerSecond float64
}

// Component is one structured address component.
type Component struct {
	LongText  string
	ShortText string
	Types     []string
}

// HasType reports whether the component carries typ.
func (c Component) HasType(typ string) bool {
	for _, t := range c.Types {
		if t == typ {
			return true
		}
	}
	return false
}

// Details is the subset of a place resource used for display.
type Details struct {
	DisplayName      string
	FormattedAddress string
	MapURL           string
	Components       []Component
}

// Client talks to the Places API.
type Client struct {
	cfg        Config
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default retrying HTTP client.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a client. A client without an API key reports
// Configured() == false and must not be called.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := &Client{cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		timeout := defaultHTTPTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		retries := defaultMaxRetries
		if cfg.MaxRetries > 0 {
			retries = cfg.MaxRetries
		}
		client.httpClient = services.NewHTTPClient(services.HTTPOptions{
			Timeout:    timeout,
			MaxRetries: retries,
			Logger:     client.logger,
		})
	}
	return client
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// SearchText returns the id of the first candidate for query. found is false
// when the search produced no usable candidate.
func (c *Client) SearchText(ctx context.Context, query string) (id string, found bool, err error) {
	body, err := json.Marshal(map[string]string{"textQuery": query})
	if err != nil {
		return "", false, services.Wrap(services.ErrValidation, component, "search", "encode body", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return "", false, services.Wrap(services.ErrConfiguration, component, "search", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	payload, err := c.do(ctx, "search", req)
	if err != nil {
		return "", false, err
	}
	id = strings.TrimSpace(gjson.GetBytes(payload, "places.0.id").String())
	return id, id != "", nil
}

// Details fetches display fields for the place id.
func (c *Client) Details(ctx context.Context, id string) (Details, error) {
	endpoint := c.cfg.BaseURL + "/places/" + url.PathEscape(id) + "?fields=" + url.QueryEscape(detailFields)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Details{}, services.Wrap(services.ErrConfiguration, component, "details", "build request", err)
	}
	payload, err := c.do(ctx, "details", req)
	if err != nil {
		return Details{}, err
	}
	return parseDetails(payload), nil
}

func parseDetails(payload []byte) Details {
	parsed := gjson.ParseBytes(payload)
	details := Details{
		DisplayName:      strings.TrimSpace(parsed.Get("displayName.text").String()),
		FormattedAddress: strings.TrimSpace(parsed.Get("formattedAddress").String()),
		MapURL:           strings.TrimSpace(parsed.Get("googleMapsUri").String()),
	}
	parsed.Get("addressComponents").ForEach(func(_, value gjson.Result) bool {
		comp := Component{
			LongText:  strings.TrimSpace(value.Get("longText").String()),
			ShortText: strings.TrimSpace(value.Get("shortText").String()),
		}
		for _, typ := range value.Get("types").Array() {
			comp.Types = append(comp.Types, typ.String())
		}
		details.Components = append(details.Components, comp)
		return true
	})
	return details
}

func (c *Client) do(ctx context.Context, op string, req *retryablehttp.Request) ([]byte, error) {
	if !c.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, component, op, "api key required", nil)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, services.Wrap(services.ErrTimeout, component, op, "rate limit wait", err)
		}
	}
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, component, op, "http request", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, op, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		msg := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(gjson.GetBytes(body, "error.message").String()))
		return nil, services.Wrap(services.StatusMarker(resp.StatusCode), component, op, msg, nil)
	}
	if !gjson.ValidBytes(body) {
		// An unreadable body is treated like an empty one.
		return []byte("{}"), nil
	}
	return body, nil
}
