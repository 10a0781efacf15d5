package services

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPOptions configures NewHTTPClient.
type HTTPOptions struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Logger receives retry diagnostics. Nil silences them.
	Logger *slog.Logger
}

// NewHTTPClient builds the retrying HTTP client shared by the calendar feed,
// oracle, and geocoder transports. After retries are exhausted the last
// response is handed back unchanged so callers can map its status code.
func NewHTTPClient(opts HTTPOptions) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	client.RetryMax = max(opts.MaxRetries, 0)
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	if opts.Logger != nil {
		client.Logger = opts.Logger
	} else {
		client.Logger = nil
	}
	client.CheckRetry = RetryPolicy
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// RetryPolicy extends the retryablehttp default policy (connection errors,
// 429, and 5xx) with 408 Request Timeout.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil && resp != nil && resp.StatusCode == http.StatusRequestTimeout {
		return true, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// StatusMarker maps a non-2xx HTTP status onto the error taxonomy.
func StatusMarker(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrConfiguration
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrTimeout
	case status == http.StatusTooManyRequests || status >= 500:
		return ErrTransient
	default:
		return ErrExternalTool
	}
}
