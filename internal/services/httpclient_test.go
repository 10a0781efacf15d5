package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"lastseen/internal/services"
)

func TestNewHTTPClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := services.NewHTTPClient(services.HTTPOptions{
		Timeout:      time.Second,
		MaxRetries:   3,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
	})
	req, err := retryablehttp.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || calls.Load() != 3 {
		t.Fatalf("status=%d calls=%d", resp.StatusCode, calls.Load())
	}
}

func TestNewHTTPClientPassesThroughFinalResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := services.NewHTTPClient(services.HTTPOptions{MaxRetries: 1, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	req, _ := retryablehttp.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("expected passthrough response, got error %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStatusMarker(t *testing.T) {
	tests := map[int]error{
		http.StatusUnauthorized:    services.ErrConfiguration,
		http.StatusNotFound:        services.ErrNotFound,
		http.StatusGatewayTimeout:  services.ErrTimeout,
		http.StatusTooManyRequests: services.ErrTransient,
		http.StatusBadGateway:      services.ErrTransient,
		http.StatusBadRequest:      services.ErrExternalTool,
	}
	for status, want := range tests {
		if got := services.StatusMarker(status); !errors.Is(got, want) {
			t.Errorf("StatusMarker(%d) = %v, want %v", status, got, want)
		}
	}
}
