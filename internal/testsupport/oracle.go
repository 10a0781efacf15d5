package testsupport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// StubCompleter returns a canned oracle reply.
type StubCompleter struct {
	Reply string
	Err   error
	calls atomic.Int32
}

// CompleteJSON implements classify.Completer.
func (s *StubCompleter) CompleteJSON(context.Context, string, string) (string, error) {
	s.calls.Add(1)
	return s.Reply, s.Err
}

// Calls returns how many requests were made.
func (s *StubCompleter) Calls() int {
	return int(s.calls.Load())
}

// NewChatServer starts a chat completion endpoint that answers every request
// with content and registers cleanup.
func NewChatServer(t testing.TB, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}
