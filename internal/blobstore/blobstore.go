package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that no document exists under the key.
var ErrNotFound = errors.New("blob not found")

// Store reads and replaces whole documents by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Checker is implemented by stores that can verify reachability without
// touching documents.
type Checker interface {
	Check(ctx context.Context) error
}

// Describe returns a short human label for the backend, used by the CLI.
func Describe(s Store) string {
	if d, ok := s.(interface{ Describe() string }); ok {
		return d.Describe()
	}
	return fmt.Sprintf("%T", s)
}

func validateKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return errors.New("blob key is empty")
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part == ".." {
			return fmt.Errorf("blob key %q escapes the store", key)
		}
	}
	return nil
}
