package verdict

import (
	"context"
	"errors"
	"fmt"

	"lastseen/internal/blobstore"
)

// Store persists verdicts. Save receives the full snapshot plus the keys
// touched during the run; a changed key missing from the snapshot was deleted.
// Implementations choose between whole-document replacement and per-key
// upserts.
type Store interface {
	Load(ctx context.Context) (map[Key]Record, error)
	Save(ctx context.Context, snapshot map[Key]Record, changed []Key) error
}

// DocumentStore keeps the whole cache as one JSON document in a blob store.
// Save replaces the document; concurrent runs resolve as last writer wins.
type DocumentStore struct {
	blobs blobstore.Store
	key   string
}

// NewDocumentStore stores the cache document under key.
func NewDocumentStore(blobs blobstore.Store, key string) *DocumentStore {
	return &DocumentStore{blobs: blobs, key: key}
}

// Load returns blobstore.ErrNotFound (wrapped) when no document exists.
func (s *DocumentStore) Load(ctx context.Context) (map[Key]Record, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read cache document %q: %w", s.key, err)
	}
	records, _, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *DocumentStore) Save(ctx context.Context, snapshot map[Key]Record, _ []Key) error {
	data, err := EncodeDocument(snapshot)
	if err != nil {
		return fmt.Errorf("encode cache document: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write cache document %q: %w", s.key, err)
	}
	return nil
}

func (s *DocumentStore) Describe() string {
	return blobstore.Describe(s.blobs) + " key=" + s.key
}

// IsMissing reports whether a Load error means no cache has been written yet.
func IsMissing(err error) bool {
	return errors.Is(err, blobstore.ErrNotFound)
}
