package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lastseen/internal/sqlitedb"
)

// SQLite stores documents in the blobs table of the shared database.
type SQLite struct {
	db *sqlitedb.DB
}

// NewSQLite wraps an open database.
func NewSQLite(db *sqlitedb.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.SQL().QueryRowContext(ctx, "SELECT data FROM blobs WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select blob %q: %w", key, err)
	}
	return data, nil
}

func (s *SQLite) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := s.db.Exec(ctx,
		`INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert blob %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Check(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *SQLite) Describe() string { return "sqlite:" + s.db.Path() }
