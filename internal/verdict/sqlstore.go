package verdict

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lastseen/internal/sqlitedb"
)

// SQLiteStore keeps one row per key. Save upserts or deletes only the changed
// keys, so overlapping runs that decide different events do not clobber each
// other.
type SQLiteStore struct {
	db *sqlitedb.DB
}

// NewSQLiteStore wraps an open database.
func NewSQLiteStore(db *sqlitedb.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (map[Key]Record, error) {
	rows, err := s.db.SQL().QueryContext(ctx,
		"SELECT event_key, action, place, city, map_url, decided_at FROM verdicts")
	if err != nil {
		return nil, fmt.Errorf("select verdicts: %w", err)
	}
	defer rows.Close()

	out := make(map[Key]Record)
	for rows.Next() {
		var (
			key               string
			w                 wireRecord
			place, city, mapU sql.NullString
		)
		if err := rows.Scan(&key, &w.Action, &place, &city, &mapU, &w.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		w.Place, w.City, w.MapURL = place.String, city.String, mapU.String
		rec, err := fromWire(w)
		if err != nil {
			continue
		}
		out[Key(key)] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snapshot map[Key]Record, changed []Key) error {
	if len(changed) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, key := range changed {
			rec, ok := snapshot[key]
			if !ok {
				if _, err := tx.ExecContext(ctx, "DELETE FROM verdicts WHERE event_key = ?", string(key)); err != nil {
					return fmt.Errorf("delete verdict %q: %w", key, err)
				}
				continue
			}
			w := toWire(rec)
			if w.DecidedAt == "" {
				w.DecidedAt = time.Time{}.Format(time.RFC3339Nano)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO verdicts (event_key, action, place, city, map_url, decided_at)
                 VALUES (?, ?, ?, ?, ?, ?)
                 ON CONFLICT(event_key) DO UPDATE SET
                     action = excluded.action,
                     place = excluded.place,
                     city = excluded.city,
                     map_url = excluded.map_url,
                     decided_at = excluded.decided_at`,
				string(key), string(w.Action), nullable(w.Place), nullable(w.City), nullable(w.MapURL), w.DecidedAt,
			)
			if err != nil {
				return fmt.Errorf("upsert verdict %q: %w", key, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Describe() string {
	return "sqlite:" + s.db.Path() + " table=verdicts"
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
