package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"lastseen/internal/sqlitedb"
)

// MustOpenSQLite opens a database under t.TempDir and registers cleanup.
func MustOpenSQLite(t testing.TB) *sqlitedb.DB {
	t.Helper()

	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "lastseen.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
