package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB opens a database file in a per-test temporary directory with the
// schema applied, using the same pragmas as production. It is closed when the
// test ends.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := Open(filepath.Join(tb.TempDir(), "jewelbook.sqlite3"))
	if err != nil {
		tb.Fatalf("opening test database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		tb.Fatalf("creating test database schema: %v", err)
	}
	return db
}
