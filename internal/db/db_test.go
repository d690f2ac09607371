package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDSNCarriesPragmas(t *testing.T) {
	got := dsn("shop.sqlite3")
	if !strings.HasPrefix(got, "file:shop.sqlite3?") {
		t.Errorf("unexpected dsn prefix: %s", got)
	}
	if !strings.Contains(got, "busy_timeout%285000%29") {
		t.Errorf("expected busy_timeout pragma in %s", got)
	}
}

func TestOpenFileAndEnsureSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jewelbook.sqlite3")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	// Idempotent.
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(database); err != nil {
			t.Fatalf("EnsureSchema (run %d): %v", i+1, err)
		}
	}

	var journal string
	if err := database.QueryRow("PRAGMA journal_mode").Scan(&journal); err != nil {
		t.Fatalf("reading journal mode: %v", err)
	}
	if journal != "wal" {
		t.Errorf("expected wal journal mode, got %q", journal)
	}
}
