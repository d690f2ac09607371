package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteStore keeps blobs in the blobs table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store backed by db. The schema must already exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the blob stored under key, or nil if there is none.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM blobs WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", key, err)
	}
	return value, nil
}

// Has reports whether a blob is stored under key.
func (s *SQLiteStore) Has(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM blobs WHERE key = ?`, key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking blob %s: %w", key, err)
	}
	return true, nil
}

// Put writes all entries in a single transaction.
func (s *SQLiteStore) Put(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if e.Value == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, e.Key)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO blobs (key, value) VALUES (?, ?)
				 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
				e.Key, e.Value,
			)
		}
		if err != nil {
			return fmt.Errorf("writing blob %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing blobs: %w", err)
	}
	return nil
}
