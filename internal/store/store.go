package store

import (
	"context"
	"fmt"
)

// Blob keys.
const (
	KeyInventory     = "jewelryInventory"
	KeySales         = "jewelrySales"
	KeySchemaVersion = "schemaVersion"
)

// PhotoKey returns the blob key holding an item's photo.
func PhotoKey(itemID int64) string {
	return fmt.Sprintf("itemPhoto:%d", itemID)
}

// Entry is a single write. A nil Value deletes the key.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a key-value blob store.
type Store interface {
	// Get returns the blob stored under key, or nil if there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	// Has reports whether a blob is stored under key without reading it.
	Has(ctx context.Context, key string) (bool, error)
	// Put applies all entries atomically.
	Put(ctx context.Context, entries ...Entry) error
}
