// Package ledger owns the inventory and sales collections. Every mutation is
// validated up front, written through to the store and only then applied in
// memory, so a failed call leaves both collections as they were.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rbs-jewelers/jewelbook/internal/metrics"
	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/store"
)

// Options configures a Ledger. Zero values get sensible defaults.
type Options struct {
	IDs    IDSource
	Now    func() time.Time
	Logger *slog.Logger
}

// Ledger is the in-memory, store-backed record of items and sales.
type Ledger struct {
	mu     sync.RWMutex
	store  store.Store
	ids    IDSource
	now    func() time.Time
	logger *slog.Logger

	items []model.Item
	sales []model.Sale
}

// Open loads both collections from st, migrating stored data written by
// older versions first.
func Open(ctx context.Context, st store.Store, opts Options) (*Ledger, error) {
	if opts.IDs == nil {
		opts.IDs = NewSequence()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := &Ledger{
		store:  st,
		ids:    opts.IDs,
		now:    opts.Now,
		logger: opts.Logger,
	}

	items, sales, err := migrate(ctx, st, l.logger)
	if err != nil {
		return nil, err
	}
	l.items, l.sales = items, sales

	if o, ok := l.ids.(observer); ok {
		for _, it := range items {
			o.Observe(it.ID)
		}
		for _, s := range sales {
			o.Observe(s.ID)
		}
	}

	l.logger.Info("ledger loaded", "items", len(items), "sales", len(sales))
	return l, nil
}

// Snapshot returns the live items and all sales as of one moment, so
// figures computed from both agree with each other.
func (l *Ledger) Snapshot() ([]model.Item, []model.Sale) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return liveItems(l.items), slices.Clone(l.sales)
}

func (l *Ledger) today() string {
	return l.now().Format(model.DateLayout)
}

// saveItems persists items (and any extra entries) in one write.
func (l *Ledger) saveItems(ctx context.Context, items []model.Item, extra ...store.Entry) error {
	data, err := model.EncodeItems(items)
	if err != nil {
		return err
	}
	entries := append([]store.Entry{{Key: store.KeyInventory, Value: data}}, extra...)
	if err := l.store.Put(ctx, entries...); err != nil {
		return fmt.Errorf("saving inventory: %w", err)
	}
	return nil
}

// saveBoth persists both collections in one write.
func (l *Ledger) saveBoth(ctx context.Context, items []model.Item, sales []model.Sale) error {
	itemData, err := model.EncodeItems(items)
	if err != nil {
		return err
	}
	saleData, err := model.EncodeSales(sales)
	if err != nil {
		return err
	}
	err = l.store.Put(ctx,
		store.Entry{Key: store.KeyInventory, Value: itemData},
		store.Entry{Key: store.KeySales, Value: saleData},
	)
	if err != nil {
		return fmt.Errorf("saving inventory and sales: %w", err)
	}
	return nil
}

// itemIndex returns the position of the item with id, archived or not, or -1.
func itemIndex(items []model.Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// liveItems copies the items that are not archived.
func liveItems(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !it.Archived() {
			out = append(out, it)
		}
	}
	return out
}

// liveItemIndex is like itemIndex but ignores archived items.
func liveItemIndex(items []model.Item, id int64) int {
	i := itemIndex(items, id)
	if i >= 0 && items[i].Archived() {
		return -1
	}
	return i
}

func saleIndex(sales []model.Sale, id int64) int {
	for i := range sales {
		if sales[i].ID == id {
			return i
		}
	}
	return -1
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// outcome classifies err for the operations counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case isRejection(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func isRejection(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrInsufficientStock)
}

// observe counts a finished operation. Call it deferred with a pointer to
// the named error result.
func observe(op string, err *error) {
	metrics.ObserveOperation(op, outcome(*err))
}
