package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/photo"
	"github.com/rbs-jewelers/jewelbook/internal/store"
)

// Items returns the live items in collection order.
func (l *Ledger) Items() []model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return liveItems(l.items)
}

// Item returns the live item with id, or nil if there is none.
func (l *Ledger) Item(id int64) *model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := liveItemIndex(l.items, id)
	if i < 0 {
		return nil
	}
	item := l.items[i]
	return &item
}

// AddItem creates a new item. An empty purchase date means today.
func (l *Ledger) AddItem(ctx context.Context, in model.ItemInput) (item model.Item, err error) {
	defer observe("add_item", &err)

	in.Type = strings.TrimSpace(in.Type)
	in.Model = strings.TrimSpace(in.Model)
	if err := model.Validate(in); err != nil {
		return model.Item{}, validationError(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	added, err := l.insertItems(ctx, []model.ItemInput{in})
	if err != nil {
		return model.Item{}, err
	}
	return added[0], nil
}

// insertItems appends validated inputs as new items in one write. The
// caller holds the write lock.
func (l *Ledger) insertItems(ctx context.Context, in []model.ItemInput) ([]model.Item, error) {
	added := make([]model.Item, 0, len(in))
	for _, it := range in {
		item := model.Item{
			ID:            l.ids.NextID(),
			Type:          it.Type,
			Model:         it.Model,
			Weight:        *it.Weight,
			Units:         *it.Units,
			CostPrice:     *it.CostPrice,
			DatePurchased: it.DatePurchased,
		}
		if item.DatePurchased == "" {
			item.DatePurchased = l.today()
		}
		added = append(added, item)
	}

	items := append(slices.Clone(l.items), added...)
	if err := l.saveItems(ctx, items); err != nil {
		return nil, err
	}
	l.items = items

	for _, item := range added {
		l.logger.Info("item added", "id", item.ID, "type", item.Type, "units", item.Units)
	}
	return added, nil
}

// UpdateItem applies patch to the live item with id.
func (l *Ledger) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (item model.Item, err error) {
	defer observe("update_item", &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	i := liveItemIndex(l.items, id)
	if i < 0 {
		return model.Item{}, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}

	item = l.items[i]
	patch.Apply(&item)
	item.Type = strings.TrimSpace(item.Type)
	item.Model = strings.TrimSpace(item.Model)
	if err := model.Validate(item); err != nil {
		return model.Item{}, validationError(err)
	}

	items := slices.Clone(l.items)
	items[i] = item
	if err := l.saveItems(ctx, items); err != nil {
		return model.Item{}, err
	}
	l.items = items

	l.logger.Info("item updated", "id", id)
	return item, nil
}

// DeleteItem removes the item with id. Items still referenced by a sale are
// archived instead so that deleting the sale can give the units back.
// Deleting a missing or archived item does nothing.
func (l *Ledger) DeleteItem(ctx context.Context, id int64) (err error) {
	defer observe("delete_item", &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	i := liveItemIndex(l.items, id)
	if i < 0 {
		return nil
	}

	items := slices.Clone(l.items)
	if l.referenced(id) {
		at := l.now().UTC()
		items[i].DeletedAt = &at
		if err := l.saveItems(ctx, items); err != nil {
			return err
		}
		l.items = items
		l.logger.Info("item archived", "id", id)
		return nil
	}

	items = slices.Delete(items, i, i+1)
	if err := l.saveItems(ctx, items, store.Entry{Key: store.PhotoKey(id)}); err != nil {
		return err
	}
	l.items = items
	l.logger.Info("item deleted", "id", id)
	return nil
}

func (l *Ledger) referenced(itemID int64) bool {
	return slices.ContainsFunc(l.sales, func(s model.Sale) bool {
		return s.ItemID == itemID
	})
}

// SetPhoto normalizes data and stores it as the photo of the live item with id.
func (l *Ledger) SetPhoto(ctx context.Context, id int64, data []byte) (err error) {
	defer observe("set_photo", &err)

	jpeg, err := photo.Normalize(data)
	if err != nil {
		return validationError(err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if liveItemIndex(l.items, id) < 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if err := l.store.Put(ctx, store.Entry{Key: store.PhotoKey(id), Value: jpeg}); err != nil {
		return fmt.Errorf("saving photo: %w", err)
	}
	return nil
}

// Photo returns the stored photo of the live item with id, or nil if it has
// none.
func (l *Ledger) Photo(ctx context.Context, id int64) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if liveItemIndex(l.items, id) < 0 {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	data, err := l.store.Get(ctx, store.PhotoKey(id))
	if err != nil {
		return nil, fmt.Errorf("loading photo: %w", err)
	}
	return data, nil
}

// HasPhoto reports whether the live item with id has a stored photo,
// without loading it.
func (l *Ledger) HasPhoto(ctx context.Context, id int64) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if liveItemIndex(l.items, id) < 0 {
		return false, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	ok, err := l.store.Has(ctx, store.PhotoKey(id))
	if err != nil {
		return false, fmt.Errorf("checking photo: %w", err)
	}
	return ok, nil
}

// DeletePhoto removes the photo of the live item with id.
func (l *Ledger) DeletePhoto(ctx context.Context, id int64) (err error) {
	defer observe("delete_photo", &err)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if liveItemIndex(l.items, id) < 0 {
		return fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if err := l.store.Put(ctx, store.Entry{Key: store.PhotoKey(id)}); err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}

// SeedSample fills an empty inventory with a few demonstration items. It
// reports whether anything was added. The check and the insert happen under
// one lock, so concurrent calls add the set at most once.
func (l *Ledger) SeedSample(ctx context.Context) (added bool, err error) {
	defer observe("seed_sample", &err)

	inputs := make([]model.ItemInput, 0, len(sampleItems))
	for _, s := range sampleItems {
		weight := decimal.RequireFromString(s.weight)
		cost := decimal.RequireFromString(s.cost)
		units := s.units
		in := model.ItemInput{
			Type:          s.typ,
			Model:         s.model,
			Weight:        &weight,
			Units:         &units,
			CostPrice:     &cost,
			DatePurchased: s.date,
		}
		if err := model.Validate(in); err != nil {
			return false, fmt.Errorf("seeding %q: %w", s.model, validationError(err))
		}
		inputs = append(inputs, in)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) > 0 {
		return false, nil
	}
	if _, err := l.insertItems(ctx, inputs); err != nil {
		return false, fmt.Errorf("seeding sample inventory: %w", err)
	}
	return true, nil
}

var sampleItems = []struct {
	typ, model, weight string
	units              int
	cost, date         string
}{
	{model.CategoryNecklace, "Gold Chain", "15.5", 5, "250", "2024-01-15"},
	{model.CategoryBracelet, "Silver Bracelet", "8.2", 3, "120", "2024-01-20"},
	{model.CategoryRing, "Sapphire Engagement Ring", "3.8", 2, "899.99", "2024-01-17"},
	{model.CategoryEarring, "Pearl Drop Earrings", "4.1", 4, "149.99", "2024-01-18"},
}
