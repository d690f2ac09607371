package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// Sales returns every sale in collection order.
func (l *Ledger) Sales() []model.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.sales)
}

// Sale returns the sale with id, or nil if there is none.
func (l *Ledger) Sale(id int64) *model.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := saleIndex(l.sales, id)
	if i < 0 {
		return nil
	}
	sale := l.sales[i]
	return &sale
}

// RecordSale records a sale against a live item and takes the sold units
// out of its stock. Omitted cost price takes the item's cost, omitted date
// means today and omitted payment method means cash.
func (l *Ledger) RecordSale(ctx context.Context, in model.SaleInput) (sale model.Sale, err error) {
	defer observe("record_sale", &err)

	if err := model.Validate(in); err != nil {
		return model.Sale{}, validationError(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := liveItemIndex(l.items, in.ItemID)
	if i < 0 {
		return model.Sale{}, fmt.Errorf("%w: %d", ErrItemNotFound, in.ItemID)
	}
	item := l.items[i]
	if in.UnitsSold > item.Units {
		return model.Sale{}, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, in.UnitsSold, item.Units)
	}

	cost := item.CostPrice
	if in.CostPrice != nil {
		cost = *in.CostPrice
	}
	sale = model.Sale{
		ID:            l.ids.NextID(),
		PaymentMethod: in.PaymentMethod.OrDefault(),
		SaleDate:      in.SaleDate,
	}
	if sale.SaleDate == "" {
		sale.SaleDate = l.today()
	}
	sale.Snapshot(item)
	sale.Price(in.UnitsSold, cost, *in.SellingPrice)

	items := slices.Clone(l.items)
	items[i].Units -= in.UnitsSold
	sales := append(slices.Clone(l.sales), sale)

	if err := l.saveBoth(ctx, items, sales); err != nil {
		return model.Sale{}, err
	}
	l.items, l.sales = items, sales

	l.logger.Info("sale recorded", "id", sale.ID, "item", item.ID, "units", sale.UnitsSold, "revenue", sale.TotalRevenue.StringFixed(2))
	return sale, nil
}

// UpdateSale applies patch to the sale with id, moving stock between items
// as needed. When the item is unchanged only the difference in units is
// taken from (or given back to) its stock. When the item changes, the old
// item gets all its units back and the new one must cover the whole sale.
func (l *Ledger) UpdateSale(ctx context.Context, id int64, patch model.SalePatch) (sale model.Sale, err error) {
	defer observe("update_sale", &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	si := saleIndex(l.sales, id)
	if si < 0 {
		return model.Sale{}, fmt.Errorf("%w: sale %d", ErrNotFound, id)
	}
	old := l.sales[si]
	sale = old
	patch.Apply(&sale)
	sale.PaymentMethod = sale.PaymentMethod.OrDefault()
	if err := model.Validate(sale); err != nil {
		return model.Sale{}, validationError(err)
	}

	items := slices.Clone(l.items)

	if sale.ItemID == old.ItemID {
		// The sale's own item may have been archived since; it still counts.
		ni := itemIndex(items, sale.ItemID)
		if ni < 0 {
			return model.Sale{}, fmt.Errorf("%w: %d", ErrItemNotFound, sale.ItemID)
		}
		diff := sale.UnitsSold - old.UnitsSold
		if diff > 0 && diff > items[ni].Units {
			return model.Sale{}, fmt.Errorf("%w: %d more requested, %d available", ErrInsufficientStock, diff, items[ni].Units)
		}
		items[ni].Units -= diff
		sale.Snapshot(items[ni])
	} else {
		ni := liveItemIndex(items, sale.ItemID)
		if ni < 0 {
			return model.Sale{}, fmt.Errorf("%w: %d", ErrItemNotFound, sale.ItemID)
		}
		if sale.UnitsSold > items[ni].Units {
			return model.Sale{}, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, sale.UnitsSold, items[ni].Units)
		}
		if oi := itemIndex(items, old.ItemID); oi >= 0 {
			items[oi].Units += old.UnitsSold
		} else {
			l.logger.Warn("sale moved away from missing item, units not restored", "sale", id, "item", old.ItemID)
		}
		items[ni].Units -= sale.UnitsSold
		sale.Snapshot(items[ni])
	}
	sale.Price(sale.UnitsSold, sale.CostPrice, sale.SellingPrice)

	sales := slices.Clone(l.sales)
	sales[si] = sale
	if err := l.saveBoth(ctx, items, sales); err != nil {
		return model.Sale{}, err
	}
	l.items, l.sales = items, sales

	l.logger.Info("sale updated", "id", id, "item", sale.ItemID, "units", sale.UnitsSold)
	return sale, nil
}

// DeleteSale removes the sale with id and returns its units to the item's
// stock. Deleting a missing sale does nothing.
func (l *Ledger) DeleteSale(ctx context.Context, id int64) (err error) {
	defer observe("delete_sale", &err)

	l.mu.Lock()
	defer l.mu.Unlock()

	si := saleIndex(l.sales, id)
	if si < 0 {
		return nil
	}
	sale := l.sales[si]

	items := slices.Clone(l.items)
	if ii := itemIndex(items, sale.ItemID); ii >= 0 {
		items[ii].Units += sale.UnitsSold
	} else {
		l.logger.Warn("deleted sale of missing item, units not restored", "sale", id, "item", sale.ItemID)
	}
	sales := slices.Delete(slices.Clone(l.sales), si, si+1)

	if err := l.saveBoth(ctx, items, sales); err != nil {
		return err
	}
	l.items, l.sales = items, sales

	l.logger.Info("sale deleted", "id", id, "item", sale.ItemID, "units", sale.UnitsSold)
	return nil
}
