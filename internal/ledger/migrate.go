package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/store"
)

// currentSchemaVersion is the layout written by this version. Version 1 is
// anything written before the version key existed: records may carry the old
// price, dateAdded, unitPrice and totalAmount fields.
const currentSchemaVersion = 2

type legacyItem struct {
	model.Item
	Price     *decimal.Decimal `json:"price"`
	DateAdded string           `json:"dateAdded"`
}

// legacySale reads the price and derived fields as pointers, shadowing the
// embedded ones, so that an absent field is told apart from a stored zero.
type legacySale struct {
	model.Sale
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`

	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
	TotalRevenue  *decimal.Decimal `json:"totalRevenue"`
	TotalCost     *decimal.Decimal `json:"totalCost"`
	GrossMargin   *decimal.Decimal `json:"grossMargin"`
	MarginPercent *decimal.Decimal `json:"marginPercent"`
}

// derived reports whether every derived money field was stored.
func (r legacySale) derived() bool {
	return r.TotalRevenue != nil && r.TotalCost != nil && r.GrossMargin != nil && r.MarginPercent != nil
}

// migrate loads both collections, rewriting them in the current layout first
// if they were stored by an older version.
func migrate(ctx context.Context, st store.Store, logger *slog.Logger) ([]model.Item, []model.Sale, error) {
	version, err := storedVersion(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	if version > currentSchemaVersion {
		return nil, nil, fmt.Errorf("stored data has schema version %d, this build understands up to %d", version, currentSchemaVersion)
	}

	itemData, err := st.Get(ctx, store.KeyInventory)
	if err != nil {
		return nil, nil, fmt.Errorf("loading inventory: %w", err)
	}
	saleData, err := st.Get(ctx, store.KeySales)
	if err != nil {
		return nil, nil, fmt.Errorf("loading sales: %w", err)
	}

	if version == currentSchemaVersion {
		items, err := model.DecodeItems(itemData)
		if err != nil {
			return nil, nil, err
		}
		sales, err := model.DecodeSales(saleData)
		if err != nil {
			return nil, nil, err
		}
		return items, sales, nil
	}

	items, err := upgradeItems(itemData)
	if err != nil {
		return nil, nil, err
	}
	sales, err := upgradeSales(saleData)
	if err != nil {
		return nil, nil, err
	}

	itemOut, err := model.EncodeItems(items)
	if err != nil {
		return nil, nil, err
	}
	saleOut, err := model.EncodeSales(sales)
	if err != nil {
		return nil, nil, err
	}
	err = st.Put(ctx,
		store.Entry{Key: store.KeyInventory, Value: itemOut},
		store.Entry{Key: store.KeySales, Value: saleOut},
		store.Entry{Key: store.KeySchemaVersion, Value: []byte(strconv.Itoa(currentSchemaVersion))},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("saving migrated data: %w", err)
	}

	logger.Info("stored data migrated", "from", version, "to", currentSchemaVersion, "items", len(items), "sales", len(sales))
	return items, sales, nil
}

func storedVersion(ctx context.Context, st store.Store) (int, error) {
	data, err := st.Get(ctx, store.KeySchemaVersion)
	if err != nil {
		return 0, fmt.Errorf("loading schema version: %w", err)
	}
	if data == nil {
		return 1, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", data, err)
	}
	return v, nil
}

func upgradeItems(data []byte) ([]model.Item, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []legacyItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding legacy items: %w", err)
	}

	items := make([]model.Item, 0, len(raw))
	for _, r := range raw {
		it := r.Item
		if it.CostPrice.IsZero() && r.Price != nil {
			it.CostPrice = *r.Price
		}
		if it.DatePurchased == "" {
			it.DatePurchased = r.DateAdded
		}
		items = append(items, it)
	}
	return items, nil
}

func upgradeSales(data []byte) ([]model.Sale, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []legacySale
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding legacy sales: %w", err)
	}

	sales := make([]model.Sale, 0, len(raw))
	for _, r := range raw {
		sales = append(sales, upgradeSale(r))
	}
	return sales, nil
}

// upgradeSale fills the canonical fields of one legacy sale. Stored derived
// fields are kept as they are. Missing ones are computed from the selling
// price, or, when only a total was recorded, the unit price is derived from
// that total so the revenue survives.
func upgradeSale(r legacySale) model.Sale {
	s := r.Sale
	s.PaymentMethod = s.PaymentMethod.OrDefault()

	selling := r.SellingPrice
	if r.UnitPrice != nil && (selling == nil || selling.IsZero()) {
		selling = r.UnitPrice
	}
	if r.UnitPrice != nil && s.CostPrice.IsZero() {
		s.CostPrice = *r.UnitPrice
	}
	if selling != nil {
		s.SellingPrice = *selling
	}

	revenue := r.TotalRevenue
	if revenue == nil {
		revenue = r.TotalAmount
	}

	switch {
	case r.derived():
		s.TotalRevenue = *r.TotalRevenue
		s.TotalCost = *r.TotalCost
		s.GrossMargin = *r.GrossMargin
		s.MarginPercent = *r.MarginPercent
	case selling != nil && s.UnitsSold > 0:
		s.Price(s.UnitsSold, s.CostPrice, s.SellingPrice)
	case revenue != nil && s.UnitsSold > 0:
		units := decimal.NewFromInt(int64(s.UnitsSold))
		s.SellingPrice = revenue.DivRound(units, 2)
		s.TotalRevenue = *revenue
		s.TotalCost = units.Mul(s.CostPrice)
		s.GrossMargin = revenue.Sub(s.TotalCost)
		s.MarginPercent = model.Percent(s.SellingPrice.Sub(s.CostPrice), s.SellingPrice)
	case revenue != nil:
		s.TotalRevenue = *revenue
	}
	return s
}
