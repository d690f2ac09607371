package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for purchase and sale dates.
const DateLayout = "2006-01-02"

// LowStockThreshold is the unit count below which an item is flagged as low on stock.
const LowStockThreshold = 3

// Item represents one inventory line (a product model with a unit count).
type Item struct {
	ID            int64           `json:"id"`
	Type          string          `json:"type" validate:"required"`
	Model         string          `json:"model" validate:"required"`
	Weight        decimal.Decimal `json:"weight" validate:"gt=0"`
	Units         int             `json:"units" validate:"gte=0"`
	CostPrice     decimal.Decimal `json:"costPrice" validate:"gte=0"`
	DatePurchased string          `json:"datePurchased" validate:"omitempty,datetime=2006-01-02"`
	DeletedAt     *time.Time      `json:"deletedAt,omitempty"`
}

// Item categories. The set is open: any other non-empty type is accepted.
const (
	CategoryNecklace = "necklace"
	CategoryBracelet = "bracelet"
	CategoryRing     = "ring"
	CategoryEarring  = "earring"
	CategoryOther    = "other"
)

// CategoryOrder is the display priority of the known categories.
var CategoryOrder = []string{
	CategoryNecklace,
	CategoryBracelet,
	CategoryRing,
	CategoryEarring,
	CategoryOther,
}

// Value returns the stock value of the item at cost.
func (i Item) Value() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(int64(i.Units)))
}

// LowStock reports whether the item is running out.
func (i Item) LowStock() bool {
	return i.Units < LowStockThreshold
}

// Archived reports whether the item was deleted while sales still referenced it.
func (i Item) Archived() bool {
	return i.DeletedAt != nil
}

// ItemInput holds the fields required to create an item.
type ItemInput struct {
	Type          string           `json:"type" validate:"required"`
	Model         string           `json:"model" validate:"required"`
	Weight        *decimal.Decimal `json:"weight" validate:"required,gt=0"`
	Units         *int             `json:"units" validate:"required,gte=0"`
	CostPrice     *decimal.Decimal `json:"costPrice" validate:"required,gte=0"`
	DatePurchased string           `json:"datePurchased" validate:"omitempty,datetime=2006-01-02"`
}

// ItemPatch is a partial item update. Nil fields keep their current value.
type ItemPatch struct {
	Type          *string          `json:"type"`
	Model         *string          `json:"model"`
	Weight        *decimal.Decimal `json:"weight"`
	Units         *int             `json:"units"`
	CostPrice     *decimal.Decimal `json:"costPrice"`
	DatePurchased *string          `json:"datePurchased"`
}

// Apply merges the patch into item.
func (p ItemPatch) Apply(item *Item) {
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Model != nil {
		item.Model = *p.Model
	}
	if p.Weight != nil {
		item.Weight = *p.Weight
	}
	if p.Units != nil {
		item.Units = *p.Units
	}
	if p.CostPrice != nil {
		item.CostPrice = *p.CostPrice
	}
	if p.DatePurchased != nil {
		item.DatePurchased = *p.DatePurchased
	}
}
