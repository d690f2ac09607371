// Package query filters, groups and orders inventory and sales for display.
package query

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// DateRange is an inclusive range of YYYY-MM-DD dates. An empty bound is open.
type DateRange struct {
	From string
	To   string
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == ""
}

// Contains reports whether date falls within the range. Records without a
// date are always kept.
func (r DateRange) Contains(date string) bool {
	if date == "" {
		return true
	}
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// CostBucket is one of the fixed cost price bands used to narrow the inventory.
type CostBucket string

const (
	CostUpTo50   CostBucket = "0-50"
	Cost50To100  CostBucket = "50-100"
	Cost100To200 CostBucket = "100-200"
	Cost200To500 CostBucket = "200-500"
	CostAbove500 CostBucket = "500+"
)

// CostBuckets lists every band from cheapest to most expensive.
var CostBuckets = []CostBucket{CostUpTo50, Cost50To100, Cost100To200, Cost200To500, CostAbove500}

var (
	d50  = decimal.NewFromInt(50)
	d100 = decimal.NewFromInt(100)
	d200 = decimal.NewFromInt(200)
	d500 = decimal.NewFromInt(500)
)

// Contains reports whether cost falls in the band. Bands are closed on the
// upper end, and the lowest band also includes zero.
func (b CostBucket) Contains(cost decimal.Decimal) bool {
	switch b {
	case CostUpTo50:
		return !cost.IsNegative() && cost.LessThanOrEqual(d50)
	case Cost50To100:
		return cost.GreaterThan(d50) && cost.LessThanOrEqual(d100)
	case Cost100To200:
		return cost.GreaterThan(d100) && cost.LessThanOrEqual(d200)
	case Cost200To500:
		return cost.GreaterThan(d200) && cost.LessThanOrEqual(d500)
	case CostAbove500:
		return cost.GreaterThan(d500)
	}
	return false
}

// Label is the band as shown in filter menus.
func (b CostBucket) Label() string {
	switch b {
	case CostUpTo50:
		return "$0 - $50"
	case Cost50To100:
		return "$50 - $100"
	case Cost100To200:
		return "$100 - $200"
	case Cost200To500:
		return "$200 - $500"
	case CostAbove500:
		return "$500+"
	}
	return string(b)
}

// ItemFilter narrows the inventory. Empty fields keep everything.
type ItemFilter struct {
	Dates      DateRange
	Categories []string
	Costs      []CostBucket
}

// Active reports whether any criterion is set.
func (f ItemFilter) Active() bool {
	return !f.Dates.IsZero() || len(f.Categories) > 0 || len(f.Costs) > 0
}

// Match reports whether item passes every criterion.
func (f ItemFilter) Match(item model.Item) bool {
	if !f.Dates.Contains(item.DatePurchased) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, item.Type) {
		return false
	}
	if len(f.Costs) > 0 && !slices.ContainsFunc(f.Costs, func(b CostBucket) bool {
		return b.Contains(item.CostPrice)
	}) {
		return false
	}
	return true
}

// SaleFilter narrows the sales. Empty fields keep everything.
type SaleFilter struct {
	Dates      DateRange
	Categories []string
	Payments   []model.PaymentMethod
}

// Active reports whether any criterion is set.
func (f SaleFilter) Active() bool {
	return !f.Dates.IsZero() || len(f.Categories) > 0 || len(f.Payments) > 0
}

// Match reports whether sale passes every criterion. A sale without a
// payment method counts as cash.
func (f SaleFilter) Match(sale model.Sale) bool {
	if !f.Dates.Contains(sale.SaleDate) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, sale.ItemType) {
		return false
	}
	if len(f.Payments) > 0 && !slices.Contains(f.Payments, sale.PaymentMethod.OrDefault()) {
		return false
	}
	return true
}

// ItemsOnly returns the category part of f as an item filter, which is how
// the dashboard narrows the stock count.
func (f SaleFilter) ItemsOnly() ItemFilter {
	return ItemFilter{Categories: f.Categories}
}

func keep[T any](in []T, match func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if match(v) {
			out = append(out, v)
		}
	}
	return out
}

// Items returns the items passing f, in their original order.
func Items(items []model.Item, f ItemFilter) []model.Item {
	return keep(items, f.Match)
}

// Sales returns the sales passing f, in their original order.
func Sales(sales []model.Sale, f SaleFilter) []model.Sale {
	return keep(sales, f.Match)
}
