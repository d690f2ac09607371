// Package stats aggregates inventory and sales into the figures shown on the
// dashboard, the sales report and the exported summary.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/query"
)

// Totals are the aggregate figures over a set of items and sales.
type Totals struct {
	ItemCount      int             `json:"itemCount"`
	UnitsInStock   int             `json:"unitsInStock"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	SaleCount      int             `json:"saleCount"`
	UnitsSold      int             `json:"unitsSold"`
	Revenue        decimal.Decimal `json:"revenue"`
	Cost           decimal.Decimal `json:"cost"`
	GrossMargin    decimal.Decimal `json:"grossMargin"`
	MarginPercent  decimal.Decimal `json:"marginPercent"`
}

// Compute totals items and sales. Margin percent is zero when there is no
// revenue.
func Compute(items []model.Item, sales []model.Sale) Totals {
	var t Totals
	t.ItemCount = len(items)
	for _, it := range items {
		t.UnitsInStock += it.Units
		t.InventoryValue = t.InventoryValue.Add(it.Value())
	}
	t.addSales(sales)
	return t
}

func (t *Totals) addSales(sales []model.Sale) {
	for _, s := range sales {
		t.SaleCount++
		t.UnitsSold += s.UnitsSold
		t.Revenue = t.Revenue.Add(s.TotalRevenue)
		t.Cost = t.Cost.Add(s.TotalCost)
		t.GrossMargin = t.GrossMargin.Add(s.GrossMargin)
	}
	t.MarginPercent = model.Percent(t.GrossMargin, t.Revenue)
}

// Day is one day of the sales report.
type Day struct {
	Date   string       `json:"date"`
	Sales  []model.Sale `json:"sales"`
	Totals Totals       `json:"totals"`
}

// SalesReport is the sales grouped by day with a grand total.
type SalesReport struct {
	Days  []Day  `json:"days"`
	Total Totals `json:"total"`
}

// Report totals each day group and the whole report. Days keep the order
// of groups.
func Report(groups []query.DayGroup) SalesReport {
	r := SalesReport{Days: make([]Day, 0, len(groups))}
	var all []model.Sale
	for _, g := range groups {
		var t Totals
		t.addSales(g.Sales)
		r.Days = append(r.Days, Day{Date: g.Date, Sales: g.Sales, Totals: t})
		all = append(all, g.Sales...)
	}
	r.Total.addSales(all)
	return r
}
