package stats

import (
	"github.com/shopspring/decimal"

	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// Kind says how a summary value should be presented.
type Kind int

const (
	KindCount Kind = iota
	KindMoney
	KindPercent
	KindText
)

// SummaryRow is one metric of the exported summary sheet.
type SummaryRow struct {
	Metric string
	Kind   Kind
	Number decimal.Decimal
	Text   string
}

// Summary returns the metrics written to the summary sheet of a full export.
func Summary(items []model.Item, sales []model.Sale, date string) []SummaryRow {
	t := Compute(items, sales)
	count := func(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
	return []SummaryRow{
		{Metric: "Total Inventory Items", Kind: KindCount, Number: count(t.ItemCount)},
		{Metric: "Total Units in Stock", Kind: KindCount, Number: count(t.UnitsInStock)},
		{Metric: "Total Inventory Value", Kind: KindMoney, Number: t.InventoryValue},
		{Metric: "Total Sales Transactions", Kind: KindCount, Number: count(t.SaleCount)},
		{Metric: "Total Units Sold", Kind: KindCount, Number: count(t.UnitsSold)},
		{Metric: "Total Revenue", Kind: KindMoney, Number: t.Revenue},
		{Metric: "Total Gross Margin", Kind: KindMoney, Number: t.GrossMargin},
		{Metric: "Overall Margin %", Kind: KindPercent, Number: t.MarginPercent},
		{Metric: "Export Date", Kind: KindText, Text: date},
	}
}
