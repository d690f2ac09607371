// Package export writes inventory and sales to xlsx workbooks.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	// ErrNothingToExport is returned when there are no records for a workbook.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrUnknownKind is returned by Build for an unsupported workbook kind.
	ErrUnknownKind = errors.New("unknown export")
)

// Kind selects what a workbook contains.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindSales     Kind = "sales"
	KindAll       Kind = "all"
)

// Sheet names.
const (
	SheetInventory = "Inventory"
	SheetSales     = "Sales"
	SheetSummary   = "Summary"
)

// builtin number format 2 is "0.00"
const numFmtTwoDecimals = 2

type column struct {
	header string
	width  float64
	fixed2 bool
}

var inventoryColumns = []column{
	{header: "Item ID", width: 16},
	{header: "Type", width: 15},
	{header: "Model/Description", width: 30},
	{header: "Weight (grams)", width: 15, fixed2: true},
	{header: "Units in Stock", width: 15},
	{header: "Cost Price ($)", width: 15, fixed2: true},
	{header: "Total Value ($)", width: 15, fixed2: true},
	{header: "Date Purchased", width: 15},
}

var salesColumns = []column{
	{header: "Sale ID", width: 16},
	{header: "Date", width: 15},
	{header: "Item Type", width: 15},
	{header: "Model/Description", width: 30},
	{header: "Weight (grams)", width: 15, fixed2: true},
	{header: "Units Sold", width: 15},
	{header: "Cost Price ($)", width: 15, fixed2: true},
	{header: "Selling Price ($)", width: 15, fixed2: true},
	{header: "Total Revenue ($)", width: 15, fixed2: true},
	{header: "Gross Margin ($)", width: 15, fixed2: true},
	{header: "Margin %", width: 15, fixed2: true},
	{header: "Payment Method", width: 15},
}

var summaryColumns = []column{
	{header: "Metric", width: 25},
	{header: "Value", width: 20},
}

// Build returns the workbook of the given kind. date is the export date
// recorded in the summary sheet.
func Build(kind Kind, items []model.Item, sales []model.Sale, date string) (*excelize.File, error) {
	switch kind {
	case KindInventory:
		return Inventory(items)
	case KindSales:
		return Sales(sales)
	case KindAll:
		return All(items, sales, stats.Summary(items, sales, date))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Inventory builds a workbook with one row per item.
func Inventory(items []model.Item) (*excelize.File, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: inventory is empty", ErrNothingToExport)
	}
	b, err := newBook(SheetInventory)
	if err != nil {
		return nil, err
	}
	if err := b.inventory(items); err != nil {
		b.f.Close()
		return nil, err
	}
	return b.f, nil
}

// Sales builds a workbook with one row per sale.
func Sales(sales []model.Sale) (*excelize.File, error) {
	if len(sales) == 0 {
		return nil, fmt.Errorf("%w: no sales recorded", ErrNothingToExport)
	}
	b, err := newBook(SheetSales)
	if err != nil {
		return nil, err
	}
	if err := b.sales(sales); err != nil {
		b.f.Close()
		return nil, err
	}
	return b.f, nil
}

// All builds a backup workbook with an inventory sheet and a sales sheet,
// each only when it has rows, followed by the summary sheet.
func All(items []model.Item, sales []model.Sale, summary []stats.SummaryRow) (*excelize.File, error) {
	if len(items) == 0 && len(sales) == 0 {
		return nil, fmt.Errorf("%w: inventory and sales are empty", ErrNothingToExport)
	}

	var sheets []string
	if len(items) > 0 {
		sheets = append(sheets, SheetInventory)
	}
	if len(sales) > 0 {
		sheets = append(sheets, SheetSales)
	}
	sheets = append(sheets, SheetSummary)

	b, err := newBook(sheets...)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		err = b.inventory(items)
	}
	if err == nil && len(sales) > 0 {
		err = b.sales(sales)
	}
	if err == nil {
		err = b.summary(summary)
	}
	if err != nil {
		b.f.Close()
		return nil, err
	}
	return b.f, nil
}

// Filename returns the download name of a workbook, e.g.
// RBS_Jewelers_Sales_2024-01-31.xlsx.
func Filename(prefix string, kind Kind, date string) string {
	name := "Complete_Backup"
	switch kind {
	case KindInventory:
		name = "Inventory"
	case KindSales:
		name = "Sales"
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, name, date)
}

type book struct {
	f      *excelize.File
	title  cases.Caser
	header int
	fixed2 int
}

func newBook(sheets ...string) (*book, error) {
	f := excelize.NewFile()
	b := &book{f: f, title: cases.Title(language.English)}

	var err error
	if err = f.SetSheetName("Sheet1", sheets[0]); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range sheets[1:] {
		if _, err = f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("adding sheet %s: %w", name, err)
		}
	}

	if b.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	if b.fixed2, err = f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals}); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating number style: %w", err)
	}
	return b, nil
}

// write fills sheet with a header row and rows, then applies widths and the
// two-decimal format to amount columns.
func (b *book) write(sheet string, cols []column, rows [][]any) error {
	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	if err := b.f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}

	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := b.f.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("sizing %s column %s: %w", sheet, name, err)
		}
		if c.fixed2 && len(rows) > 0 {
			top, _ := excelize.CoordinatesToCellName(i+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(i+1, len(rows)+1)
			if err := b.f.SetCellStyle(sheet, top, bottom, b.fixed2); err != nil {
				return fmt.Errorf("styling %s column %s: %w", sheet, name, err)
			}
		}
	}
	return nil
}

func (b *book) inventory(items []model.Item) error {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.ID,
			b.title.String(it.Type),
			it.Model,
			it.Weight.InexactFloat64(),
			it.Units,
			it.CostPrice.InexactFloat64(),
			it.Value().InexactFloat64(),
			it.DatePurchased,
		})
	}
	return b.write(SheetInventory, inventoryColumns, rows)
}

func (b *book) sales(sales []model.Sale) error {
	rows := make([][]any, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []any{
			s.ID,
			s.SaleDate,
			b.title.String(s.ItemType),
			s.ItemModel,
			s.Weight.InexactFloat64(),
			s.UnitsSold,
			s.CostPrice.InexactFloat64(),
			s.SellingPrice.InexactFloat64(),
			s.TotalRevenue.InexactFloat64(),
			s.GrossMargin.InexactFloat64(),
			s.MarginPercent.InexactFloat64(),
			s.PaymentMethod.Label(),
		})
	}
	return b.write(SheetSales, salesColumns, rows)
}

func (b *book) summary(summary []stats.SummaryRow) error {
	rows := make([][]any, 0, len(summary))
	for _, r := range summary {
		var v any
		switch r.Kind {
		case stats.KindCount:
			v = r.Number.IntPart()
		case stats.KindText:
			v = r.Text
		default:
			v = r.Number.InexactFloat64()
		}
		rows = append(rows, []any{r.Metric, v})
	}
	if err := b.write(SheetSummary, summaryColumns, rows); err != nil {
		return err
	}

	for i, r := range summary {
		if r.Kind != stats.KindMoney && r.Kind != stats.KindPercent {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := b.f.SetCellStyle(SheetSummary, cell, cell, b.fixed2); err != nil {
			return fmt.Errorf("styling summary row %d: %w", i+2, err)
		}
	}
	return nil
}
