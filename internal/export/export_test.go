package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	out, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { out.Close() })
	return out
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue %s!%s: %v", sheet, cell, err)
	}
	return v
}

func testItems() []model.Item {
	return []model.Item{{
		ID:            17,
		Type:          "ring",
		Model:         "Sapphire Engagement Ring",
		Weight:        decimal.RequireFromString("3.8"),
		Units:         2,
		CostPrice:     decimal.RequireFromString("899.99"),
		DatePurchased: "2024-01-17",
	}}
}

func testSales() []model.Sale {
	s := model.Sale{ID: 21, ItemID: 17, ItemType: "ring", ItemModel: "Sapphire Engagement Ring", SaleDate: "2024-02-01", PaymentMethod: model.PaymentCreditCard}
	s.Price(2, decimal.NewFromInt(100), decimal.NewFromInt(150))
	return []model.Sale{s}
}

func TestInventoryWorkbook(t *testing.T) {
	f, err := Inventory(testItems())
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	got := reopen(t, f)

	if sheets := got.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetInventory {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := got.GetRows(SheetInventory)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	for i, c := range inventoryColumns {
		if rows[0][i] != c.header {
			t.Errorf("header %d: expected %q, got %q", i, c.header, rows[0][i])
		}
	}
	if v := raw(t, got, SheetInventory, "B2"); v != "Ring" {
		t.Errorf("expected capitalized type, got %q", v)
	}
	if v := raw(t, got, SheetInventory, "G2"); v != "1799.98" {
		t.Errorf("expected total value 1799.98, got %q", v)
	}
}

func TestSalesWorkbook(t *testing.T) {
	f, err := Sales(testSales())
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	got := reopen(t, f)

	checks := map[string]string{
		"A1": "Sale ID",
		"L1": "Payment Method",
		"A2": "21",
		"I2": "300",
		"J2": "100",
		"K2": "33.33",
		"L2": "Credit Card",
	}
	for cell, want := range checks {
		if v := raw(t, got, SheetSales, cell); v != want {
			t.Errorf("%s: expected %q, got %q", cell, want, v)
		}
	}
}

func TestAllWorkbook(t *testing.T) {
	items, sales := testItems(), testSales()
	f, err := All(items, sales, stats.Summary(items, sales, "2024-02-02"))
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	got := reopen(t, f)

	sheets := got.GetSheetList()
	want := []string{SheetInventory, SheetSales, SheetSummary}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d: expected %s, got %s", i, want[i], sheets[i])
		}
	}

	if v := raw(t, got, SheetSummary, "A7"); v != "Total Revenue" {
		t.Errorf("expected Total Revenue row, got %q", v)
	}
	if v := raw(t, got, SheetSummary, "B7"); v != "300" {
		t.Errorf("expected revenue 300, got %q", v)
	}
	if v := raw(t, got, SheetSummary, "B10"); v != "2024-02-02" {
		t.Errorf("expected export date, got %q", v)
	}
}

func TestAllSkipsEmptyCollections(t *testing.T) {
	sales := testSales()
	f, err := All(nil, sales, stats.Summary(nil, sales, "2024-02-02"))
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	got := reopen(t, f)

	sheets := got.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SheetSales || sheets[1] != SheetSummary {
		t.Errorf("expected [Sales Summary], got %v", sheets)
	}
}

func TestNothingToExport(t *testing.T) {
	if _, err := Inventory(nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Inventory: expected ErrNothingToExport, got %v", err)
	}
	if _, err := Sales(nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Sales: expected ErrNothingToExport, got %v", err)
	}
	if _, err := All(nil, nil, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("All: expected ErrNothingToExport, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInventory, "RBS_Jewelers_Inventory_2024-03-01.xlsx"},
		{KindSales, "RBS_Jewelers_Sales_2024-03-01.xlsx"},
		{KindAll, "RBS_Jewelers_Complete_Backup_2024-03-01.xlsx"},
	}
	for _, tt := range tests {
		if got := Filename("RBS_Jewelers", tt.kind, "2024-03-01"); got != tt.want {
			t.Errorf("Filename(%s): expected %q, got %q", tt.kind, tt.want, got)
		}
	}
}

func TestBuildUnknownKind(t *testing.T) {
	if _, err := Build("pdf", testItems(), nil, "2024-03-01"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	f, err := Build(KindAll, testItems(), nil, "2024-03-01")
	if err != nil {
		t.Fatalf("Build all: %v", err)
	}
	f.Close()
}
