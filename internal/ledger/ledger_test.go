package ledger

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rbs-jewelers/jewelbook/internal/db"
	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/store"
)

var testNow = time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)

type flakyStore struct {
	store.Store
	fail bool
}

func (f *flakyStore) Put(ctx context.Context, entries ...store.Entry) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, entries...)
}

func openTestLedger(t *testing.T, st store.Store) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), st, Options{
		IDs:    &Counter{},
		Now:    func() time.Time { return testNow },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return l
}

func newTestLedger(t *testing.T) (*Ledger, *flakyStore) {
	t.Helper()
	st := &flakyStore{Store: store.NewSQLiteStore(db.NewTestDB(t))}
	return openTestLedger(t, st), st
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(n int) *int { return &n }

func addItem(t *testing.T, l *Ledger, typ string, units int, cost string) model.Item {
	t.Helper()
	item, err := l.AddItem(context.Background(), model.ItemInput{
		Type:      typ,
		Model:     "Test " + typ,
		Weight:    dec("4.2"),
		Units:     intp(units),
		CostPrice: dec(cost),
	})
	require.NoError(t, err)
	return item
}

func recordSale(t *testing.T, l *Ledger, itemID int64, units int, cost, selling string) model.Sale {
	t.Helper()
	sale, err := l.RecordSale(context.Background(), model.SaleInput{
		ItemID:       itemID,
		UnitsSold:    units,
		CostPrice:    dec(cost),
		SellingPrice: dec(selling),
	})
	require.NoError(t, err)
	return sale
}

func TestAddItemDefaults(t *testing.T) {
	l, _ := newTestLedger(t)

	item := addItem(t, l, " ring ", 5, "100")
	require.Equal(t, int64(1), item.ID)
	require.Equal(t, "ring", item.Type)
	require.Equal(t, "2025-03-10", item.DatePurchased)
	require.Len(t, l.Items(), 1)
}

func TestAddItemValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	cases := map[string]model.ItemInput{
		"missing type":    {Model: "Band", Weight: dec("1"), Units: intp(1), CostPrice: dec("1")},
		"zero weight":     {Type: "ring", Model: "Band", Weight: dec("0"), Units: intp(1), CostPrice: dec("1")},
		"negative units":  {Type: "ring", Model: "Band", Weight: dec("1"), Units: intp(-1), CostPrice: dec("1")},
		"negative cost":   {Type: "ring", Model: "Band", Weight: dec("1"), Units: intp(1), CostPrice: dec("-1")},
		"missing cost":    {Type: "ring", Model: "Band", Weight: dec("1"), Units: intp(1)},
		"blank model":     {Type: "ring", Model: "   ", Weight: dec("1"), Units: intp(1), CostPrice: dec("1")},
		"bad date format": {Type: "ring", Model: "Band", Weight: dec("1"), Units: intp(1), CostPrice: dec("1"), DatePurchased: "15/01/2024"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := l.AddItem(ctx, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	require.Empty(t, l.Items())
}

func TestRecordSaleScenario(t *testing.T) {
	l, _ := newTestLedger(t)

	item := addItem(t, l, "ring", 5, "100")
	sale := recordSale(t, l, item.ID, 2, "100", "150")

	require.Equal(t, 3, l.Item(item.ID).Units)
	require.Equal(t, "300", sale.TotalRevenue.String())
	require.Equal(t, "200", sale.TotalCost.String())
	require.Equal(t, "100", sale.GrossMargin.String())
	require.Equal(t, "33.33", sale.MarginPercent.String())
	require.Equal(t, model.PaymentCash, sale.PaymentMethod)
	require.Equal(t, "2025-03-10", sale.SaleDate)
	require.Equal(t, "ring", sale.ItemType)
	require.Equal(t, item.Model, sale.ItemModel)
}

func TestRecordSaleDefaultsCostToItem(t *testing.T) {
	l, _ := newTestLedger(t)

	item := addItem(t, l, "necklace", 2, "80")
	sale, err := l.RecordSale(context.Background(), model.SaleInput{
		ItemID:        item.ID,
		UnitsSold:     1,
		SellingPrice:  dec("120"),
		PaymentMethod: model.PaymentLoanApp,
		SaleDate:      "2025-01-02",
	})
	require.NoError(t, err)
	require.Equal(t, "80", sale.CostPrice.String())
	require.Equal(t, model.PaymentLoanApp, sale.PaymentMethod)
	require.Equal(t, "2025-01-02", sale.SaleDate)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	l, _ := newTestLedger(t)

	item := addItem(t, l, "ring", 2, "100")
	_, err := l.RecordSale(context.Background(), model.SaleInput{
		ItemID: item.ID, UnitsSold: 3, SellingPrice: dec("150"),
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 2, l.Item(item.ID).Units)
	require.Empty(t, l.Sales())
}

func TestRecordSaleUnknownItem(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.RecordSale(context.Background(), model.SaleInput{
		ItemID: 42, UnitsSold: 1, SellingPrice: dec("10"),
	})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestRecordSaleInvalidInput(t *testing.T) {
	l, _ := newTestLedger(t)
	item := addItem(t, l, "ring", 2, "100")

	_, err := l.RecordSale(context.Background(), model.SaleInput{ItemID: item.ID, UnitsSold: 0, SellingPrice: dec("10")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = l.RecordSale(context.Background(), model.SaleInput{ItemID: item.ID, UnitsSold: 1, SellingPrice: dec("10"), PaymentMethod: "barter"})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 2, l.Item(item.ID).Units)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	l, st := newTestLedger(t)
	item := addItem(t, l, "ring", 5, "100")

	st.fail = true
	_, err := l.RecordSale(context.Background(), model.SaleInput{ItemID: item.ID, UnitsSold: 2, SellingPrice: dec("150")})
	require.Error(t, err)
	require.Equal(t, 5, l.Item(item.ID).Units)
	require.Empty(t, l.Sales())

	_, err = l.AddItem(context.Background(), model.ItemInput{Type: "ring", Model: "Band", Weight: dec("1"), Units: intp(1), CostPrice: dec("1")})
	require.Error(t, err)
	require.Len(t, l.Items(), 1)
}

func TestUpdateSaleSameItem(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	item := addItem(t, l, "ring", 4, "100")
	sale := recordSale(t, l, item.ID, 2, "100", "150")
	require.Equal(t, 2, l.Item(item.ID).Units)

	// Asking for 5 needs 3 more units but only 2 remain.
	_, err := l.UpdateSale(ctx, sale.ID, model.SalePatch{UnitsSold: intp(5)})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 2, l.Item(item.ID).Units)
	require.Equal(t, 2, l.Sale(sale.ID).UnitsSold)

	updated, err := l.UpdateSale(ctx, sale.ID, model.SalePatch{UnitsSold: intp(4), SellingPrice: dec("200")})
	require.NoError(t, err)
	require.Equal(t, sale.ID, updated.ID)
	require.Equal(t, 0, l.Item(item.ID).Units)
	require.Equal(t, "800", updated.TotalRevenue.String())
	require.Equal(t, "400", updated.GrossMargin.String())
	require.Equal(t, "50", updated.MarginPercent.String())

	_, err = l.UpdateSale(ctx, sale.ID, model.SalePatch{UnitsSold: intp(1)})
	require.NoError(t, err)
	require.Equal(t, 3, l.Item(item.ID).Units)
}

func TestUpdateSaleChangesItem(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	a := addItem(t, l, "ring", 5, "100")
	b := addItem(t, l, "bracelet", 2, "60")
	sale := recordSale(t, l, a.ID, 3, "100", "150")

	_, err := l.UpdateSale(ctx, sale.ID, model.SalePatch{ItemID: &b.ID})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 2, l.Item(a.ID).Units)
	require.Equal(t, 2, l.Item(b.ID).Units)

	updated, err := l.UpdateSale(ctx, sale.ID, model.SalePatch{ItemID: &b.ID, UnitsSold: intp(2)})
	require.NoError(t, err)
	require.Equal(t, 5, l.Item(a.ID).Units)
	require.Equal(t, 0, l.Item(b.ID).Units)
	require.Equal(t, "bracelet", updated.ItemType)
	require.Equal(t, b.Model, updated.ItemModel)

	missing := int64(999)
	_, err = l.UpdateSale(ctx, sale.ID, model.SalePatch{ItemID: &missing})
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateSaleNotFound(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.UpdateSale(context.Background(), 7, model.SalePatch{UnitsSold: intp(1)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSaleRestoresUnits(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	item := addItem(t, l, "earring", 4, "30")
	sale := recordSale(t, l, item.ID, 3, "30", "45")
	require.Equal(t, 1, l.Item(item.ID).Units)

	require.NoError(t, l.DeleteSale(ctx, sale.ID))
	require.Equal(t, 4, l.Item(item.ID).Units)
	require.Nil(t, l.Sale(sale.ID))

	// Second delete is a no-op.
	require.NoError(t, l.DeleteSale(ctx, sale.ID))
	require.Equal(t, 4, l.Item(item.ID).Units)
}

func TestDeleteReferencedItemArchives(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()

	item := addItem(t, l, "ring", 3, "100")
	sale := recordSale(t, l, item.ID, 1, "100", "150")

	require.NoError(t, l.DeleteItem(ctx, item.ID))
	require.Nil(t, l.Item(item.ID))
	require.Empty(t, l.Items())
	require.NoError(t, l.DeleteItem(ctx, item.ID))

	_, err := l.RecordSale(ctx, model.SaleInput{ItemID: item.ID, UnitsSold: 1, SellingPrice: dec("1")})
	require.ErrorIs(t, err, ErrItemNotFound)

	// The archived record still receives the units back.
	require.NoError(t, l.DeleteSale(ctx, sale.ID))
	data, err := st.Get(ctx, store.KeyInventory)
	require.NoError(t, err)
	items, err := model.DecodeItems(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Archived())
	require.Equal(t, 3, items[0].Units)
}

func TestDeleteUnreferencedItemRemovesPhoto(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := context.Background()

	item := addItem(t, l, "necklace", 1, "500")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	require.NoError(t, l.SetPhoto(ctx, item.ID, buf.Bytes()))

	got, err := l.Photo(ctx, item.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	require.NoError(t, l.DeleteItem(ctx, item.ID))
	raw, err := st.Get(ctx, store.PhotoKey(item.ID))
	require.NoError(t, err)
	require.Nil(t, raw)

	data, _ := st.Get(ctx, store.KeyInventory)
	require.Equal(t, "[]", string(data))
}

func TestHasPhoto(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	item := addItem(t, l, "ring", 1, "10")

	ok, err := l.HasPhoto(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, ok)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, l.SetPhoto(ctx, item.ID, buf.Bytes()))

	ok, err = l.HasPhoto(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.DeletePhoto(ctx, item.ID))
	ok, err = l.HasPhoto(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = l.HasPhoto(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotSkipsArchivedItems(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	kept := addItem(t, l, "ring", 2, "10")
	gone := addItem(t, l, "bracelet", 2, "10")
	recordSale(t, l, gone.ID, 1, "10", "20")
	require.NoError(t, l.DeleteItem(ctx, gone.ID))

	items, sales := l.Snapshot()
	require.Len(t, items, 1)
	require.Equal(t, kept.ID, items[0].ID)
	require.Len(t, sales, 1)
	require.Equal(t, gone.ID, sales[0].ItemID)
}

func TestSetPhotoRejectsGarbage(t *testing.T) {
	l, _ := newTestLedger(t)
	item := addItem(t, l, "ring", 1, "10")

	err := l.SetPhoto(context.Background(), item.ID, []byte("not a photo"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = l.Photo(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	item := addItem(t, l, "ring", 3, "100")
	name := "Ruby Ring"
	updated, err := l.UpdateItem(ctx, item.ID, model.ItemPatch{Model: &name, Units: intp(7)})
	require.NoError(t, err)
	require.Equal(t, "Ruby Ring", updated.Model)
	require.Equal(t, 7, updated.Units)
	require.Equal(t, "ring", updated.Type)

	_, err = l.UpdateItem(ctx, item.ID, model.ItemPatch{Units: intp(-2)})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 7, l.Item(item.ID).Units)

	_, err = l.UpdateItem(ctx, 999, model.ItemPatch{Units: intp(1)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsState(t *testing.T) {
	st := store.NewSQLiteStore(db.NewTestDB(t))
	l := openTestLedger(t, st)

	item := addItem(t, l, "ring", 5, "100")
	recordSale(t, l, item.ID, 2, "100", "150")

	reopened := openTestLedger(t, st)
	require.Equal(t, 3, reopened.Item(item.ID).Units)
	require.Len(t, reopened.Sales(), 1)

	// Ids continue after the largest loaded one.
	next := addItem(t, reopened, "bracelet", 1, "10")
	require.Greater(t, next.ID, reopened.Sales()[0].ID)
}

func TestSeedSample(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	added, err := l.SeedSample(ctx)
	require.NoError(t, err)
	require.True(t, added)
	require.Len(t, l.Items(), 4)

	added, err = l.SeedSample(ctx)
	require.NoError(t, err)
	require.False(t, added)
	require.Len(t, l.Items(), 4)
}

func TestSeedSampleConcurrentCallsAddOnce(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := l.SeedSample(ctx)
			if err != nil {
				t.Errorf("SeedSample: %v", err)
			}
			results[i] = added
		}()
	}
	wg.Wait()

	require.Len(t, l.Items(), len(sampleItems))
	seeded := 0
	for _, added := range results {
		if added {
			seeded++
		}
	}
	require.Equal(t, 1, seeded)
}

func TestSeedSampleSkipsNonEmptyInventory(t *testing.T) {
	l, _ := newTestLedger(t)
	addItem(t, l, "ring", 1, "10")

	added, err := l.SeedSample(context.Background())
	require.NoError(t, err)
	require.False(t, added)
	require.Len(t, l.Items(), 1)
}

func TestStockNeverNegative(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	item := addItem(t, l, "ring", 3, "10")
	var ids []int64
	for i := 0; i < 5; i++ {
		sale, err := l.RecordSale(ctx, model.SaleInput{ItemID: item.ID, UnitsSold: 1, SellingPrice: dec("20")})
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientStock)
			continue
		}
		ids = append(ids, sale.ID)
	}
	require.Len(t, ids, 3)
	require.Equal(t, 0, l.Item(item.ID).Units)

	for _, id := range ids {
		require.NoError(t, l.DeleteSale(ctx, id))
	}
	require.Equal(t, 3, l.Item(item.ID).Units)
}

func TestSequenceIsMonotonic(t *testing.T) {
	clock := time.UnixMilli(1_000)
	s := &Sequence{now: func() time.Time { return clock }}

	require.Equal(t, int64(1000), s.NextID())
	require.Equal(t, int64(1001), s.NextID())

	s.Observe(5000)
	require.Equal(t, int64(5001), s.NextID())

	clock = time.UnixMilli(9_000)
	require.Equal(t, int64(9000), s.NextID())
}

func TestOpenMigratesLegacyData(t *testing.T) {
	st := store.NewSQLiteStore(db.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, st.Put(ctx,
		store.Entry{Key: store.KeyInventory, Value: []byte(`[
			{"id":1700000000000,"type":"ring","model":"Band","weight":3.5,"units":2,"price":120,"dateAdded":"2024-01-15"}
		]`)},
		store.Entry{Key: store.KeySales, Value: []byte(`[
			{"id":1700000000001,"itemId":1700000000000,"itemType":"ring","itemModel":"Band","weight":3.5,"unitsSold":1,"unitPrice":150,"totalAmount":150,"saleDate":"2024-02-01"}
		]`)},
	))

	l := openTestLedger(t, st)

	item := l.Item(1700000000000)
	require.NotNil(t, item)
	require.Equal(t, "120", item.CostPrice.String())
	require.Equal(t, "2024-01-15", item.DatePurchased)

	sale := l.Sale(1700000000001)
	require.NotNil(t, sale)
	require.Equal(t, "150", sale.CostPrice.String())
	require.Equal(t, "150", sale.SellingPrice.String())
	require.Equal(t, "150", sale.TotalRevenue.String())
	require.Equal(t, model.PaymentCash, sale.PaymentMethod)

	version, err := st.Get(ctx, store.KeySchemaVersion)
	require.NoError(t, err)
	require.Equal(t, "2", string(version))

	inv, _ := st.Get(ctx, store.KeyInventory)
	require.Contains(t, string(inv), `"costPrice":120`)
	require.NotContains(t, string(inv), `"price"`)
	require.NotContains(t, string(inv), `dateAdded`)

	// A second load reads the canonical data as is.
	again := openTestLedger(t, st)
	require.Equal(t, "120", again.Item(1700000000000).CostPrice.String())
	after, _ := st.Get(ctx, store.KeyInventory)
	require.Equal(t, string(inv), string(after))
}

func TestOpenKeepsLegacyTotalAmount(t *testing.T) {
	st := store.NewSQLiteStore(db.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Entry{Key: store.KeySales, Value: []byte(`[
		{"id":7,"itemId":1,"itemType":"ring","itemModel":"Band","weight":3.5,"unitsSold":2,"totalAmount":300,"saleDate":"2024-02-01"}
	]`)}))

	l := openTestLedger(t, st)
	sale := l.Sale(7)
	require.NotNil(t, sale)
	require.Equal(t, "300", sale.TotalRevenue.String())
	require.Equal(t, "150", sale.SellingPrice.String())
	require.Equal(t, "300", sale.GrossMargin.String())
	require.Equal(t, "100", sale.MarginPercent.String())

	// The rewritten blob keeps the revenue for every later load.
	again := openTestLedger(t, st)
	require.Equal(t, "300", again.Sale(7).TotalRevenue.String())
}

func TestOpenKeepsStoredDerivedFields(t *testing.T) {
	st := store.NewSQLiteStore(db.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, store.Entry{Key: store.KeySales, Value: []byte(`[
		{"id":8,"itemId":1,"itemType":"ring","itemModel":"Band","weight":3.5,"unitsSold":3,
		 "costPrice":20,"sellingPrice":30,"totalRevenue":90,"totalCost":60,"grossMargin":30,
		 "marginPercent":33.333333,"paymentMethod":"loan_app","saleDate":"2024-02-01"}
	]`)}))

	l := openTestLedger(t, st)
	sale := l.Sale(8)
	require.NotNil(t, sale)
	require.Equal(t, "33.333333", sale.MarginPercent.String())
	require.Equal(t, "90", sale.TotalRevenue.String())
	require.Equal(t, "30", sale.SellingPrice.String())
	require.Equal(t, model.PaymentLoanApp, sale.PaymentMethod)
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	st := store.NewSQLiteStore(db.NewTestDB(t))
	require.NoError(t, st.Put(context.Background(), store.Entry{Key: store.KeySchemaVersion, Value: []byte("9")}))

	_, err := Open(context.Background(), st, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "schema version 9"))
}
