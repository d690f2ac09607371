package web

import (
	"fmt"
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/query"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

const salesPath = "/sales"

// SalesPage handles GET /sales.
func (s *Server) SalesPage(w http.ResponseWriter, r *http.Request) {
	page := s.page(r, "Sales")

	f, err := query.ParseSaleFilter(r.URL.Query())
	if err != nil {
		page.Error = err.Error()
		f = query.SaleFilter{}
	}
	page.Filtered = f.Active()

	items, all := s.Ledger.Snapshot()

	var inStock []model.Item
	for _, it := range items {
		if it.Units > 0 {
			inStock = append(inStock, it)
		}
	}

	s.Templates.Render(w, "sales.html", &struct {
		PageData
		Empty   bool
		Report  stats.SalesReport
		Items   []model.Item
		InStock []model.Item
	}{
		PageData: page,
		Empty:    len(all) == 0,
		Report:   stats.Report(query.GroupSalesByDate(query.Sales(all, f))),
		Items:    items,
		InStock:  inStock,
	})
}

// SaleCreateSubmit handles POST /sales.
func (s *Server) SaleCreateSubmit(w http.ResponseWriter, r *http.Request) {
	in, err := saleInputFromForm(r)
	if err != nil {
		redirectError(w, r, salesPath, err)
		return
	}

	sale, err := s.Ledger.RecordSale(r.Context(), in)
	if err != nil {
		redirectError(w, r, salesPath, err)
		return
	}
	redirectOK(w, r, salesPath, fmt.Sprintf("Sold %d × %s for %s.", sale.UnitsSold, sale.ItemModel, formatMoney(sale.TotalRevenue)))
}

// SaleUpdateSubmit handles POST /sales/{id}.
func (s *Server) SaleUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patch, err := salePatchFromForm(r)
	if err != nil {
		redirectError(w, r, salesPath, err)
		return
	}

	if _, err := s.Ledger.UpdateSale(r.Context(), id, patch); err != nil {
		redirectError(w, r, salesPath, err)
		return
	}
	redirectOK(w, r, salesPath, "Sale updated.")
}

// SaleDeleteSubmit handles POST /sales/{id}/delete.
func (s *Server) SaleDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.Ledger.DeleteSale(r.Context(), id); err != nil {
		redirectError(w, r, salesPath, err)
		return
	}
	redirectOK(w, r, salesPath, "Sale deleted and units returned to stock.")
}
