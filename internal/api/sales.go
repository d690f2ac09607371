package api

import (
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/query"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

// SalesHandler handles sales endpoints.
type SalesHandler struct {
	Ledger *ledger.Ledger
}

type reportResponse struct {
	Filtered bool `json:"filtered"`
	stats.SalesReport
}

// List handles GET /api/sales. Sales are returned newest first.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseSaleFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	sales := query.SortSalesNewestFirst(query.Sales(h.Ledger.Sales(), f))
	jsonResponse(w, http.StatusOK, sales)
}

// Create handles POST /api/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.SaleInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.Ledger.RecordSale(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, sale)
}

// Get handles GET /api/sales/{id}.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	sale := h.Ledger.Sale(id)
	if sale == nil {
		jsonError(w, http.StatusNotFound, "sale not found")
		return
	}
	jsonResponse(w, http.StatusOK, sale)
}

// Update handles PATCH /api/sales/{id}.
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	var patch model.SalePatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.Ledger.UpdateSale(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sale)
}

// Delete handles DELETE /api/sales/{id}.
func (h *SalesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.Ledger.DeleteSale(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /api/sales/report: filtered sales by day with daily and
// grand totals.
func (h *SalesHandler) Report(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseSaleFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	report := stats.Report(query.GroupSalesByDate(query.Sales(h.Ledger.Sales(), f)))
	jsonResponse(w, http.StatusOK, reportResponse{Filtered: f.Active(), SalesReport: report})
}
