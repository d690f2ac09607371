package api

import (
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/query"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

// StatsHandler serves the dashboard figures.
type StatsHandler struct {
	Ledger *ledger.Ledger
}

type statsResponse struct {
	Filtered bool         `json:"filtered"`
	Totals   stats.Totals `json:"totals"`
}

// Get handles GET /api/stats. Sales honour every filter; the stock figures
// honour only the category filter.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseSaleFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	items, sales := h.Ledger.Snapshot()
	items = query.Items(items, f.ItemsOnly())
	sales = query.Sales(sales, f)
	jsonResponse(w, http.StatusOK, statsResponse{
		Filtered: f.Active(),
		Totals:   stats.Compute(items, sales),
	})
}
