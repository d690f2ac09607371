package api

import (
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/query"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

type inventoryResponse struct {
	Filtered bool                  `json:"filtered"`
	Groups   []query.CategoryGroup `json:"groups"`
	Totals   stats.Totals          `json:"totals"`
}

// Grouped handles GET /api/inventory: the filtered inventory grouped by
// category in display order.
func (h *ItemsHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseItemFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := query.Items(h.Ledger.Items(), f)
	groups := query.GroupItemsByCategory(items)
	if groups == nil {
		groups = []query.CategoryGroup{}
	}
	jsonResponse(w, http.StatusOK, inventoryResponse{
		Filtered: f.Active(),
		Groups:   groups,
		Totals:   stats.Compute(items, nil),
	})
}
