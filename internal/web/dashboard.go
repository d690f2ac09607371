package web

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/query"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

// recentSales is how many sales the dashboard lists.
const recentSales = 5

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	page := s.page(r, "Dashboard")

	f, err := query.ParseSaleFilter(r.URL.Query())
	if err != nil {
		page.Error = err.Error()
		f = query.SaleFilter{}
	}
	page.Filtered = f.Active()

	all, allSales := s.Ledger.Snapshot()
	items := query.Items(all, f.ItemsOnly())
	sales := query.SortSalesNewestFirst(query.Sales(allSales, f))

	var low []model.Item
	for _, it := range all {
		if it.LowStock() {
			low = append(low, it)
		}
	}
	slices.SortStableFunc(low, func(a, b model.Item) int {
		return query.CompareCategories(a.Type, b.Type)
	})

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Totals   stats.Totals
		LowStock []model.Item
		Recent   []model.Sale
	}{
		PageData: page,
		Totals:   stats.Compute(items, sales),
		LowStock: low,
		Recent:   sales[:min(len(sales), recentSales)],
	})
}

// page fills the data every page shares: flash messages and the state of
// the filter form.
func (s *Server) page(r *http.Request, title string) PageData {
	success, failure := flash(r)
	q := r.URL.Query()
	return PageData{
		Title:      title,
		Path:       r.URL.Path,
		Success:    success,
		Error:      failure,
		Today:      s.Now().Format(model.DateLayout),
		Selected:   selected(q),
		From:       q.Get(query.ParamFrom),
		To:         q.Get(query.ParamTo),
		Categories: categories(s.Ledger.Snapshot()),
		Payments:   model.PaymentMethods,
	}
}

// selected records which filter values are checked, keyed "param=value".
func selected(q url.Values) map[string]bool {
	set := make(map[string]bool)
	for _, param := range []string{query.ParamCategory, query.ParamCost, query.ParamPayment} {
		for _, v := range q[param] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					set[param+"="+part] = true
				}
			}
		}
	}
	return set
}

// categories lists the known categories followed by any other type in use,
// in display order.
func categories(items []model.Item, sales []model.Sale) []string {
	out := slices.Clone(model.CategoryOrder)
	add := func(t string) {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	for _, it := range items {
		add(it.Type)
	}
	for _, sale := range sales {
		add(sale.ItemType)
	}
	slices.SortStableFunc(out, query.CompareCategories)
	return out
}
