package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
)

// Options configures the API router.
type Options struct {
	// ExportPrefix starts every exported file name.
	ExportPrefix string
	// RateLimit is the number of requests per minute allowed per client IP.
	// Zero disables limiting.
	RateLimit int
	// Now is the clock used for export dates.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(l *ledger.Ledger, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "RBS_Jewelers"
	}

	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{Ledger: l}
	salesHandler := &SalesHandler{Ledger: l}
	statsHandler := &StatsHandler{Ledger: l}
	exportHandler := &ExportHandler{Ledger: l, Prefix: opts.ExportPrefix, Now: opts.Now}

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PATCH /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)
	mux.HandleFunc("PUT /api/items/{id}/photo", itemsHandler.UploadPhoto)
	mux.HandleFunc("GET /api/items/{id}/photo", itemsHandler.GetPhoto)
	mux.HandleFunc("DELETE /api/items/{id}/photo", itemsHandler.DeletePhoto)
	mux.HandleFunc("GET /api/inventory", itemsHandler.Grouped)

	// Sales.
	mux.HandleFunc("GET /api/sales", salesHandler.List)
	mux.HandleFunc("POST /api/sales", salesHandler.Create)
	mux.HandleFunc("GET /api/sales/report", salesHandler.Report)
	mux.HandleFunc("GET /api/sales/{id}", salesHandler.Get)
	mux.HandleFunc("PATCH /api/sales/{id}", salesHandler.Update)
	mux.HandleFunc("DELETE /api/sales/{id}", salesHandler.Delete)

	// Dashboard and exports.
	mux.HandleFunc("GET /api/stats", statsHandler.Get)
	mux.HandleFunc("GET /api/export/{kind}", exportHandler.Download)

	if opts.RateLimit > 0 {
		return httprate.LimitByIP(opts.RateLimit, time.Minute)(mux)
	}
	return mux
}
