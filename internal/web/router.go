package web

import (
	"net/http"
	"time"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	webembed "github.com/rbs-jewelers/jewelbook/web"
)

// Server renders the HTML pages.
type Server struct {
	Ledger       *ledger.Ledger
	Templates    *Templates
	ExportPrefix string
	Now          func() time.Time
}

// Options configures the page router.
type Options struct {
	ExportPrefix string
	Now          func() time.Time
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(l *ledger.Ledger, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "RBS_Jewelers"
	}

	s := &Server{
		Ledger:       l,
		Templates:    templates,
		ExportPrefix: opts.ExportPrefix,
		Now:          opts.Now,
	}

	mux := http.NewServeMux()
	forms := limitForm(maxFormBytes)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.Dashboard)

	mux.HandleFunc("GET /inventory", s.InventoryPage)
	mux.Handle("POST /inventory", forms(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("POST /inventory/{id}", forms(http.HandlerFunc(s.ItemUpdateSubmit)))
	mux.Handle("POST /inventory/{id}/delete", forms(http.HandlerFunc(s.ItemDeleteSubmit)))
	mux.HandleFunc("POST /inventory/{id}/photo", s.ItemPhotoSubmit)
	mux.Handle("POST /inventory/{id}/photo/delete", forms(http.HandlerFunc(s.ItemPhotoDeleteSubmit)))
	mux.HandleFunc("GET /inventory/{id}/photo", s.ItemPhotoGet)

	mux.HandleFunc("GET /sales", s.SalesPage)
	mux.Handle("POST /sales", forms(http.HandlerFunc(s.SaleCreateSubmit)))
	mux.Handle("POST /sales/{id}", forms(http.HandlerFunc(s.SaleUpdateSubmit)))
	mux.Handle("POST /sales/{id}/delete", forms(http.HandlerFunc(s.SaleDeleteSubmit)))

	mux.HandleFunc("GET /export/{kind}", s.ExportDownload)

	return mux, nil
}
