package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rbs-jewelers/jewelbook/internal/model"
	webembed "github.com/rbs-jewelers/jewelbook/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// formatMoney renders an amount as US dollars, e.g. $1,234.50.
func formatMoney(d decimal.Decimal) string {
	p := message.NewPrinter(language.AmericanEnglish)
	s := p.Sprintf("%.2f", d.Abs().Round(2).InexactFloat64())
	if d.Round(2).IsNegative() {
		return "-$" + s
	}
	return "$" + s
}

// formatDate renders a YYYY-MM-DD date as e.g. Jan 2, 2006. Anything else is
// returned unchanged.
func formatDate(s string) string {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// formatPercent renders a percentage with one decimal, e.g. 33.3%.
func formatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":   formatMoney,
		"date":    formatDate,
		"percent": formatPercent,
		"fixed":   func(d decimal.Decimal) string { return d.StringFixed(2) },
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"payment": func(p model.PaymentMethod) string { return p.Label() },
		"checked": func(selected map[string]bool, key, value string) bool {
			return selected[key+"="+value]
		},
		"categories": func() []string { return model.CategoryOrder },
		"known": func(t string) bool {
			return t == "" || slices.Contains(model.CategoryOrder, t)
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"dashboard.html",
		"inventory.html",
		"sales.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Path    string
	Error   string
	Success string
	Today   string

	// Filter form state.
	Selected   map[string]bool
	From       string
	To         string
	Filtered   bool
	Categories []string
	Payments   []model.PaymentMethod
}
