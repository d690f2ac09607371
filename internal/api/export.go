package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rbs-jewelers/jewelbook/internal/export"
	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// ExportHandler serves xlsx downloads.
type ExportHandler struct {
	Ledger *ledger.Ledger
	Prefix string
	Now    func() time.Time
}

// Download handles GET /api/export/{kind}.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	kind := export.Kind(r.PathValue("kind"))
	date := h.Now().Format(model.DateLayout)

	items, sales := h.Ledger.Snapshot()
	f, err := export.Build(kind, items, sales, date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.Close()

	name := export.Filename(h.Prefix, kind, date)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := f.Write(w); err != nil {
		slog.Error("writing export", "file", name, "request_id", RequestID(r.Context()), "error", err)
	}
}
