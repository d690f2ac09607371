package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/export"
	"github.com/rbs-jewelers/jewelbook/internal/model"
)

// ExportDownload handles GET /export/{kind}. When there is nothing to
// export the browser is sent back to the dashboard with a message.
func (s *Server) ExportDownload(w http.ResponseWriter, r *http.Request) {
	kind := export.Kind(r.PathValue("kind"))
	date := s.Now().Format(model.DateLayout)

	items, sales := s.Ledger.Snapshot()
	f, err := export.Build(kind, items, sales, date)
	switch {
	case errors.Is(err, export.ErrUnknownKind):
		http.NotFound(w, r)
		return
	case errors.Is(err, export.ErrNothingToExport):
		http.Redirect(w, r, "/?error=No+data+to+export.", http.StatusSeeOther)
		return
	case err != nil:
		slog.Error("failed to build export", "kind", kind, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	name := export.Filename(s.ExportPrefix, kind, date)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := f.Write(w); err != nil {
		slog.Error("failed to write export", "file", name, "error", err)
		return
	}
	slog.Info("export downloaded", "file", name)
}
