package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/photo"
	"github.com/rbs-jewelers/jewelbook/internal/query"
	"github.com/rbs-jewelers/jewelbook/internal/stats"
)

const inventoryPath = "/inventory"

// InventoryPage handles GET /inventory.
func (s *Server) InventoryPage(w http.ResponseWriter, r *http.Request) {
	page := s.page(r, "Inventory")

	f, err := query.ParseItemFilter(r.URL.Query())
	if err != nil {
		page.Error = err.Error()
		f = query.ItemFilter{}
	}
	page.Filtered = f.Active()

	all := s.Ledger.Items()
	items := query.Items(all, f)

	photos := make(map[int64]bool, len(items))
	for _, it := range items {
		has, err := s.Ledger.HasPhoto(r.Context(), it.ID)
		if err != nil {
			slog.Error("failed to check photo", "item", it.ID, "error", err)
			continue
		}
		photos[it.ID] = has
	}

	s.Templates.Render(w, "inventory.html", &struct {
		PageData
		Empty  bool
		Groups []query.CategoryGroup
		Totals stats.Totals
		Costs  []query.CostBucket
		Photos map[int64]bool
	}{
		PageData: page,
		Empty:    len(all) == 0,
		Groups:   query.GroupItemsByCategory(items),
		Totals:   stats.Compute(items, nil),
		Costs:    query.CostBuckets,
		Photos:   photos,
	})
}

// ItemCreateSubmit handles POST /inventory.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	in, err := itemInputFromForm(r)
	if err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}

	item, err := s.Ledger.AddItem(r.Context(), in)
	if err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}
	redirectOK(w, r, inventoryPath, fmt.Sprintf("Added %s.", item.Model))
}

// ItemUpdateSubmit handles POST /inventory/{id}.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patch, err := itemPatchFromForm(r)
	if err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}

	item, err := s.Ledger.UpdateItem(r.Context(), id, patch)
	if err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}
	redirectOK(w, r, inventoryPath, fmt.Sprintf("Updated %s.", item.Model))
}

// ItemDeleteSubmit handles POST /inventory/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.Ledger.DeleteItem(r.Context(), id); err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}
	redirectOK(w, r, inventoryPath, "Item deleted.")
}

// ItemPhotoSubmit handles POST /inventory/{id}/photo.
func (s *Server) ItemPhotoSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUpload+1<<20)
	if err := r.ParseMultipartForm(photo.MaxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			redirectError(w, r, inventoryPath, photo.ErrTooLarge)
		} else {
			redirectError(w, r, inventoryPath, formError{"photo", "choose a file"})
		}
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		redirectError(w, r, inventoryPath, formError{"photo", "choose a file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		redirectError(w, r, inventoryPath, fmt.Errorf("reading photo: %w", err))
		return
	}
	if err := s.Ledger.SetPhoto(r.Context(), id, data); err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}
	redirectOK(w, r, inventoryPath, "Photo saved.")
}

// ItemPhotoDeleteSubmit handles POST /inventory/{id}/photo/delete.
func (s *Server) ItemPhotoDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.Ledger.DeletePhoto(r.Context(), id); err != nil {
		redirectError(w, r, inventoryPath, err)
		return
	}
	redirectOK(w, r, inventoryPath, "Photo removed.")
}

// ItemPhotoGet handles GET /inventory/{id}/photo.
func (s *Server) ItemPhotoGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := s.Ledger.Photo(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get photo", "item", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}
