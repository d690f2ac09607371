package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/model"
	"github.com/rbs-jewelers/jewelbook/internal/photo"
	"github.com/rbs-jewelers/jewelbook/internal/query"
)

// ItemsHandler handles inventory item endpoints.
type ItemsHandler struct {
	Ledger *ledger.Ledger
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := query.ParseItemFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, query.Items(h.Ledger.Items(), f))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Ledger.AddItem(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item := h.Ledger.Item(id)
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var patch model.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Ledger.UpdateItem(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Ledger.DeleteItem(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto handles PUT /api/items/{id}/photo. The photo is either the raw
// request body or the "photo" field of a multipart form.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUpload)

	var data []byte
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, ferr := r.FormFile("photo")
		if ferr != nil {
			jsonError(w, http.StatusBadRequest, "photo file required")
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "photo is too large")
			return
		}
		jsonError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	if err := h.Ledger.SetPhoto(r.Context(), id, data); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, err := h.Ledger.Photo(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "item has no photo")
		return
	}

	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Write(data)
}

// DeletePhoto handles DELETE /api/items/{id}/photo.
func (h *ItemsHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Ledger.DeletePhoto(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
