package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rbs-jewelers/jewelbook/internal/export"
	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/query"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, query.ErrBadFilter):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrItemNotFound),
		errors.Is(err, export.ErrNothingToExport), errors.Is(err, export.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Unexpected errors are logged and
// reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		jsonError(w, status, "internal error")
		return
	}
	jsonError(w, status, err.Error())
}
