package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/photo"
)

// maxFormBytes bounds url-encoded form submissions.
const maxFormBytes = 64 << 10

// limitForm caps the request body and parses the form before next runs.
// Unparseable submissions are rejected with 400.
func limitForm(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// pathID parses the {id} path segment, answering 400 when it is not a number.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// redirectOK sends the browser back to path with a success message.
func redirectOK(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?"+url.Values{"ok": {msg}}.Encode(), http.StatusSeeOther)
}

// redirectError sends the browser back to path with a message describing err.
func redirectError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?"+url.Values{"error": {userMessage(err)}}.Encode(), http.StatusSeeOther)
}

// userMessage turns err into text fit for the page. Unexpected failures are
// logged and replaced by a generic message.
func userMessage(err error) string {
	var fe formError
	switch {
	case errors.As(err, &fe):
		return fe.Error()
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrItemNotFound),
		errors.Is(err, ledger.ErrNotFound):
		return err.Error()
	case errors.Is(err, photo.ErrTooLarge):
		return "Photo is too large."
	default:
		slog.Error("page action failed", "error", err)
		return "Something went wrong, please try again."
	}
}

// flash reads the messages left by redirectOK and redirectError.
func flash(r *http.Request) (success, failure string) {
	q := r.URL.Query()
	return q.Get("ok"), q.Get("error")
}
