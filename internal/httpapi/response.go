package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/grouptab/grouptab/internal/auth"
	"github.com/grouptab/grouptab/internal/ledger"
)

// writeJSON outputs a success response.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its status code and emits the
// uniform {"error": ...} body. This is the single place error kinds
// turn into HTTP semantics.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword):
		code = http.StatusBadRequest
	case errors.Is(err, ledger.ErrAuthRequired),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		code = http.StatusUnauthorized
	case errors.Is(err, ledger.ErrForbidden),
		errors.Is(err, ledger.ErrNotAMember),
		errors.Is(err, ledger.ErrNotAParticipant):
		code = http.StatusForbidden
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, ledger.ErrInvalidToken):
		code = http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists):
		code = http.StatusConflict
	}

	if code == http.StatusInternalServerError {
		slog.Error("Request error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, code, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, code, map[string]string{"error": err.Error()})
}
