package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zkraljic/biblio/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps store errors to HTTP error responses. Business rule
// violations keep their message; anything unexpected becomes a generic 500.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, store.ErrMemberOverdue):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidDates), errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidInput), errors.Is(err, store.ErrAvailabilityRange):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("unexpected store error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
