package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/airbnblite/airbot/internal/middleware"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// decode reads and validates a request body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := middleware.DecodeJSON(w, r, dst)
	if err == nil {
		return true
	}
	var verr *middleware.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message)
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
