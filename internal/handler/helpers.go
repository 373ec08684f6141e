// Package handler exposes the HTTP API. Handlers translate between JSON
// requests and the stores, mapping domain errors onto status codes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/techrodrigodados-sys/AgendaEmGrupo/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to status codes: validation errors are
// 400 with the offending field, missing records are 404.
func writeError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, model.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, "not found")
	default:
		writeErrorMsg(w, http.StatusInternalServerError, "internal error")
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
