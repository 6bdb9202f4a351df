package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
)

// response is the JSON envelope every endpoint renders.
type response struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *errorDetail   `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps package sentinels onto the API error taxonomy.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, notifications.ErrNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorDetail{Code: "not_found", Message: "notification not found"},
		})
	case errors.Is(err, notifications.ErrTenantRequired),
		errors.Is(err, notifications.ErrUserRequired),
		errors.Is(err, notifications.ErrTitleRequired):
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorDetail{Code: "validation_error", Message: err.Error()},
		})
	default:
		log.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorDetail{Code: "internal_error", Message: "internal server error"},
		})
	}
}
