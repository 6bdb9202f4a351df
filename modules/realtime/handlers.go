package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/tenant"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type handlers struct {
	svc *notifications.Service
	log *slog.Logger
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())
	opts, err := parseListOptions(r, id.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorDetail{Code: "validation_error", Message: err.Error()},
		})
		return
	}

	res, err := h.svc.List(r.Context(), id.TenantID, opts)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	body := response{Data: res.Notifications}
	if res.Degraded {
		body.Meta = map[string]any{"degraded": true}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())

	res, err := h.svc.UnreadCount(r.Context(), id.TenantID, id.UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	body := response{Data: map[string]any{"count": res.Count}}
	if res.Degraded {
		body.Meta = map[string]any{"degraded": true}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) markRead(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())

	if err := h.svc.MarkAsRead(r.Context(), id.TenantID, chi.URLParam(r, "id"), id.UserID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) markAllRead(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())

	if err := h.svc.MarkAllAsRead(r.Context(), id.TenantID, id.UserID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) dismiss(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())

	if err := h.svc.Dismiss(r.Context(), id.TenantID, chi.URLParam(r, "id"), id.UserID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())

	prefs, err := h.svc.GetPreferences(r.Context(), id.TenantID, id.UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: prefs})
}

func (h *handlers) updatePreferences(w http.ResponseWriter, r *http.Request) {
	id := tenant.MustFromContext(r.Context())

	var prefs notifications.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorDetail{Code: "validation_error", Message: "invalid preferences payload"},
		})
		return
	}

	if err := h.svc.UpdatePreferences(r.Context(), id.TenantID, id.UserID, prefs); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: prefs})
}

func errInvalidQuery(param string) error {
	return fmt.Errorf("invalid query parameter %q", param)
}

func parseListOptions(r *http.Request, userID string) (notifications.ListOptions, error) {
	q := r.URL.Query()
	opts := notifications.ListOptions{
		UserID: userID,
		Limit:  defaultListLimit,
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return opts, errInvalidQuery("limit")
		}
		opts.Limit = min(limit, maxListLimit)
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return opts, errInvalidQuery("offset")
		}
		opts.Offset = offset
	}
	if raw := q.Get("unreadOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errInvalidQuery("unreadOnly")
		}
		opts.UnreadOnly = v
	}
	if raw := q.Get("includeDismissed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errInvalidQuery("includeDismissed")
		}
		opts.IncludeDismissed = v
	}
	if raw := q.Get("priority"); raw != "" {
		opts.Priority = notifications.Priority(raw)
	}
	if raw := q.Get("category"); raw != "" {
		opts.Category = notifications.Category(raw)
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return opts, errInvalidQuery("since")
		}
		opts.Since = &since
	}

	return opts, nil
}
