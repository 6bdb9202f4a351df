package realtime_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/First8Marketing/first8marketing-umami-sub001/modules/realtime"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/ratelimit"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/tenant"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T, limiter *ratelimit.Limiter) (*httptest.Server, *notifications.Service) {
	t.Helper()

	svc, err := notifications.NewService(notifications.NewMemoryStorage(), notifications.NewMemoryPreferenceStore(), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(realtime.Router(realtime.RouterOptions{
		Notifications: svc,
		Limiter:       limiter,
	}))
	t.Cleanup(srv.Close)
	return srv, svc
}

func do(t *testing.T, method, url, tenantID, userID string, body string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if tenantID != "" {
		req.Header.Set(tenant.HeaderTenantID, tenantID)
	}
	if userID != "" {
		req.Header.Set(tenant.HeaderUserID, userID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestRouter_RequiresTenant(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, nil)
	resp, _ := do(t, http.MethodGet, srv.URL+"/notifications", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ListNotifications(t *testing.T) {
	t.Parallel()

	srv, svc := newServer(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, notifications.CreateParams{TenantID: "t1", Title: "hello"})
	require.NoError(t, err)

	resp, env := do(t, http.MethodGet, srv.URL+"/notifications", "t1", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, env.Error)

	var rows []notifications.Notification
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "hello", rows[0].Title)
	assert.NotContains(t, env.Meta, "degraded")
}

func TestRouter_ListValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, nil)

	resp, env := do(t, http.MethodGet, srv.URL+"/notifications?limit=abc", "t1", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)

	resp, _ = do(t, http.MethodGet, srv.URL+"/notifications?since=yesterday", "t1", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_UnreadCount(t *testing.T) {
	t.Parallel()

	srv, svc := newServer(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, notifications.CreateParams{TenantID: "t1", Title: fmt.Sprintf("n%d", i)})
		require.NoError(t, err)
	}

	resp, env := do(t, http.MethodGet, srv.URL+"/notifications/unread-count", "t1", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data["count"])
}

func TestRouter_MarkReadAndDismiss(t *testing.T) {
	t.Parallel()

	srv, svc := newServer(t, nil)
	ctx := context.Background()

	n, err := svc.Create(ctx, notifications.CreateParams{TenantID: "t1", Title: "todo"})
	require.NoError(t, err)

	resp, _ := do(t, http.MethodPost, srv.URL+"/notifications/"+n.ID+"/read", "t1", "u1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/notifications/"+n.ID+"/dismiss", "t1", "u1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, env := do(t, http.MethodPost, srv.URL+"/notifications/missing/read", "t1", "u1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestRouter_MarkAllRead(t *testing.T) {
	t.Parallel()

	srv, svc := newServer(t, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, notifications.CreateParams{TenantID: "t1", Title: fmt.Sprintf("n%d", i)})
		require.NoError(t, err)
	}

	resp, _ := do(t, http.MethodPost, srv.URL+"/notifications/read-all", "t1", "u1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, env := do(t, http.MethodGet, srv.URL+"/notifications/unread-count", "t1", "u1", "")
	var data map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 0, data["count"])
}

func TestRouter_Preferences(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, nil)

	resp, env := do(t, http.MethodGet, srv.URL+"/preferences", "t1", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prefs notifications.Preferences
	require.NoError(t, json.Unmarshal(env.Data, &prefs))
	assert.True(t, prefs.Enabled)
	assert.False(t, prefs.Priorities[notifications.PriorityLow])

	prefs.Enabled = false
	raw, err := json.Marshal(prefs)
	require.NoError(t, err)
	resp, _ = do(t, http.MethodPut, srv.URL+"/preferences", "t1", "u1", string(raw))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, env = do(t, http.MethodGet, srv.URL+"/preferences", "t1", "u1", "")
	require.NoError(t, json.Unmarshal(env.Data, &prefs))
	assert.False(t, prefs.Enabled)

	resp, env = do(t, http.MethodPut, srv.URL+"/preferences", "t1", "u1", "{broken")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)

	// Preferences are user-scoped; the team view has none.
	resp, _ = do(t, http.MethodGet, srv.URL+"/preferences", "t1", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_RateLimiting(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.New(ratelimit.NewMemoryStore())
	require.NoError(t, err)
	srv, _ := newServer(t, limiter)

	var last *http.Response
	for i := 0; i < 31; i++ {
		last, _ = do(t, http.MethodPost, srv.URL+"/notifications/read-all", "t1", "u1", "")
	}

	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.Equal(t, "30", last.Header.Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, last.Header.Get("X-RateLimit-Reset"))
	assert.NotEmpty(t, last.Header.Get("Retry-After"))
}
