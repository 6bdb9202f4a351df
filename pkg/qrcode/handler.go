package qrcode

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
)

var (
	// ErrSessionIDRequired is returned when the session ID is empty.
	ErrSessionIDRequired = errors.New("session id is required")
	// ErrStoreRequired is returned when a Handler is built without a store.
	ErrStoreRequired = errors.New("token store is required")
)

// Handler manages the lifecycle of session-bootstrap QR tokens.
type Handler struct {
	store TokenStore
	size  int
	log   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger used by the handler.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithImageSize overrides the rendered PNG size in pixels.
func WithImageSize(size int) HandlerOption {
	return func(h *Handler) {
		if size > 0 {
			h.size = size
		}
	}
}

// NewHandler creates a Handler over the given token store.
func NewHandler(store TokenStore, opts ...HandlerOption) (*Handler, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	h := &Handler{
		store: store,
		size:  defaultSize,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Store renders the payload and writes a fresh token for the session.
// Any previous token for the session is replaced; rendering failure is
// fatal to the call.
func (h *Handler) Store(ctx context.Context, sessionID, payload string) (*Token, error) {
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	image, err := GenerateBase64Image(payload, h.size)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	token := &Token{
		SessionID:   sessionID,
		Payload:     payload,
		Image:       image,
		GeneratedAt: now,
		ExpiresAt:   now.Add(TokenTTL),
	}

	if err := h.store.Set(ctx, token, TokenTTL); err != nil {
		return nil, err
	}
	return token, nil
}

// Get returns the live token for the session, or nil when none exists.
// A token whose recorded expiry has passed is treated as absent and
// removed, tolerating clock skew between this process and the store's
// own TTL eviction.
func (h *Handler) Get(ctx context.Context, sessionID string) (*Token, error) {
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	token, err := h.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}

	if token.Expired() {
		if err := h.store.Delete(ctx, sessionID); err != nil {
			h.log.LogAttrs(ctx, slog.LevelWarn, "failed to delete expired qr token",
				logger.SessionID(sessionID),
				logger.Error(err),
			)
		}
		return nil, nil
	}

	return token, nil
}

// Delete removes the session's token.
func (h *Handler) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	return h.store.Delete(ctx, sessionID)
}

// Refresh replaces the session's token with one rendered from a new
// payload. Delete-then-store is not atomic: a reader racing the refresh
// may briefly observe no token, which the polling handshake flow absorbs
// by re-fetching.
func (h *Handler) Refresh(ctx context.Context, sessionID, payload string) (*Token, error) {
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	if err := h.store.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	return h.Store(ctx, sessionID, payload)
}

// TTL returns the remaining lifetime of the session's token in whole
// seconds, and false when no live token exists.
func (h *Handler) TTL(ctx context.Context, sessionID string) (int64, bool, error) {
	if sessionID == "" {
		return 0, false, ErrSessionIDRequired
	}

	ttl, ok, err := h.store.TTL(ctx, sessionID)
	if err != nil || !ok {
		return 0, false, err
	}
	if ttl <= 0 {
		return 0, false, nil
	}
	return int64(ttl.Seconds()), true, nil
}
