// Package tenant carries the tenant/user identity through request context.
// The identity is produced by the application's auth layer and consumed
// here as opaque identifiers; every rate limit, notification, and broadcast
// is scoped by it.
package tenant

import (
	"context"
	"log/slog"
)

// Identity is the tenant/user pair a request acts on behalf of.
// UserID is empty for team-scoped operations.
type Identity struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id,omitempty"`
}

type contextKey struct{}

// WithIdentity adds an identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the identity from the context.
// Returns a zero Identity and false if none is set.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// MustFromContext retrieves the identity from the context and panics if
// none is set. Use only in handlers mounted behind the identity middleware.
func MustFromContext(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no identity in context")
	}
	return id
}

// LoggerExtractor returns a logger context extractor that records the
// tenant ID on every log line written with a request context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := FromContext(ctx); ok && id.TenantID != "" {
			return slog.String("tenant_id", id.TenantID), true
		}
		return slog.Attr{}, false
	}
}
