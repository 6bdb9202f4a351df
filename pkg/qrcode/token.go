package qrcode

import (
	"context"
	"time"
)

// TokenTTL is the fixed lifetime of a session-bootstrap token.
const TokenTTL = 90 * time.Second

// Token is a live QR handshake token for one messaging session.
type Token struct {
	SessionID   string    `json:"session_id"`
	Payload     string    `json:"payload"`
	Image       string    `json:"image"` // base64 PNG data URI
	GeneratedAt time.Time `json:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the token's logical lifetime has passed,
// independent of whether the store has evicted it yet.
func (t *Token) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TokenStore persists QR tokens under the session ID with a store-level TTL.
type TokenStore interface {
	// Set writes the token, replacing any existing token for the session.
	Set(ctx context.Context, token *Token, ttl time.Duration) error

	// Get returns the stored token, or nil when none exists.
	Get(ctx context.Context, sessionID string) (*Token, error)

	// Delete removes the token. Deleting a missing token is a no-op.
	Delete(ctx context.Context, sessionID string) error

	// TTL returns the remaining store-level lifetime, and false when no
	// token exists for the session.
	TTL(ctx context.Context, sessionID string) (time.Duration, bool, error)
}
