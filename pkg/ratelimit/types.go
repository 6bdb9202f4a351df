package ratelimit

import (
	"context"
	"time"
)

// Policy is a named request budget applied to an endpoint class.
type Policy struct {
	// Name identifies the endpoint class the policy covers.
	Name string

	// Limit is the maximum number of admitted requests per window.
	Limit int

	// Window is the length of the rolling window.
	Window time.Duration
}

// Valid reports whether the policy carries a usable limit and window.
func (p Policy) Valid() bool {
	return p.Limit > 0 && p.Window > 0
}

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is admitted.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is the time when the rate limit window reopens.
	ResetAt time.Time

	// Degraded is set when the store was unreachable and the limiter
	// failed open. The request is admitted but nothing was recorded.
	Degraded bool
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was admitted.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the sliding-window log kept in the shared store. All methods
// must be safe for concurrent use across processes.
type Store interface {
	// PruneAndCount removes entries recorded before windowStart and
	// returns the number of surviving entries for key.
	PruneAndCount(ctx context.Context, key string, windowStart time.Time) (int64, error)

	// Record appends a request timestamp for key and refreshes the key's
	// store-level expiry to window.
	Record(ctx context.Context, key string, ts time.Time, window time.Duration) error

	// OldestTimestamp returns the oldest surviving request timestamp for
	// key, and false when no entries exist.
	OldestTimestamp(ctx context.Context, key string) (time.Time, bool, error)

	// Reset removes all recorded timestamps for key.
	Reset(ctx context.Context, key string) error
}
