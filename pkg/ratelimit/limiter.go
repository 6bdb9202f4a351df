package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
)

// defaultStoreTimeout bounds every store round-trip so a check never
// blocks a request handler for longer than a few hundred milliseconds.
const defaultStoreTimeout = 500 * time.Millisecond

// Limiter checks requests against sliding-window budgets kept in a Store.
type Limiter struct {
	store   Store
	timeout time.Duration
	log     *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger used for degradation warnings.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithStoreTimeout overrides the per-round-trip store timeout.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// New creates a Limiter over the given store.
func New(store Store, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	l := &Limiter{
		store:   store,
		timeout: defaultStoreTimeout,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check runs one admission check for key under the given policy.
//
// The returned error reports caller mistakes only (empty key, unusable
// policy). Store faults never surface: the limiter fails open, admits the
// request, and marks the result Degraded.
func (l *Limiter) Check(ctx context.Context, key string, p Policy) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if !p.Valid() {
		return nil, ErrInvalidPolicy
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	now := time.Now()

	count, err := l.store.PruneAndCount(ctx, key, now.Add(-p.Window))
	if err != nil {
		return l.failOpen(ctx, key, p, now, err), nil
	}

	if count >= int64(p.Limit) {
		resetAt := now.Add(p.Window)
		if oldest, ok, err := l.store.OldestTimestamp(ctx, key); err == nil && ok {
			resetAt = oldest.Add(p.Window)
		}
		return &Result{
			Allowed:   false,
			Limit:     p.Limit,
			Remaining: 0,
			ResetAt:   resetAt,
		}, nil
	}

	if err := l.store.Record(ctx, key, now, p.Window); err != nil {
		return l.failOpen(ctx, key, p, now, err), nil
	}

	return &Result{
		Allowed:   true,
		Limit:     p.Limit,
		Remaining: p.Limit - int(count) - 1,
		ResetAt:   now.Add(p.Window),
	}, nil
}

// Status returns the current window occupancy without recording a request.
// Store faults degrade to a fully-available window, mirroring Check.
func (l *Limiter) Status(ctx context.Context, key string, p Policy) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if !p.Valid() {
		return nil, ErrInvalidPolicy
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	now := time.Now()

	count, err := l.store.PruneAndCount(ctx, key, now.Add(-p.Window))
	if err != nil {
		return l.failOpen(ctx, key, p, now, err), nil
	}

	remaining := p.Limit - int(count)
	return &Result{
		Allowed:   remaining > 0,
		Limit:     p.Limit,
		Remaining: max(0, remaining),
		ResetAt:   now.Add(p.Window),
	}, nil
}

// Reset clears the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	return l.store.Reset(ctx, key)
}

func (l *Limiter) failOpen(ctx context.Context, key string, p Policy, now time.Time, err error) *Result {
	l.log.LogAttrs(ctx, slog.LevelWarn, "rate limit store unreachable, failing open",
		slog.String("key", key),
		logger.Endpoint(p.Name),
		logger.Error(err),
	)
	return &Result{
		Allowed:   true,
		Limit:     p.Limit,
		Remaining: p.Limit,
		ResetAt:   now.Add(p.Window),
		Degraded:  true,
	}
}
