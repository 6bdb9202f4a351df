// Package ratelimit admits or rejects API calls under per-tenant request
// budgets using a sliding-window log kept in the shared store.
//
// Each check prunes timestamps older than the window, counts the survivors,
// and either denies (with the time the window reopens) or records the
// current request. The prune-count-record sequence is deliberately not
// atomic: the store is shared across processes, so a small bounded
// over-admission under concurrent checks is accepted instead of
// process-local locking that would not help anyway.
//
// The limiter fails open: when the store is unreachable the request is
// allowed and the result is marked Degraded. A broken rate limiter must
// never make the product unusable.
package ratelimit
