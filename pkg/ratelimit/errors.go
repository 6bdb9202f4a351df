package ratelimit

import "errors"

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrKeyRequired       = errors.New("key is required")
	ErrStoreRequired     = errors.New("store is required")
	ErrInvalidPolicy     = errors.New("invalid rate limit policy")
)
