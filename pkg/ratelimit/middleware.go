package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/tenant"
)

// Middleware enforces the named budget for one endpoint class, keyed by
// the tenant identity in the request context. Requests without a tenant
// pass through untouched; admission for them is someone else's problem.
//
// Response headers follow the platform contract: X-RateLimit-Limit,
// X-RateLimit-Remaining, and X-RateLimit-Reset as an RFC 3339 timestamp.
func Middleware(limiter *Limiter, endpoint string) func(http.Handler) http.Handler {
	policy := PolicyFor(endpoint)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := tenant.FromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Check(r.Context(), Key(id.TenantID, endpoint), policy)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter().Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
