package tenant

import "net/http"

// Header names populated by the authentication layer upstream of this core.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
)

// Middleware extracts the tenant/user identity from request headers and
// stores it in the request context. Requests without a tenant are rejected
// with 401: nothing in the realtime surface is meaningful without one.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(HeaderTenantID)
			if tenantID == "" {
				http.Error(w, "missing tenant identity", http.StatusUnauthorized)
				return
			}

			id := Identity{
				TenantID: tenantID,
				UserID:   r.Header.Get(HeaderUserID),
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
