package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header is the canonical request-ID header name.
const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

// Client-supplied IDs are untrusted input and end up in logs; anything
// outside this shape is replaced.
var validIDRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Middleware ensures every request carries a correlation ID, reusing a
// valid client-supplied one or generating a UUID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if !isValidRequestID(requestID) {
			requestID = uuid.New().String()
		}
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), requestID)))
	})
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}
