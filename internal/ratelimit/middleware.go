package ratelimit

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/model"
)

// KeyFunc extracts the rate limit key from a request.
// Returns empty string to skip rate limiting for this request.
type KeyFunc func(r *http.Request) string

// Middleware returns HTTP middleware that enforces a rate limit. scope
// prefixes the key so different endpoint groups get independent buckets.
// A nil limiter disables the check; a limiter error fails open.
func Middleware(limiter Limiter, scope string, keyFunc KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), scope+":"+key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeRateLimitError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitError writes a 429 using the standard error envelope.
func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.ClientError{
		Error:   "Client Side Error",
		Message: "too many requests",
		Type:    "RateLimited",
	})
}

// IPKeyFunc extracts the client IP from the request for rate limiting.
// Uses RemoteAddr only. X-Forwarded-For is not trusted because the server
// may not be behind a reverse proxy that sanitizes the header, and any
// client can set an arbitrary value to bypass rate limiting.
func IPKeyFunc(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
