package middleware

import (
	"net/http"

	"tienda-api/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimit sheds requests beyond a token bucket of rps with the given burst.
// The bucket is shared by every caller of the wrapped routes.
func RateLimit(rps float64, burst int, logger zerolog.Logger) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("rate limit exceeded")
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "too many requests", model.ErrCodeRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
