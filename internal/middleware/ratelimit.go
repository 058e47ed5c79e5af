package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit limits requests per authenticated user, or per client IP for
// anonymous callers.
func RateLimit(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(windowLength.Seconds()))
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if userID := GetUserID(r.Context()); userID != "" {
				return "user:" + userID, nil
			}
			ip, err := httprate.KeyByIP(r)
			return "ip:" + ip, err
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","retry_after":` + retryAfter + `}`))
		}),
	)
}
