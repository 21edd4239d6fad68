package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/habitutor/habitutor-api/internal/platform/logger"
)

// KeyFunc derives the rate-limit key of a request.
type KeyFunc func(r *http.Request) string

// ByRemoteIP keys requests by client address without the port.
func ByRemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429 Too Many Requests and a
// Retry-After header of one window.
func Middleware(store Store, retryAfter time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ByRemoteIP
	}
	seconds := strconv.Itoa(int(retryAfter.Round(time.Second) / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if store.Allow(k) {
				next.ServeHTTP(w, r)
				return
			}

			logger.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("key", k),
				slog.String("path", r.URL.Path))

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", seconds)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests"}` + "\n"))
		})
	}
}
