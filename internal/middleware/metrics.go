package middleware

import (
	"net/http"
	"time"

	"github.com/penshort/user-service/internal/metrics"
)

// Metrics records duration and status of every request against the raw
// request path. It runs for error responses and recovered panics alike.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			recorder.ObserveRequest(r.Method, r.URL.Path, wrapped.status, time.Since(start))
		})
	}
}
