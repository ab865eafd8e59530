package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/platform/metrics"
)

// Latency records request duration per matched route. A nil metrics value
// disables recording, which keeps test routers free of the process-global
// Prometheus registry.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(r.Method, route, sw.status, time.Since(start))
		})
	}
}
