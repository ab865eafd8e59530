// Package httptransport assembles the HTTP surface: the middleware chain,
// the student routes, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	"registrar/internal/student"
	"registrar/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// Config carries router-level settings. Metrics may be nil, which disables
// HTTP latency recording.
type Config struct {
	CORSOrigins []string
	Metrics     *metrics.Metrics
}

// Health reports whether the backing store is reachable.
type Health interface {
	Health(ctx context.Context) error
}

// NewRouter wires all endpoints. StripSlashes runs before routing, so
// /api/students/ and /api/students are the same route.
func NewRouter(students *student.Handler, health Health, logger *slog.Logger, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(cfg.Metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Timeout(requestTimeout))

	students.Register(r)

	r.Get("/healthz", handleHealthz(health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// healthzResponse is the body of the health endpoint in both outcomes.
type healthzResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func handleHealthz(health Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := health.Health(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthzResponse{
				Status:  "unavailable",
				Service: "registrar",
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthzResponse{
			Status:  "ok",
			Service: "registrar",
		})
	}
}
