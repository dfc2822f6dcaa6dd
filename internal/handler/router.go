package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/boddenberg/monthly-statement/internal/infra/observability"
	"github.com/boddenberg/monthly-statement/internal/infra/resilience"
	"github.com/boddenberg/monthly-statement/internal/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// runner, replays and limiter may be nil. Without a runner the statement
// routes answer 503; without a limiter runs are not capped.
func NewRouter(runner port.StatementRunner, replays port.Cache[any], limiter *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(runner))
	r.Get("/readyz", readyzHandler(runner))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/summary", metricsSummaryHandler(metrics))

		r.Group(func(r chi.Router) {
			r.Use(requireRunner(runner))

			// GET /v1/fees: active fee schedule
			r.Get("/fees", feesHandler(runner))

			r.Group(func(r chi.Router) {
				r.Use(limitRuns(limiter, logger))

				// POST /v1/statements: full savings + checking session
				r.Post("/statements", sessionHandler(runner, replays, logger))
				// POST /v1/statements/{kind}: one account
				r.Post("/statements/{kind}", statementHandler(runner, replays, logger))
			})
		})
	})

	return r
}

func requireRunner(runner port.StatementRunner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if runner == nil {
				writeError(w, http.StatusServiceUnavailable, "statement service unavailable")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limitRuns holds a bulkhead slot for the duration of each statement run.
func limitRuns(limiter *resilience.Bulkhead, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.Acquire(r.Context()); err != nil {
				logger.Warn("statement run rejected",
					zap.String("path", r.URL.Path),
					zap.Int("in_flight", limiter.InFlight()),
					zap.Error(err),
				)
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusServiceUnavailable, "too many statement runs in progress")
				return
			}
			defer limiter.Release()
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(runner port.StatementRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		engine := domain.ServiceHealth{Name: "statement-engine", Status: "healthy", LastChecked: now}
		if runner == nil {
			engine.Status = "unavailable"
		}
		services := []domain.ServiceHealth{
			{Name: "http-api", Status: "healthy", LastChecked: now},
			engine,
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
			}
		}
		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler(runner port.StatementRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Summary())
	}
}
