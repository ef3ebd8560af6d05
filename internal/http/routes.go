package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/target/mmk-queue-monitor/internal/observability/metrics"
	"github.com/target/mmk-queue-monitor/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs    *service.JobSearchService
	Workers *service.WorkerService
	// Optional: cache health for /readyz
	Cache HealthChecker
	// Optional: serves /metrics and records request metrics when set
	Metrics *metrics.Recorder
	// Location interprets pushed date ranges. Nil means time.Local.
	Location *time.Location
	Logger   *slog.Logger // Logger for access logs and HTTP errors (optional)
}

// NewRouter creates the HTTP router with request id, logging, metrics and recovery middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs, Location: services.Location, Metrics: services.Metrics})
	registerWorkerRoutes(mux, &WorkerHandlers{Svc: services.Workers, Metrics: services.Metrics})
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Cache))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics.Handler())
	}

	return Chain(mux,
		RequestID(logger),
		Logging(logger),
		Instrument(services.Metrics),
		Recover(logger),
	)
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	if h.Svc == nil {
		return
	}
	mux.HandleFunc("GET /api/jobs", h.Search)
	mux.HandleFunc("GET /api/jobs/classes", h.Classes)
	mux.HandleFunc("GET /api/jobs/senders", h.Senders)
	mux.HandleFunc("GET /api/jobs/filter", h.FilterOptions)
	mux.HandleFunc("GET /api/jobs/{id}", h.Get)
	mux.HandleFunc("POST /api/jobs/{id}/stop", h.Stop)
}

func registerWorkerRoutes(mux *http.ServeMux, h *WorkerHandlers) {
	if h.Svc == nil {
		return
	}
	mux.HandleFunc("GET /api/workers", h.List)
	mux.HandleFunc("GET /api/workers/{id}", h.Get)
	mux.HandleFunc("POST /api/workers/{id}/stop", h.Stop)
}
