package http

import (
	"fmt"
	"net/http"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiBasePath = "/api/list"

type RouterConfig struct {
	App            *usecases.Application
	Logger         logger.Logger
	MetricsClient  metrics.Client
	Config         *config.ServiceConfig
	RateLimitStore throttled.GCRAStoreCtx
	BackendName    string
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(chimiddleware.Timeout(cfg.Config.HTTPServer.WriteTimeout))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS([]string{"*"}))

	if cfg.Config.Telemetry.Traces.Enabled {
		router.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, cfg.Config.Telemetry.ServiceName)
		})
		cfg.Logger.Info().Msg("distributed tracing enabled")
	}

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Use(middleware.Metrics(cfg.MetricsClient))
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Config.Logging.AccessLog.Enabled {
		router.Use(middleware.SkipHealthChecks(cfg.Config.Logging.AccessLog.LogHealthChecks))
		router.Use(middleware.AccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog))
	}

	if cfg.Config.ThrottledRateLimiting.Enabled && cfg.RateLimitStore != nil {
		rateLimiter, err := middleware.ThrottledRateLimiting(cfg.Config.ThrottledRateLimiting, cfg.RateLimitStore, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating rate limiter: %w", err)
		}

		router.Use(rateLimiter)
	}

	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	listHandler := handlers.NewListHandler(cfg.App, cfg.Config.HTTPServer.MaxBodyBytes)
	healthHandler := handlers.NewHealthHandler(cfg.App)

	router.Get("/", handlers.Index(cfg.BackendName))

	router.Route(apiBasePath, func(r chi.Router) {
		r.Get("/", listHandler.GetList)
		r.Post("/", listHandler.CreateRecord)
		r.Put("/", listHandler.ReplaceList)
		r.Get("/active", listHandler.GetActiveList)
		r.Put("/{index}", listHandler.UpdateRecord)
		r.Delete("/{index}", listHandler.DeleteRecord)
		r.Put("/{index}/toggle", listHandler.ToggleRecord)
	})

	router.Get("/health/liveness", healthHandler.Liveness)
	router.Get("/health/readiness", healthHandler.Readiness)

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Handle("/metrics", cfg.MetricsClient.Handler())
	}

	return router, nil
}
