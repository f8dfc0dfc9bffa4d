package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"itacli/internal/config"
	"itacli/internal/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Config        *config.Config
	ITAHandler    *ITAHandler
	HealthHandler *HealthHandler
	Logger        *slog.Logger
	Tracer        trace.Tracer
	Registry      *prometheus.Registry
}

// NewRouter assembles the middleware chain and mounts all routes.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if deps.Tracer != nil {
		r.Use(middleware.Tracing(deps.Tracer))
	}
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compress(5))

	if deps.Config.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: deps.Config.Security.AllowedOrigins,
			Logger:         deps.Logger,
		}))
	}

	if deps.Config.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			deps.Config.Security.RateLimit.RPS,
			deps.Config.Security.RateLimit.Burst,
			deps.Logger,
		)
		r.Use(limiter.Handler)
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewHTTPMetrics(registry)
	r.Use(metrics.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(deps.Config.Server.OperationTimeout, deps.Logger))
		r.Mount("/ita", deps.ITAHandler.Routes())
		r.Mount("/health", deps.HealthHandler.Routes())
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
