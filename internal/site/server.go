package site

import (
	"github.com/JailtonJunior94/aeon-kit/internal/config"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpserver"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

const corsMethods = "GET, POST, OPTIONS"
const corsHeaders = "Content-Type, X-Request-ID"

// NewServer assembles the HTTP server for the site API.
// A nil checks map still serves /health as always healthy.
func NewServer(cfg config.Config, logger observability.Logger, handler *Handler, gatherer prometheus.Gatherer, checks map[string]httpserver.HealthCheckFunc) httpserver.Server {
	if checks == nil {
		checks = map[string]httpserver.HealthCheckFunc{}
	}

	middlewares := []httpserver.Middleware{
		httpserver.RequestID,
		httpserver.Recovery(logger),
		httpserver.SecurityHeaders,
	}
	if cfg.CORSOrigins != "" {
		middlewares = append(middlewares, httpserver.CORS(cfg.CORSOrigins, corsMethods, corsHeaders))
	}
	middlewares = append(middlewares,
		httpserver.BodyLimit(cfg.BodyLimit),
		httpserver.Timeout(cfg.RequestTimeout, logger),
	)

	return httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithReadTimeout(cfg.ReadTimeout),
		httpserver.WithWriteTimeout(cfg.WriteTimeout),
		httpserver.WithIdleTimeout(cfg.IdleTimeout),
		httpserver.WithShutdownTimeout(cfg.ShutdownTimeout),
		httpserver.WithLogger(logger),
		httpserver.WithMiddlewares(middlewares...),
		httpserver.WithHealthChecks(checks),
		httpserver.WithMetrics(gatherer),
		httpserver.WithRoutes(handler.Routes()...),
	)
}
