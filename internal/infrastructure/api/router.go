package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joacominatel/platewise/internal/application"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
	"github.com/joacominatel/platewise/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for route registration.
type RouterConfig struct {
	LogMealUseCase *application.LogMealUseCase
	Insights       InsightUseCases
	TokenValidator TokenValidator
	ReadyChecks    map[string]Pinger
	Logger         *logging.Logger
	Metrics        *metrics.Metrics
}

// RegisterRoutes sets up all API routes on the server.
func RegisterRoutes(e *echo.Echo, config RouterConfig) {
	// prometheus metrics endpoint (no auth, standard scraping path)
	if config.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
			config.Metrics.Registry,
			promhttp.HandlerOpts{
				Registry:          config.Metrics.Registry,
				EnableOpenMetrics: true,
			},
		)))

		// apply metrics middleware to all routes
		e.Use(metrics.Middleware(config.Metrics))
	}

	// health endpoints (no auth required)
	NewHealthHandler(config.ReadyChecks).RegisterRoutes(e)

	// every v1 route needs a bearer token
	v1 := e.Group("/api/v1", JWTAuthMiddleware(AuthConfig{
		Validator: config.TokenValidator,
		Logger:    config.Logger,
	}))

	if config.LogMealUseCase != nil {
		NewMealHandler(config.LogMealUseCase).RegisterRoutes(v1)
	}
	NewInsightsHandler(config.Insights).RegisterRoutes(v1)

	config.Logger.Info("api routes registered",
		"version", "v1",
		"health_endpoints", []string{"/health", "/ready"},
		"metrics_enabled", config.Metrics != nil,
		"api_prefix", "/api/v1",
	)
}
