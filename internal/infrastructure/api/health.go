package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const serviceName = "platewise"

// readyTimeout bounds each dependency check of the readiness probe.
const readyTimeout = 2 * time.Second

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a handler; deps are checked by name on /ready.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// RegisterRoutes registers health check endpoints.
// these are public and don't require authentication.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

// Health returns the basic health status.
// used for liveness probes.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
	})
}

// Ready pings every dependency. any failure makes the service not ready.
func (h *HealthHandler) Ready(c echo.Context) error {
	checks := make(map[string]string, len(h.deps))
	status, code := "ready", http.StatusOK

	for name, dep := range h.deps {
		ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
		err := dep.Ping(ctx)
		cancel()

		if err != nil {
			checks[name] = err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	return c.JSON(code, HealthResponse{
		Status:  status,
		Service: serviceName,
		Checks:  checks,
	})
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
