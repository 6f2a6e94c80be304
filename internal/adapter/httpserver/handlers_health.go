package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AdityaP700/Sentimatrix/internal/platform/version"
	"github.com/labstack/echo/v4"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named health check function.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type cacheHealthResponse struct {
	Healthy      bool    `json:"healthy"`
	Backend      string  `json:"backend"`
	LatencyMS    float64 `json:"latency_ms"`
	BreakerState string  `json:"breaker_state,omitempty"`
	Error        string  `json:"error,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/api/health/cache", s.handleCacheHealth)
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()

	response := map[string]any{
		"status": "ok",
		"uptime": uptime,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}

	return nil
}

// handleReadiness only consults the registered checks (the record store).
// A cache outage is degraded mode and must not pull the instance out of rotation.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

// runHealthChecks runs every check and reports each result. The first
// failure decides the 503 body's failed_check.
func (s *Server) runHealthChecks(c echo.Context, ctx context.Context) error {
	results := make(map[string]string, len(s.healthChecks))
	var failed *HealthCheck
	var failure error

	for i, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			results[hc.Name] = err.Error()
			if failed == nil {
				failed, failure = &s.healthChecks[i], err
			}
			continue
		}
		results[hc.Name] = "ok"
	}

	status := http.StatusOK
	response := map[string]any{"status": "ready", "checks": results}
	if failed != nil {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
		response["failed_check"] = failed.Name
		response["error"] = failure.Error()
	}

	if err := c.JSON(status, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCacheHealth(c echo.Context) error {
	health := s.app.CacheHealth(c.Request().Context())

	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}

	response := cacheHealthResponse{
		Healthy:      health.Healthy,
		Backend:      health.Backend,
		LatencyMS:    float64(health.Latency.Microseconds()) / 1000,
		BreakerState: health.BreakerState,
		Error:        health.Error,
	}
	if err := c.JSON(status, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
