package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const defaultTrendPeriod = "1W"

func (s *Server) registerDashboardRoutes() {
	s.echo.GET("/api/dashboard/stats", s.handleDashboardStats)
	s.echo.GET("/api/dashboard/trend", s.handleSentimentTrend)
}

func (s *Server) handleDashboardStats(c echo.Context) error {
	stats, err := s.app.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, stats); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleSentimentTrend(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = defaultTrendPeriod
	}

	points, err := s.app.SentimentTrend(c.Request().Context(), period)
	if err != nil {
		return err
	}

	response := map[string]any{
		"period": period,
		"points": points,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
