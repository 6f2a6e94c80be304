package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdityaP700/Sentimatrix/internal/adapter/metrics"
	"github.com/AdityaP700/Sentimatrix/internal/domain"
	"github.com/AdityaP700/Sentimatrix/internal/platform/config"
	"github.com/labstack/echo/v4"
)

type appService interface {
	CreateEmail(ctx context.Context, in domain.NewEmail) (*domain.Email, error)
	GetEmail(ctx context.Context, rawID string) (*domain.Email, error)
	ListEmails(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error)
	AnalyzeBatch(ctx context.Context, ids []string) ([]domain.AnalysisResult, error)
	CacheHealth(ctx context.Context) domain.CacheHealth
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	SentimentTrend(ctx context.Context, period string) ([]domain.TrendPoint, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app            appService
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer builds the HTTP surface. httpMetrics and metricsHandler may be nil.
func NewServer(cfg *config.Config, app appService, httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second

	srv := &Server{
		echo:           e,
		config:         cfg,
		app:            app,
		httpMetrics:    httpMetrics,
		metricsHandler: metricsHandler,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
