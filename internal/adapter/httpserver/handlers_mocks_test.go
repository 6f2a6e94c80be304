package httpserver

import (
	"context"
	"testing"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
	"github.com/AdityaP700/Sentimatrix/internal/platform/config"
	"github.com/labstack/echo/v4"
)

type mockAppService struct {
	createEmailFn    func(ctx context.Context, in domain.NewEmail) (*domain.Email, error)
	getEmailFn       func(ctx context.Context, rawID string) (*domain.Email, error)
	listEmailsFn     func(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error)
	analyzeBatchFn   func(ctx context.Context, ids []string) ([]domain.AnalysisResult, error)
	cacheHealthFn    func(ctx context.Context) domain.CacheHealth
	dashboardStatsFn func(ctx context.Context) (domain.DashboardStats, error)
	sentimentTrendFn func(ctx context.Context, period string) ([]domain.TrendPoint, error)
}

func (m *mockAppService) CreateEmail(ctx context.Context, in domain.NewEmail) (*domain.Email, error) {
	if m.createEmailFn != nil {
		return m.createEmailFn(ctx, in)
	}
	return &domain.Email{}, nil
}

func (m *mockAppService) GetEmail(ctx context.Context, rawID string) (*domain.Email, error) {
	if m.getEmailFn != nil {
		return m.getEmailFn(ctx, rawID)
	}
	return &domain.Email{}, nil
}

func (m *mockAppService) ListEmails(ctx context.Context, filter domain.EmailFilter) ([]domain.Email, error) {
	if m.listEmailsFn != nil {
		return m.listEmailsFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockAppService) AnalyzeBatch(ctx context.Context, ids []string) ([]domain.AnalysisResult, error) {
	if m.analyzeBatchFn != nil {
		return m.analyzeBatchFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockAppService) CacheHealth(ctx context.Context) domain.CacheHealth {
	if m.cacheHealthFn != nil {
		return m.cacheHealthFn(ctx)
	}
	return domain.CacheHealth{Healthy: true, Backend: "memory"}
}

func (m *mockAppService) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	if m.dashboardStatsFn != nil {
		return m.dashboardStatsFn(ctx)
	}
	return domain.DashboardStats{}, nil
}

func (m *mockAppService) SentimentTrend(ctx context.Context, period string) ([]domain.TrendPoint, error) {
	if m.sentimentTrendFn != nil {
		return m.sentimentTrendFn(ctx, period)
	}
	return nil, nil
}

// --- Test helpers ---

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		AnalyzeRateLimit: 100,
		AnalyzeRateBurst: 100,
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo:   echo.New(),
		config: testConfig(),
		app:    app,
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withConfig(cfg *config.Config) func(*Server) {
	return func(s *Server) {
		s.config = cfg
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}
