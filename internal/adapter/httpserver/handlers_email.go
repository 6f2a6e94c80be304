package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/AdityaP700/Sentimatrix/internal/domain"
	apperrors "github.com/AdityaP700/Sentimatrix/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

type createEmailRequest struct {
	Subject  string     `json:"subject" validate:"max=998"`
	Body     string     `json:"body" validate:"required"`
	Sender   string     `json:"sender" validate:"required,max=320"`
	Receiver string     `json:"receiver" validate:"required,max=320"`
	Time     *time.Time `json:"time" validate:"required"`
}

type analyzeRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

type emailResponse struct {
	ID             string     `json:"id"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
	Sender         string     `json:"sender"`
	Receiver       string     `json:"receiver"`
	Time           time.Time  `json:"time"`
	CreatedAt      time.Time  `json:"created_at"`
	SentimentScore *float64   `json:"sentiment_score"`
	Band           string     `json:"band,omitempty"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`
}

type analysisItemResponse struct {
	ID             string   `json:"id"`
	SentimentScore *float64 `json:"sentiment_score"`
	Band           string   `json:"band,omitempty"`
	Status         string   `json:"status"`
	Error          string   `json:"error,omitempty"`
}

type analyzeResponse struct {
	Results []analysisItemResponse `json:"results"`
}

func (s *Server) registerEmailRoutes() {
	s.echo.POST("/api/emails", s.handleCreateEmail)
	s.echo.GET("/api/emails", s.handleListEmails)
	s.echo.GET("/api/emails/:id", s.handleGetEmail)

	limiter := newRateLimiter(s.config.AnalyzeRateLimit, s.config.AnalyzeRateBurst)
	s.echo.POST("/api/emails/analyze", s.handleAnalyze, limiter)
}

func (s *Server) handleCreateEmail(c echo.Context) error {
	var req createEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := validateRequest(&req); err != nil {
		return err
	}

	email, err := s.app.CreateEmail(c.Request().Context(), domain.NewEmail{
		Subject:  req.Subject,
		Body:     req.Body,
		Sender:   req.Sender,
		Receiver: req.Receiver,
		SentAt:   *req.Time,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/emails/"+email.ID.String())
	if err := c.JSON(http.StatusCreated, toEmailResponse(email)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetEmail(c echo.Context) error {
	email, err := s.app.GetEmail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, toEmailResponse(email)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListEmails(c echo.Context) error {
	filter, err := parseEmailFilter(c)
	if err != nil {
		return err
	}

	emails, err := s.app.ListEmails(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	response := make([]emailResponse, len(emails))
	for i := range emails {
		response[i] = toEmailResponse(&emails[i])
	}
	if err := c.JSON(http.StatusOK, map[string]any{"emails": response, "count": len(response)}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAnalyze(c echo.Context) error {
	ids, err := decodeAnalyzeIDs(c)
	if err != nil {
		return err
	}

	results, err := s.app.AnalyzeBatch(c.Request().Context(), ids)
	if err != nil {
		return err
	}

	response := analyzeResponse{Results: make([]analysisItemResponse, len(results))}
	for i, r := range results {
		item := analysisItemResponse{
			ID:             r.ID,
			SentimentScore: r.Score,
			Status:         string(r.Status),
			Error:          r.Error,
		}
		if r.Score != nil {
			item.Band = string(domain.ClassifyScore(*r.Score))
		}
		response.Results[i] = item
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// decodeAnalyzeIDs accepts either {"ids": [...]} or a bare JSON array.
func decodeAnalyzeIDs(c echo.Context) ([]string, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperrors.ValidationError("failed to read request body").WithCause(err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, apperrors.ValidationError("ids must be an array of strings").WithCause(err)
		}
		return ids, nil
	}

	var req analyzeRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, apperrors.ValidationError("invalid JSON body").WithCause(err)
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return req.IDs, nil
}

func decodeJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.ValidationError("invalid JSON body").WithCause(err)
	}
	return nil
}

func parseEmailFilter(c echo.Context) (domain.EmailFilter, error) {
	var filter domain.EmailFilter

	if raw := c.QueryParam("band"); raw != "" {
		band, ok := domain.ParseBand(raw)
		if !ok {
			return filter, apperrors.ValidationError("band must be one of: negative neutral positive").
				WithField("band", raw)
		}
		filter.Band = band
	}

	filter.Sender = c.QueryParam("sender")

	from, err := parseTimeParam(c.QueryParam("from"), false)
	if err != nil {
		return filter, apperrors.ValidationError("from must be RFC 3339 or YYYY-MM-DD").WithField("from", c.QueryParam("from"))
	}
	filter.From = from

	to, err := parseTimeParam(c.QueryParam("to"), true)
	if err != nil {
		return filter, apperrors.ValidationError("to must be RFC 3339 or YYYY-MM-DD").WithField("to", c.QueryParam("to"))
	}
	filter.To = to

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, apperrors.ValidationError("limit must be a positive integer").WithField("limit", raw)
		}
		filter.Limit = limit
	}

	return filter, nil
}

// parseTimeParam accepts RFC 3339 or a bare date. A bare date used as an
// upper bound covers the whole day.
func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func toEmailResponse(e *domain.Email) emailResponse {
	resp := emailResponse{
		ID:             e.ID.String(),
		Subject:        e.Subject,
		Body:           e.Body,
		Sender:         e.Sender,
		Receiver:       e.Receiver,
		Time:           e.SentAt,
		CreatedAt:      e.CreatedAt,
		SentimentScore: e.SentimentScore,
		AnalyzedAt:     e.AnalyzedAt,
	}
	if band, ok := e.Band(); ok {
		resp.Band = string(band)
	}
	return resp
}
