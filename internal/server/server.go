// Package server exposes the triage dashboard API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
	"github.com/fyrsmithlabs/pipetriage/internal/analyzer"
	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
	"github.com/fyrsmithlabs/pipetriage/internal/factcheck"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
	"github.com/fyrsmithlabs/pipetriage/internal/notify"
	"github.com/fyrsmithlabs/pipetriage/internal/report"
)

// FailureSource queries the orchestration platform for failed runs.
type FailureSource interface {
	FailedRuns(ctx context.Context, window time.Duration) ([]adf.PipelineRun, error)
	FailureDetails(ctx context.Context, runID string) (*adf.FailureRecord, error)
	TestConnection(ctx context.Context) error
}

// Triager produces diagnostic reports.
type Triager interface {
	Analyze(ctx context.Context, record *adf.FailureRecord) (*analyzer.DiagnosticReport, error)
	QuickAnalyze(ctx context.Context, message, pipeline string) (*analyzer.DiagnosticReport, error)
}

// Searcher runs semantic knowledge-base queries.
type Searcher interface {
	Search(ctx context.Context, message string, k int) ([]knowledge.Match, error)
}

// Mailer delivers reports.
type Mailer interface {
	Send(msg notify.Message) error
	SendTest() error
}

// Config holds server settings.
type Config struct {
	Host string
	Port int

	// LookbackHours is the default window for the failures endpoint.
	LookbackHours int
}

// Server wires the triage components behind an echo router.
type Server struct {
	echo    *echo.Echo
	config  Config
	logger  *zap.Logger
	started time.Time

	source   FailureSource
	triager  Triager
	searcher Searcher
	mailer   Mailer
	catalog  *catalog.Catalog
	builder  *report.Builder
}

// NewServer creates the dashboard server. source, searcher and mailer
// may be nil; the corresponding endpoints report 503.
func NewServer(
	cfg Config,
	triager Triager,
	source FailureSource,
	searcher Searcher,
	mailer Mailer,
	cat *catalog.Catalog,
	builder *report.Builder,
	logger *zap.Logger,
) (*Server, error) {
	if triager == nil {
		return nil, errors.New("server: triager is required")
	}
	if cat == nil {
		return nil, errors.New("server: catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LookbackHours <= 0 {
		cfg.LookbackHours = 24
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:     e,
		config:   cfg,
		logger:   logger,
		started:  time.Now(),
		source:   source,
		triager:  triager,
		searcher: searcher,
		mailer:   mailer,
		catalog:  cat,
		builder:  builder,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/failures", s.handleFailures)
	api.POST("/analyze/:run_id", s.handleAnalyze)
	api.POST("/quick-analyze", s.handleQuickAnalyze)
	api.GET("/knowledge-base", s.handleKnowledgeBase)
	api.POST("/vector-search", s.handleVectorSearch)
	api.POST("/send-report/:run_id", s.handleSendReport)
	api.POST("/send-test-email", s.handleSendTestEmail)
}

// Start runs the listener until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("dashboard server starting", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type statusResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	CatalogSize   int    `json:"catalog_size"`
	ADFConfigured bool   `json:"adf_configured"`
	ADFReachable  *bool  `json:"adf_reachable,omitempty"`
	EmailEnabled  bool   `json:"email_enabled"`
	VectorSearch  bool   `json:"vector_search_enabled"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := statusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		CatalogSize:   s.catalog.Len(),
		ADFConfigured: s.source != nil,
		EmailEnabled:  s.mailer != nil,
		VectorSearch:  s.searcher != nil,
	}
	if s.source != nil {
		reachable := s.source.TestConnection(c.Request().Context()) == nil
		resp.ADFReachable = &reachable
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFailures(c echo.Context) error {
	if s.source == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data factory not configured")
	}

	hours := s.config.LookbackHours
	if raw := c.QueryParam("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid hours parameter")
		}
		hours = parsed
	}

	runs, err := s.source.FailedRuns(c.Request().Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		s.logger.Error("listing failed runs", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "querying data factory failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"lookback_hours": hours,
		"count":          len(runs),
		"failures":       runs,
	})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	if s.source == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data factory not configured")
	}

	runID := c.Param("run_id")
	record, err := s.source.FailureDetails(c.Request().Context(), runID)
	switch {
	case errors.Is(err, adf.ErrRunNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	case errors.Is(err, adf.ErrNoError):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "run has no error to analyze")
	case err != nil:
		s.logger.Error("fetching failure details", zap.String("run_id", runID), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "querying data factory failed")
	}

	rep, err := s.triager.Analyze(c.Request().Context(), record)
	if err != nil {
		s.logger.Error("analysis failed", zap.String("run_id", runID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}
	return c.JSON(http.StatusOK, rep)
}

type quickAnalyzeRequest struct {
	ErrorMessage string `json:"error_message"`
	PipelineName string `json:"pipeline_name"`
}

func (s *Server) handleQuickAnalyze(c echo.Context) error {
	var req quickAnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ErrorMessage == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "error_message is required")
	}

	rep, err := s.triager.QuickAnalyze(c.Request().Context(), req.ErrorMessage, req.PipelineName)
	if err != nil {
		s.logger.Error("quick analysis failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}
	return c.JSON(http.StatusOK, rep)
}

func (s *Server) handleKnowledgeBase(c echo.Context) error {
	if q := c.QueryParam("search"); q != "" {
		return c.JSON(http.StatusOK, map[string]any{
			"query":   q,
			"entries": s.catalog.Search(q),
		})
	}
	if cat := c.QueryParam("category"); cat != "" {
		return c.JSON(http.StatusOK, map[string]any{
			"category": cat,
			"entries":  s.catalog.ByCategory(catalog.Category(cat)),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":      s.catalog.Len(),
		"categories": s.catalog.Categories(),
		"entries":    s.catalog.All(),
	})
}

type vectorSearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type vectorSearchHit struct {
	EntryID    string  `json:"entry_id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
}

func (s *Server) handleVectorSearch(c echo.Context) error {
	if s.searcher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vector search not available")
	}

	var req vectorSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.K <= 0 {
		req.K = 5
	}

	matches, err := s.searcher.Search(c.Request().Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("vector search failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "vector search failed")
	}

	hits := make([]vectorSearchHit, len(matches))
	for i, m := range matches {
		hits[i] = vectorSearchHit{
			EntryID:    m.Entry.ID,
			Title:      m.Entry.Title,
			Category:   string(m.Entry.Category),
			Similarity: m.Similarity,
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"matches": hits})
}

func (s *Server) handleSendReport(c echo.Context) error {
	switch {
	case s.source == nil:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data factory not configured")
	case s.mailer == nil:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "email not configured")
	case s.builder == nil:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report rendering not configured")
	}

	runID := c.Param("run_id")
	record, err := s.source.FailureDetails(c.Request().Context(), runID)
	if errors.Is(err, adf.ErrRunNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "querying data factory failed")
	}

	rep, err := s.triager.Analyze(c.Request().Context(), record)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}

	force := c.QueryParam("force") == "true"
	if !rep.ShouldSendEmail && !force {
		return c.JSON(http.StatusOK, map[string]any{
			"sent":             false,
			"reason":           "confidence below threshold",
			"confidence_score": rep.ConfidenceScore,
			"threshold":        factcheck.EmailThreshold,
		})
	}

	html, err := s.builder.HTML(rep)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "rendering report failed")
	}
	msg := notify.Message{
		Subject:  s.builder.Subject(rep),
		Text:     s.builder.Text(rep),
		HTML:     html,
		Severity: rep.Severity,
	}
	if err := s.mailer.Send(msg); err != nil {
		s.logger.Error("sending report", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "sending email failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"sent":             true,
		"confidence_score": rep.ConfidenceScore,
	})
}

func (s *Server) handleSendTestEmail(c echo.Context) error {
	if s.mailer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "email not configured")
	}
	if err := s.mailer.SendTest(); err != nil {
		s.logger.Error("sending test email", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "sending test email failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}
