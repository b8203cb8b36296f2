package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
	"github.com/fyrsmithlabs/pipetriage/internal/analyzer"
	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
	"github.com/fyrsmithlabs/pipetriage/internal/notify"
	"github.com/fyrsmithlabs/pipetriage/internal/report"
)

type stubSource struct {
	runs    []adf.PipelineRun
	runsErr error

	record    *adf.FailureRecord
	recordErr error

	lastWindow time.Duration
	connErr    error
}

func (s *stubSource) FailedRuns(_ context.Context, window time.Duration) ([]adf.PipelineRun, error) {
	s.lastWindow = window
	return s.runs, s.runsErr
}

func (s *stubSource) FailureDetails(_ context.Context, _ string) (*adf.FailureRecord, error) {
	return s.record, s.recordErr
}

func (s *stubSource) TestConnection(_ context.Context) error { return s.connErr }

type stubTriager struct {
	report *analyzer.DiagnosticReport
	err    error

	lastMessage  string
	lastPipeline string
}

func (s *stubTriager) Analyze(_ context.Context, _ *adf.FailureRecord) (*analyzer.DiagnosticReport, error) {
	return s.report, s.err
}

func (s *stubTriager) QuickAnalyze(_ context.Context, message, pipeline string) (*analyzer.DiagnosticReport, error) {
	s.lastMessage = message
	s.lastPipeline = pipeline
	return s.report, s.err
}

type stubSearcher struct {
	matches []knowledge.Match
	err     error
	lastK   int
}

func (s *stubSearcher) Search(_ context.Context, _ string, k int) ([]knowledge.Match, error) {
	s.lastK = k
	return s.matches, s.err
}

type stubMailer struct {
	sent     []notify.Message
	sendErr  error
	testSent bool
}

func (s *stubMailer) Send(msg notify.Message) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *stubMailer) SendTest() error {
	s.testSent = true
	return nil
}

type option func(*fixture)

type fixture struct {
	source   *stubSource
	triager  *stubTriager
	searcher *stubSearcher
	mailer   *stubMailer

	noSource   bool
	noSearcher bool
	noMailer   bool
}

func withoutSource(f *fixture)   { f.noSource = true }
func withoutSearcher(f *fixture) { f.noSearcher = true }
func withoutMailer(f *fixture)   { f.noMailer = true }

func newTestServer(t *testing.T, opts ...option) (*Server, *fixture) {
	t.Helper()

	f := &fixture{
		source:   &stubSource{},
		triager:  &stubTriager{},
		searcher: &stubSearcher{},
		mailer:   &stubMailer{},
	}
	for _, opt := range opts {
		opt(f)
	}

	builder, err := report.NewBuilder(report.PortalConfig{
		SubscriptionID: "sub",
		ResourceGroup:  "rg",
		FactoryName:    "df",
	}, zap.NewNop())
	require.NoError(t, err)

	var (
		source   FailureSource
		searcher Searcher
		mailer   Mailer
	)
	if !f.noSource {
		source = f.source
	}
	if !f.noSearcher {
		searcher = f.searcher
	}
	if !f.noMailer {
		mailer = f.mailer
	}

	srv, err := NewServer(Config{Host: "127.0.0.1", Port: 0, LookbackHours: 24},
		f.triager, source, searcher, mailer,
		catalog.Default(zap.NewNop()), builder, zap.NewNop())
	require.NoError(t, err)
	return srv, f
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func sampleReport() *analyzer.DiagnosticReport {
	return &analyzer.DiagnosticReport{
		ReportID:        "r-1",
		PipelineName:    "nightly-load",
		RunID:           "run-1",
		RawErrorMessage: "boom",
		Category:        "connectivity",
		Severity:        "high",
		RootCause:       "network blip",
		ConfidenceScore: 0.9,
		ConfidenceLevel: "high",
		ShouldSendEmail: true,
	}
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(Config{}, nil, nil, nil, nil, catalog.Default(zap.NewNop()), nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewServer(Config{}, &stubTriager{}, nil, nil, nil, nil, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.ADFConfigured)
	assert.True(t, resp.EmailEnabled)
	assert.True(t, resp.VectorSearch)
	require.NotNil(t, resp.ADFReachable)
	assert.True(t, *resp.ADFReachable)
	assert.Greater(t, resp.CatalogSize, 20)
}

func TestStatusWithoutOptionalDeps(t *testing.T) {
	srv, _ := newTestServer(t, withoutSource, withoutSearcher, withoutMailer)
	rec := doRequest(t, srv, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.ADFConfigured)
	assert.Nil(t, resp.ADFReachable)
	assert.False(t, resp.EmailEnabled)
	assert.False(t, resp.VectorSearch)
}

func TestFailuresUsesLookbackParam(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.runs = []adf.PipelineRun{{RunID: "run-1", PipelineName: "p"}}

	rec := doRequest(t, srv, http.MethodGet, "/api/failures?hours=6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6*time.Hour, f.source.lastWindow)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp["count"])
	assert.EqualValues(t, 6, resp["lookback_hours"])
}

func TestFailuresDefaultsLookback(t *testing.T) {
	srv, f := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/failures", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24*time.Hour, f.source.lastWindow)
}

func TestFailuresRejectsBadHours(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/failures?hours=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailuresWithoutSource(t *testing.T) {
	srv, _ := newTestServer(t, withoutSource)
	rec := doRequest(t, srv, http.MethodGet, "/api/failures", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyze(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.record = &adf.FailureRecord{RunID: "run-1", PipelineName: "p", ErrorMessage: "boom"}
	f.triager.report = sampleReport()

	rec := doRequest(t, srv, http.MethodPost, "/api/analyze/run-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzer.DiagnosticReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "r-1", resp.ReportID)
}

func TestAnalyzeRunNotFound(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.recordErr = adf.ErrRunNotFound

	rec := doRequest(t, srv, http.MethodPost, "/api/analyze/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeRunWithoutError(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.recordErr = adf.ErrNoError

	rec := doRequest(t, srv, http.MethodPost, "/api/analyze/run-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQuickAnalyze(t *testing.T) {
	srv, f := newTestServer(t)
	f.triager.report = sampleReport()

	rec := doRequest(t, srv, http.MethodPost, "/api/quick-analyze",
		`{"error_message":"connection refused","pipeline_name":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "connection refused", f.triager.lastMessage)
	assert.Equal(t, "p1", f.triager.lastPipeline)
}

func TestQuickAnalyzeRequiresMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/quick-analyze", `{"pipeline_name":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKnowledgeBaseListing(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/knowledge-base", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count      int               `json:"count"`
		Categories []string          `json:"categories"`
		Entries    []json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, resp.Count, len(resp.Entries))
	assert.NotEmpty(t, resp.Categories)
}

func TestKnowledgeBaseSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/knowledge-base?search=deadlock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deadlock")
}

func TestVectorSearch(t *testing.T) {
	srv, f := newTestServer(t)
	cat := catalog.Default(zap.NewNop())
	entry := cat.ByID("conn_tcp_sql")
	require.NotNil(t, entry)
	f.searcher.matches = []knowledge.Match{{Entry: entry, Similarity: 0.83}}

	rec := doRequest(t, srv, http.MethodPost, "/api/vector-search", `{"query":"cannot connect to sql","k":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, f.searcher.lastK)

	var resp struct {
		Matches []vectorSearchHit `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "conn_tcp_sql", resp.Matches[0].EntryID)
	assert.InDelta(t, 0.83, resp.Matches[0].Similarity, 1e-9)
}

func TestVectorSearchDefaultsK(t *testing.T) {
	srv, f := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/vector-search", `{"query":"timeout"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.searcher.lastK)
}

func TestVectorSearchUnavailable(t *testing.T) {
	srv, _ := newTestServer(t, withoutSearcher)
	rec := doRequest(t, srv, http.MethodPost, "/api/vector-search", `{"query":"timeout"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSendReport(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.record = &adf.FailureRecord{RunID: "run-1", PipelineName: "p", ErrorMessage: "boom"}
	f.triager.report = sampleReport()

	rec := doRequest(t, srv, http.MethodPost, "/api/send-report/run-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].Subject, "nightly-load")
	assert.NotEmpty(t, f.mailer.sent[0].HTML)
}

func TestSendReportSkipsLowConfidence(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.record = &adf.FailureRecord{RunID: "run-1", PipelineName: "p", ErrorMessage: "boom"}
	rep := sampleReport()
	rep.ConfidenceScore = 0.3
	rep.ShouldSendEmail = false
	f.triager.report = rep

	rec := doRequest(t, srv, http.MethodPost, "/api/send-report/run-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.mailer.sent)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["sent"])
}

func TestSendReportForceOverridesGate(t *testing.T) {
	srv, f := newTestServer(t)
	f.source.record = &adf.FailureRecord{RunID: "run-1", PipelineName: "p", ErrorMessage: "boom"}
	rep := sampleReport()
	rep.ShouldSendEmail = false
	f.triager.report = rep

	rec := doRequest(t, srv, http.MethodPost, "/api/send-report/run-1?force=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.mailer.sent, 1)
}

func TestSendTestEmail(t *testing.T) {
	srv, f := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/send-test-email", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.mailer.testSent)
}

func TestSendTestEmailWithoutMailer(t *testing.T) {
	srv, _ := newTestServer(t, withoutMailer)
	rec := doRequest(t, srv, http.MethodPost, "/api/send-test-email", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
