package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
	"github.com/fyrsmithlabs/pipetriage/internal/factcheck"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
	"github.com/fyrsmithlabs/pipetriage/internal/vectorstore"
)

type fakeAI struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

// scriptedStore returns fixed semantic results.
type scriptedStore struct {
	results []vectorstore.SearchResult
	err     error
}

func (s *scriptedStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (s *scriptedStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.results) {
		return s.results[:k], nil
	}
	return s.results, nil
}

func (s *scriptedStore) Count() int { return len(s.results) }

func (s *scriptedStore) Close() error { return nil }

func newService(t *testing.T, store vectorstore.Store, ai *fakeAI) *Service {
	t.Helper()
	cat := catalog.Default(zap.NewNop())
	patterns := knowledge.NewPatternMatcher(cat, zap.NewNop())

	var semantic *knowledge.SemanticMatcher
	if store != nil {
		semantic = knowledge.NewSemanticMatcher(store, cat, zap.NewNop())
	}

	checker := factcheck.NewChecker(nil, zap.NewNop())
	if ai == nil {
		// Avoid a typed-nil interface value.
		return NewService(patterns, semantic, nil, checker, zap.NewNop())
	}
	return NewService(patterns, semantic, ai, checker, zap.NewNop())
}

func tcpRecord() *adf.FailureRecord {
	return &adf.FailureRecord{
		PipelineName:    "daily_load",
		RunID:           "run-123",
		FailingActivity: "CopyToSQL",
		ActivityType:    "Copy",
		ErrorCode:       "SqlFailedToConnect",
		ErrorMessage:    "ErrorCode=SqlFailedToConnect. The TCP/IP connection to the host db01, port 1433 has failed.",
	}
}

func TestAnalyzeNilRecord(t *testing.T) {
	s := newService(t, nil, nil)
	_, err := s.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilRecord)
}

func TestAnalyzeConnectivityScenarioWithAI(t *testing.T) {
	store := &scriptedStore{results: []vectorstore.SearchResult{
		{ID: "conn_tcp_sql", Score: 0.81},
		{ID: "conn_timeout", Score: 0.55},
	}}
	ai := &fakeAI{response: `{
		"plain_english_error": "The pipeline could not reach the SQL server.",
		"root_cause": "Firewall is blocking port 1433",
		"category": "connectivity",
		"severity": "high",
		"solutions": [{"title": "Open the firewall", "steps": ["Add an inbound rule for port 1433"], "likelihood": "high"}],
		"preventive_measures": ["Monitor connectivity"],
		"related_documentation": ["https://example.com/doc"],
		"additional_checks": ["Check NSG rules"],
		"data_engineering_tips": ["Use private endpoints"]
	}`}
	s := newService(t, store, ai)

	report, err := s.Analyze(context.Background(), tcpRecord())
	require.NoError(t, err)

	assert.Equal(t, "ai", report.AnalysisSource)
	assert.Equal(t, "connectivity", report.Category)
	assert.Equal(t, "high", report.Severity)
	assert.Equal(t, "Firewall is blocking port 1433", report.RootCause)
	require.Len(t, report.Solutions, 1)
	assert.Equal(t, "Open the firewall", report.Solutions[0].Title)

	// Knowledge-base context rides along with the AI diagnosis.
	assert.True(t, report.KBPatternMatched)
	assert.Equal(t, "conn_tcp_sql", report.KBErrorID)
	assert.NotEmpty(t, report.KnownSolutions)
	assert.NotEmpty(t, report.Runbook)
	require.Len(t, report.SimilarErrors, 1)
	assert.Equal(t, "Connection Timeout Error", report.SimilarErrors[0].Title)
	assert.InDelta(t, 0.81, report.MatchConfidence, 1e-9)
	assert.Contains(t, report.DocumentationLinks, "https://example.com/doc")

	// Heuristic fact-check: 0.85 base (sim > 0.6) + completeness +
	// category agreement, capped at 0.95.
	require.NotNil(t, report.FactCheck)
	assert.InDelta(t, 0.95, report.ConfidenceScore, 1e-9)
	assert.Equal(t, "high", report.ConfidenceLevel)
	assert.True(t, report.ShouldSendEmail)

	// KB hints made it into the prompt.
	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "SQL Server TCP/IP Connection Failure")
	assert.Contains(t, ai.prompts[0], "daily_load")
}

func TestAnalyzeFallbackOnAIFailure(t *testing.T) {
	store := &scriptedStore{results: []vectorstore.SearchResult{
		{ID: "conn_tcp_sql", Score: 0.75},
	}}
	ai := &fakeAI{err: errors.New("model unavailable")}
	s := newService(t, store, ai)

	report, err := s.Analyze(context.Background(), tcpRecord())
	require.NoError(t, err)

	assert.Equal(t, "fallback", report.AnalysisSource)
	assert.Equal(t, "connectivity", report.Category)
	assert.Equal(t, "high", report.Severity)
	assert.Contains(t, report.PlainEnglishError, "SQL Server TCP/IP Connection Failure")
	assert.True(t, strings.HasPrefix(report.RootCause, "Most likely: "))

	// Runbook solution leads, then top known solutions.
	require.NotEmpty(t, report.Solutions)
	assert.Equal(t, "Follow Runbook", report.Solutions[0].Title)
	assert.Equal(t, "high", report.Solutions[0].Likelihood)
	assert.LessOrEqual(t, len(report.Solutions[0].Steps), 8)
	require.Greater(t, len(report.Solutions), 1)
	assert.Equal(t, "high", report.Solutions[1].Likelihood)
	if len(report.Solutions) > 2 {
		assert.Equal(t, "medium", report.Solutions[2].Likelihood)
	}
}

func TestAnalyzeUnknownErrorFallback(t *testing.T) {
	s := newService(t, nil, nil)

	record := &adf.FailureRecord{
		PipelineName: "mystery",
		RunID:        "run-999",
		ErrorMessage: "some entirely novel failure nobody has seen",
	}
	report, err := s.Analyze(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, "fallback", report.AnalysisSource)
	assert.Equal(t, "unknown", report.Category)
	assert.Equal(t, "medium", report.Severity)
	assert.False(t, report.KBPatternMatched)
	require.Len(t, report.Solutions, 1)
	assert.Equal(t, "Manual Investigation", report.Solutions[0].Title)
	assert.Len(t, report.Solutions[0].Steps, 5)

	// No KB signal: heuristic confidence sits at the threshold after
	// the completeness bonus (0.5 + 0.1).
	assert.InDelta(t, 0.6, report.ConfidenceScore, 1e-9)
	assert.Equal(t, "medium", report.ConfidenceLevel)
	assert.True(t, report.ShouldSendEmail)
}

func TestAnalyzeSemanticStoreDownDegradesToRegex(t *testing.T) {
	store := &scriptedStore{err: errors.New("store down")}
	s := newService(t, store, nil)

	report, err := s.Analyze(context.Background(), tcpRecord())
	require.NoError(t, err)

	assert.True(t, report.KBPatternMatched)
	assert.Equal(t, "conn_tcp_sql", report.KBErrorID)
	assert.Empty(t, report.SimilarErrors)
	assert.Zero(t, report.MatchConfidence)
}

func TestAnalyzeUnparsableAIFallsBack(t *testing.T) {
	ai := &fakeAI{response: "The error is probably the firewall."}
	s := newService(t, nil, ai)

	report, err := s.Analyze(context.Background(), tcpRecord())
	require.NoError(t, err)
	assert.Equal(t, "fallback", report.AnalysisSource)
}

func TestAnalyzeTruncatesLongErrors(t *testing.T) {
	ai := &fakeAI{response: `{"plain_english_error": "x", "root_cause": "y", "category": "timeout", "severity": "low", "solutions": []}`}
	s := newService(t, nil, ai)

	record := tcpRecord()
	record.ErrorMessage = strings.Repeat("A", 5000)

	_, err := s.Analyze(context.Background(), record)
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "... [truncated]")
	assert.Less(t, len(ai.prompts[0]), 3000)
}

func TestQuickAnalyze(t *testing.T) {
	s := newService(t, nil, nil)

	report, err := s.QuickAnalyze(context.Background(), "Login failed for user 'svc'", "")
	require.NoError(t, err)

	assert.Equal(t, "ad-hoc", report.PipelineName)
	assert.True(t, strings.HasPrefix(report.RunID, "quick-"))
	assert.True(t, report.KBPatternMatched)
	assert.Equal(t, "auth_login_failed", report.KBErrorID)
}

func TestAnalyzeEmptyMessageProducesReport(t *testing.T) {
	s := newService(t, nil, nil)

	record := &adf.FailureRecord{PipelineName: "p", RunID: "r", ErrorMessage: ""}
	report, err := s.Analyze(context.Background(), record)
	require.NoError(t, err)
	assert.False(t, report.KBPatternMatched)
	assert.Equal(t, "unknown", report.Category)
}
