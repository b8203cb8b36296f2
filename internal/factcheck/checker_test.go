package factcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
)

type fakeAI struct {
	response string
	err      error
}

func (f *fakeAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	return f.response, f.err
}

func matchFor(t *testing.T, id string, sim float64) knowledge.Match {
	t.Helper()
	entry := catalog.Default(zap.NewNop()).ByID(id)
	require.NotNil(t, entry)
	return knowledge.Match{Entry: entry, Similarity: sim}
}

func fullReport() ReportSummary {
	return ReportSummary{
		RootCause: "Firewall is blocking port 1433",
		Category:  "connectivity",
		Severity:  "high",
		Solutions: []string{"open the port"},
	}
}

func TestScoreToLevelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.80, "high"},
		{0.95, "high"},
		{0.79999, "medium"},
		{0.60, "medium"},
		{0.59999, "low"},
		{0.0, "low"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreToLevel(tt.score), "score %v", tt.score)
	}
}

func TestHeuristicNoMatches(t *testing.T) {
	c := NewChecker(nil, zap.NewNop())

	res := c.Verify(context.Background(), "weird error", ReportSummary{}, nil)
	assert.Equal(t, "heuristic", res.Verifier)
	assert.InDelta(t, 0.5, res.ConfidenceScore, 1e-9)
	assert.Equal(t, "low", res.ConfidenceLevel)
	assert.Contains(t, res.FlaggedIssues, "Low confidence - manual review recommended")
}

func TestHeuristicSimilarityBands(t *testing.T) {
	c := NewChecker(nil, zap.NewNop())
	tests := []struct {
		similarity float64
		want       float64
	}{
		{0.61, 0.85},
		{0.60, 0.70}, // band boundaries are exclusive
		{0.41, 0.70},
		{0.40, 0.60},
		{0.31, 0.60},
		{0.30, 0.50},
	}
	for _, tt := range tests {
		matches := []knowledge.Match{matchFor(t, "conn_tcp_sql", tt.similarity)}
		res := c.Verify(context.Background(), "err", ReportSummary{}, matches)
		assert.InDelta(t, tt.want, res.ConfidenceScore, 1e-9, "similarity %v", tt.similarity)
	}
}

func TestHeuristicCompletenessAndCategoryBonuses(t *testing.T) {
	c := NewChecker(nil, zap.NewNop())
	matches := []knowledge.Match{matchFor(t, "conn_tcp_sql", 0.65)}

	// 0.85 base + 0.1 completeness + 0.1 category, capped at 0.95.
	res := c.Verify(context.Background(), "err", fullReport(), matches)
	assert.InDelta(t, 0.95, res.ConfidenceScore, 1e-9)
	assert.Equal(t, "high", res.ConfidenceLevel)
	assert.Empty(t, res.FlaggedIssues)

	// Completeness bonus only.
	report := fullReport()
	report.Category = "resource"
	res = c.Verify(context.Background(), "err", report, []knowledge.Match{matchFor(t, "conn_tcp_sql", 0.45)})
	assert.InDelta(t, 0.80, res.ConfidenceScore, 1e-9)
}

func TestHeuristicMonotonicInSimilarity(t *testing.T) {
	c := NewChecker(nil, zap.NewNop())
	prev := -1.0
	for _, sim := range []float64{0.1, 0.35, 0.45, 0.65} {
		res := c.Verify(context.Background(), "err", ReportSummary{}, []knowledge.Match{matchFor(t, "conn_tcp_sql", sim)})
		assert.GreaterOrEqual(t, res.ConfidenceScore, prev)
		prev = res.ConfidenceScore
	}
}

func TestVerifyAIPath(t *testing.T) {
	ai := &fakeAI{response: `{"confidence_score": 0.9, "confidence_level": "high",
		"root_cause_accurate": true, "solutions_applicable": true, "severity_correct": false,
		"corrections": ["severity should be critical"], "flagged_issues": []}`}
	c := NewChecker(ai, zap.NewNop())

	res := c.Verify(context.Background(), "err", fullReport(), nil)
	assert.Equal(t, "ai", res.Verifier)
	assert.InDelta(t, 0.9, res.ConfidenceScore, 1e-9)
	assert.False(t, res.SeverityCorrect)
	assert.Equal(t, []string{"severity should be critical"}, res.Corrections)
}

func TestVerifyAIBackfillsMissingFields(t *testing.T) {
	ai := &fakeAI{response: `{}`}
	c := NewChecker(ai, zap.NewNop())

	res := c.Verify(context.Background(), "err", fullReport(), nil)
	assert.Equal(t, "ai", res.Verifier)
	assert.InDelta(t, 0.5, res.ConfidenceScore, 1e-9)
	assert.Equal(t, "low", res.ConfidenceLevel)
	assert.True(t, res.RootCauseAccurate)
	assert.True(t, res.SolutionsApplicable)
	assert.True(t, res.SeverityCorrect)
	assert.NotNil(t, res.Corrections)
	assert.Contains(t, res.FlaggedIssues, "Low confidence - manual review recommended")
}

func TestVerifyAIClampsScore(t *testing.T) {
	ai := &fakeAI{response: `{"confidence_score": 1.7}`}
	c := NewChecker(ai, zap.NewNop())

	res := c.Verify(context.Background(), "err", fullReport(), nil)
	assert.InDelta(t, 1.0, res.ConfidenceScore, 1e-9)
}

func TestVerifyFallsBackOnAIError(t *testing.T) {
	ai := &fakeAI{err: errors.New("quota exhausted")}
	c := NewChecker(ai, zap.NewNop())

	res := c.Verify(context.Background(), "err", fullReport(), []knowledge.Match{matchFor(t, "conn_tcp_sql", 0.7)})
	assert.Equal(t, "heuristic", res.Verifier)
	assert.InDelta(t, 0.95, res.ConfidenceScore, 1e-9)
}

func TestVerifyFallsBackOnUnparsableAI(t *testing.T) {
	ai := &fakeAI{response: "I think the report looks fine."}
	c := NewChecker(ai, zap.NewNop())

	res := c.Verify(context.Background(), "err", ReportSummary{}, nil)
	assert.Equal(t, "heuristic", res.Verifier)
}

func TestShouldSendEmail(t *testing.T) {
	assert.True(t, ShouldSendEmail(Result{ConfidenceScore: 0.5}))
	assert.True(t, ShouldSendEmail(Result{ConfidenceScore: 0.95}))
	assert.False(t, ShouldSendEmail(Result{ConfidenceScore: 0.49999}))
}
