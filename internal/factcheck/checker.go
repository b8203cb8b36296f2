// Package factcheck verifies AI-generated diagnostic reports against
// the knowledge base and gates email delivery on the result.
package factcheck

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/genai"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
)

const instrumentation = "pipetriage.factcheck"

// EmailThreshold is the minimum confidence score for a report to be
// emailed out.
const EmailThreshold = 0.5

// lowConfidenceFlag is attached whenever the score does not clear the
// email threshold.
const lowConfidenceFlag = "Low confidence - manual review recommended"

// Result is the verdict on one diagnostic report.
type Result struct {
	// ConfidenceScore is in [0, 1].
	ConfidenceScore float64 `json:"confidence_score"`

	// ConfidenceLevel is "high", "medium" or "low", derived from the
	// score.
	ConfidenceLevel string `json:"confidence_level"`

	RootCauseAccurate   bool `json:"root_cause_accurate"`
	SolutionsApplicable bool `json:"solutions_applicable"`
	SeverityCorrect     bool `json:"severity_correct"`

	// Corrections are AI-suggested fixes to the report.
	Corrections []string `json:"corrections"`

	// FlaggedIssues are concerns a human should look at.
	FlaggedIssues []string `json:"flagged_issues"`

	// Verifier records which path produced the verdict: "ai" or
	// "heuristic".
	Verifier string `json:"verifier"`
}

// ReportSummary carries the report fields the checker inspects.
type ReportSummary struct {
	RootCause string
	Category  string
	Severity  string
	Solutions []string
}

// Checker verifies reports. The AI client is optional; without it (or
// on AI failure) the heuristic path runs.
type Checker struct {
	client genai.Client
	logger *zap.Logger

	verifications metric.Int64Counter
	fallbacks     metric.Int64Counter
}

// NewChecker creates a checker. client may be nil.
func NewChecker(client genai.Client, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentation)
	verifications, _ := meter.Int64Counter("pipetriage.factcheck.verifications",
		metric.WithDescription("Fact-check verifications performed"))
	fallbacks, _ := meter.Int64Counter("pipetriage.factcheck.fallbacks",
		metric.WithDescription("Fact-checks that used the heuristic fallback"))

	return &Checker{
		client:        client,
		logger:        logger,
		verifications: verifications,
		fallbacks:     fallbacks,
	}
}

const verifySystemPrompt = `You are a quality reviewer for data-pipeline incident reports. ` +
	`You compare an AI-generated diagnostic report against the original error and a curated knowledge base, ` +
	`and return a strict JSON verdict. Respond ONLY with a JSON object containing: ` +
	`confidence_score (0.0-1.0), confidence_level ("high"|"medium"|"low"), ` +
	`root_cause_accurate (bool), solutions_applicable (bool), severity_correct (bool), ` +
	`corrections (array of strings), flagged_issues (array of strings). No additional text.`

// aiVerdict uses pointers so absent fields can be backfilled with
// defaults instead of Go zero values.
type aiVerdict struct {
	ConfidenceScore     *float64 `json:"confidence_score"`
	ConfidenceLevel     string   `json:"confidence_level"`
	RootCauseAccurate   *bool    `json:"root_cause_accurate"`
	SolutionsApplicable *bool    `json:"solutions_applicable"`
	SeverityCorrect     *bool    `json:"severity_correct"`
	Corrections         []string `json:"corrections"`
	FlaggedIssues       []string `json:"flagged_issues"`
}

// Verify fact-checks a report. The AI path is tried first when a
// client is configured; any failure falls back to the knowledge-base
// heuristic. Verify never returns an error for degraded collaborators.
func (c *Checker) Verify(ctx context.Context, errorMessage string, report ReportSummary, matches []knowledge.Match) Result {
	ctx, span := otel.Tracer(instrumentation).Start(ctx, "Checker.Verify")
	defer span.End()

	c.verifications.Add(ctx, 1)

	if c.client != nil {
		if res, err := c.verifyAI(ctx, errorMessage, report, matches); err == nil {
			span.SetAttributes(
				attribute.String("verifier", "ai"),
				attribute.Float64("confidence_score", res.ConfidenceScore),
			)
			return res
		} else {
			c.logger.Warn("AI fact-check failed, using heuristic", zap.Error(err))
		}
	}

	c.fallbacks.Add(ctx, 1)
	res := c.verifyHeuristic(report, matches)
	span.SetAttributes(
		attribute.String("verifier", "heuristic"),
		attribute.Float64("confidence_score", res.ConfidenceScore),
	)
	return res
}

func (c *Checker) verifyAI(ctx context.Context, errorMessage string, report ReportSummary, matches []knowledge.Match) (Result, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Original error:\n%s\n\n", errorMessage)
	fmt.Fprintf(&b, "Report under review:\n")
	fmt.Fprintf(&b, "  Root cause: %s\n", report.RootCause)
	fmt.Fprintf(&b, "  Category: %s\n", report.Category)
	fmt.Fprintf(&b, "  Severity: %s\n", report.Severity)
	fmt.Fprintf(&b, "  Solutions: %s\n\n", strings.Join(report.Solutions, "; "))

	b.WriteString("Knowledge-base matches:\n")
	top := matches
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, m := range top {
		fmt.Fprintf(&b, "  - %s (category %s, similarity %.2f)\n",
			m.Entry.Title, m.Entry.Category, m.Similarity)
	}

	var verdict aiVerdict
	if err := genai.GenerateJSON(ctx, c.client, verifySystemPrompt, b.String(), &verdict); err != nil {
		return Result{}, err
	}

	res := Result{
		ConfidenceScore:     0.5,
		RootCauseAccurate:   true,
		SolutionsApplicable: true,
		SeverityCorrect:     true,
		Corrections:         verdict.Corrections,
		FlaggedIssues:       verdict.FlaggedIssues,
		Verifier:            "ai",
	}
	if verdict.ConfidenceScore != nil {
		res.ConfidenceScore = clamp01(*verdict.ConfidenceScore)
	}
	if verdict.RootCauseAccurate != nil {
		res.RootCauseAccurate = *verdict.RootCauseAccurate
	}
	if verdict.SolutionsApplicable != nil {
		res.SolutionsApplicable = *verdict.SolutionsApplicable
	}
	if verdict.SeverityCorrect != nil {
		res.SeverityCorrect = *verdict.SeverityCorrect
	}
	if res.Corrections == nil {
		res.Corrections = []string{}
	}
	if res.FlaggedIssues == nil {
		res.FlaggedIssues = []string{}
	}

	res.ConfidenceLevel = verdict.ConfidenceLevel
	if res.ConfidenceLevel == "" {
		res.ConfidenceLevel = ScoreToLevel(res.ConfidenceScore)
	}
	if res.ConfidenceScore <= EmailThreshold && !contains(res.FlaggedIssues, lowConfidenceFlag) {
		res.FlaggedIssues = append(res.FlaggedIssues, lowConfidenceFlag)
	}
	return res, nil
}

// verifyHeuristic scores a report from knowledge-base agreement alone.
// Starts at 0.5; the best match's similarity lifts the base, report
// completeness and category agreement each add 0.1 capped at 0.95.
func (c *Checker) verifyHeuristic(report ReportSummary, matches []knowledge.Match) Result {
	score := 0.5

	var best *knowledge.Match
	if len(matches) > 0 {
		best = &matches[0]
	}

	if best != nil {
		switch {
		case best.Similarity > 0.6:
			score = 0.85
		case best.Similarity > 0.4:
			score = 0.70
		case best.Similarity > 0.3:
			score = 0.60
		}
	}

	if strings.TrimSpace(report.RootCause) != "" && len(report.Solutions) > 0 {
		score = capAdd(score, 0.1, 0.95)
	}
	if best != nil && report.Category != "" && string(best.Entry.Category) == report.Category {
		score = capAdd(score, 0.1, 0.95)
	}

	res := Result{
		ConfidenceScore:     score,
		ConfidenceLevel:     ScoreToLevel(score),
		RootCauseAccurate:   true,
		SolutionsApplicable: true,
		SeverityCorrect:     true,
		Corrections:         []string{},
		FlaggedIssues:       []string{},
		Verifier:            "heuristic",
	}
	if score <= EmailThreshold {
		res.FlaggedIssues = append(res.FlaggedIssues, lowConfidenceFlag)
	}
	return res
}

// ScoreToLevel maps a confidence score to its level band.
func ScoreToLevel(score float64) string {
	switch {
	case score >= 0.8:
		return "high"
	case score >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// ShouldSendEmail reports whether a verdict clears the delivery gate.
func ShouldSendEmail(res Result) bool {
	return res.ConfidenceScore >= EmailThreshold
}

func capAdd(score, delta, ceiling float64) float64 {
	score += delta
	if score > ceiling {
		return ceiling
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
