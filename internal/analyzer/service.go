// Package analyzer orchestrates triage of a failed pipeline run:
// knowledge-base enrichment, AI report synthesis with a deterministic
// fallback, and fact-checked confidence scoring.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
	"github.com/fyrsmithlabs/pipetriage/internal/factcheck"
	"github.com/fyrsmithlabs/pipetriage/internal/genai"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
)

const instrumentation = "pipetriage.analyzer"

// maxErrorChars bounds how much raw error text goes into the prompt.
const maxErrorChars = 2000

// kbMatchesForFactCheck is how many semantic hits the fact checker sees.
const kbMatchesForFactCheck = 3

// ErrNilRecord indicates Analyze was called without a failure record.
var ErrNilRecord = errors.New("analyzer: nil failure record")

const systemPrompt = `You are a senior data engineer who triages failed Azure Data Factory pipeline runs. ` +
	`Given a failure record and optional knowledge-base hints, produce a diagnostic report a teammate can act on. ` +
	`Explain the error in plain English for readers who do not know ADF internals. ` +
	`Respond ONLY with a JSON object containing: ` +
	`plain_english_error (string), root_cause (string), ` +
	`category (one of connectivity, authentication, permission, data_quality, timeout, resource, configuration, schema, missing_data, quota, unknown), ` +
	`severity (one of critical, high, medium, low), ` +
	`solutions (array of {title, steps (array of strings), estimated_time, likelihood (high|medium|low)}), ` +
	`preventive_measures (array of strings), related_documentation (array of strings), ` +
	`additional_checks (array of strings), data_engineering_tips (array of strings). ` +
	`No text outside the JSON object.`

// aiReport is the synthesis payload decoded from the model.
type aiReport struct {
	PlainEnglishError    string     `json:"plain_english_error"`
	RootCause            string     `json:"root_cause"`
	Category             string     `json:"category"`
	Severity             string     `json:"severity"`
	Solutions            []Solution `json:"solutions"`
	PreventiveMeasures   []string   `json:"preventive_measures"`
	RelatedDocumentation []string   `json:"related_documentation"`
	AdditionalChecks     []string   `json:"additional_checks"`
	DataEngineeringTips  []string   `json:"data_engineering_tips"`
}

// Service runs the triage pipeline. The semantic matcher and the AI
// client are both optional: the service degrades to regex-only
// matching and fallback reports without ever failing Analyze.
type Service struct {
	patterns *knowledge.PatternMatcher
	semantic *knowledge.SemanticMatcher
	client   genai.Client
	checker  *factcheck.Checker
	logger   *zap.Logger

	analyses  metric.Int64Counter
	fallbacks metric.Int64Counter
}

// NewService wires the triage pipeline. semantic and client may be nil.
func NewService(
	patterns *knowledge.PatternMatcher,
	semantic *knowledge.SemanticMatcher,
	client genai.Client,
	checker *factcheck.Checker,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentation)
	analyses, _ := meter.Int64Counter("pipetriage.analyzer.analyses",
		metric.WithDescription("Diagnostic reports produced"))
	fallbacks, _ := meter.Int64Counter("pipetriage.analyzer.fallbacks",
		metric.WithDescription("Reports produced by the deterministic fallback"))

	return &Service{
		patterns:  patterns,
		semantic:  semantic,
		client:    client,
		checker:   checker,
		logger:    logger,
		analyses:  analyses,
		fallbacks: fallbacks,
	}
}

// Analyze produces the full diagnostic report for one failure record.
// Degraded collaborators (vector store down, AI unavailable, responses
// that do not parse) never surface as errors; only a nil record does.
func (s *Service) Analyze(ctx context.Context, record *adf.FailureRecord) (*DiagnosticReport, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	ctx, span := otel.Tracer(instrumentation).Start(ctx, "Service.Analyze")
	defer span.End()

	span.SetAttributes(
		attribute.String("pipeline", record.PipelineName),
		attribute.String("run_id", record.RunID),
	)
	s.analyses.Add(ctx, 1)

	message := record.ErrorMessage

	patternEnr := s.patterns.Match(message)

	var semanticEnr *knowledge.Enrichment
	var matches []knowledge.Match
	if s.semantic != nil && message != "" {
		found, err := s.semantic.Search(ctx, message, kbMatchesForFactCheck)
		if err != nil {
			s.logger.Warn("semantic search unavailable, regex-only enrichment", zap.Error(err))
		} else {
			matches = found
			semanticEnr = knowledge.EnrichFromMatches(matches)
		}
	}

	enrichment := knowledge.Merge(patternEnr, semanticEnr)
	span.SetAttributes(attribute.Bool("kb_matched", enrichment.Matched))

	ai, err := s.synthesize(ctx, record, &enrichment)
	source := "ai"
	if err != nil {
		s.logger.Warn("AI synthesis failed, building fallback report", zap.Error(err))
		s.fallbacks.Add(ctx, 1)
		ai = fallbackReport(record, &enrichment)
		source = "fallback"
	}

	report := s.assemble(record, &enrichment, ai, source)

	if s.checker != nil {
		verdict := s.checker.Verify(ctx, message, factcheck.ReportSummary{
			RootCause: report.RootCause,
			Category:  report.Category,
			Severity:  report.Severity,
			Solutions: solutionTitles(report.Solutions),
		}, matches)
		report.FactCheck = &verdict
		report.ConfidenceScore = verdict.ConfidenceScore
		report.ConfidenceLevel = verdict.ConfidenceLevel
		report.ShouldSendEmail = factcheck.ShouldSendEmail(verdict)
	}

	span.SetAttributes(
		attribute.String("analysis_source", source),
		attribute.Float64("confidence_score", report.ConfidenceScore),
	)

	s.logger.Info("analysis complete",
		zap.String("pipeline", record.PipelineName),
		zap.String("run_id", record.RunID),
		zap.String("source", source),
		zap.Bool("kb_matched", enrichment.Matched),
		zap.Float64("confidence", report.ConfidenceScore),
	)

	return report, nil
}

// QuickAnalyze triages a bare error message without a real run behind
// it, for the CLI and the dashboard's ad-hoc endpoint.
func (s *Service) QuickAnalyze(ctx context.Context, message, pipeline string) (*DiagnosticReport, error) {
	if pipeline == "" {
		pipeline = "ad-hoc"
	}
	record := &adf.FailureRecord{
		PipelineName: pipeline,
		RunID:        "quick-" + uuid.NewString(),
		ErrorMessage: message,
	}
	return s.Analyze(ctx, record)
}

// synthesize asks the AI collaborator for a structured report.
func (s *Service) synthesize(ctx context.Context, record *adf.FailureRecord, enr *knowledge.Enrichment) (*aiReport, error) {
	if s.client == nil {
		return nil, genai.ErrNotConfigured
	}

	var out aiReport
	if err := genai.GenerateJSON(ctx, s.client, systemPrompt, buildPrompt(record, enr), &out); err != nil {
		return nil, err
	}
	if out.PlainEnglishError == "" && out.RootCause == "" {
		return nil, fmt.Errorf("model returned empty report")
	}
	return &out, nil
}

// buildPrompt renders the failure record and knowledge-base hints into
// the user prompt. Error text is truncated to keep the prompt bounded.
func buildPrompt(record *adf.FailureRecord, enr *knowledge.Enrichment) string {
	message := record.ErrorMessage
	if len(message) > maxErrorChars {
		message = message[:maxErrorChars] + "... [truncated]"
	}

	var b strings.Builder
	b.WriteString("Failed pipeline run:\n")
	fmt.Fprintf(&b, "  Pipeline: %s\n", record.PipelineName)
	fmt.Fprintf(&b, "  Run ID: %s\n", record.RunID)
	if record.FailingActivity != "" {
		fmt.Fprintf(&b, "  Failing activity: %s (%s)\n", record.FailingActivity, record.ActivityType)
	}
	if record.ErrorCode != "" {
		fmt.Fprintf(&b, "  Error code: %s\n", record.ErrorCode)
	}
	if record.FailureType != "" {
		fmt.Fprintf(&b, "  Failure type: %s\n", record.FailureType)
	}
	if record.DurationSeconds > 0 {
		fmt.Fprintf(&b, "  Duration: %.0f seconds\n", record.DurationSeconds)
	}
	if len(record.Parameters) > 0 {
		fmt.Fprintf(&b, "  Parameters: %v\n", record.Parameters)
	}
	fmt.Fprintf(&b, "\nError message:\n%s\n", message)

	if enr.Matched {
		b.WriteString("\nKnowledge-base hints (curated, treat as authoritative):\n")
		fmt.Fprintf(&b, "  Known error: %s\n", enr.Title)
		fmt.Fprintf(&b, "  Category: %s, severity: %s\n", enr.Category, enr.Severity)
		if len(enr.Causes) > 0 {
			fmt.Fprintf(&b, "  Known causes: %s\n", strings.Join(enr.Causes, "; "))
		}
		if len(enr.Solutions) > 0 {
			fmt.Fprintf(&b, "  Known solutions: %s\n", strings.Join(enr.Solutions, "; "))
		}
	}

	return b.String()
}

// fallbackReport builds a deterministic report from the enrichment
// alone when the AI collaborator is unavailable or unparsable.
func fallbackReport(record *adf.FailureRecord, enr *knowledge.Enrichment) *aiReport {
	if !enr.Matched {
		return &aiReport{
			PlainEnglishError: "The pipeline failed with an error that is not in the knowledge base. " +
				"Review the raw error message below and investigate manually.",
			RootCause: "Unknown - error did not match any known failure pattern",
			Category:  "unknown",
			Severity:  "medium",
			Solutions: []Solution{{
				Title: "Manual Investigation",
				Steps: []string{
					"Read the full error message in the Azure portal",
					"Check the activity's input and output for clues",
					"Re-run the pipeline in debug mode to reproduce",
					"Search the error text in the ADF troubleshooting guides",
					"Escalate to the platform team if the error persists",
				},
				Likelihood: "medium",
			}},
		}
	}

	rootCause := enr.Description
	if len(enr.Causes) > 0 {
		causes := enr.Causes
		if len(causes) > 3 {
			causes = causes[:3]
		}
		rootCause = "Most likely: " + strings.Join(causes, "; ")
	}

	var solutions []Solution
	if len(enr.Runbook) > 0 {
		steps := enr.Runbook
		if len(steps) > 8 {
			steps = steps[:8]
		}
		solutions = append(solutions, Solution{
			Title:         "Follow Runbook",
			Steps:         steps,
			EstimatedTime: enr.EstimatedFixTime,
			Likelihood:    "high",
		})
	}

	known := enr.Solutions
	if len(known) > 5 {
		known = known[:5]
	}
	for i, sol := range known {
		likelihood := "medium"
		if i == 0 {
			likelihood = "high"
		}
		solutions = append(solutions, Solution{
			Title:         sol,
			Steps:         []string{sol},
			EstimatedTime: enr.EstimatedFixTime,
			Likelihood:    likelihood,
		})
	}

	return &aiReport{
		PlainEnglishError:  fmt.Sprintf("This is a known failure: %s. %s", enr.Title, enr.Description),
		RootCause:          rootCause,
		Category:           enr.Category,
		Severity:           enr.Severity,
		Solutions:          solutions,
		PreventiveMeasures: enr.Prevention,
	}
}

// assemble combines the AI (or fallback) output with the record and
// enrichment into the final report. AI category, severity, root cause
// and solutions win; enrichment context rides along.
func (s *Service) assemble(record *adf.FailureRecord, enr *knowledge.Enrichment, ai *aiReport, source string) *DiagnosticReport {
	report := &DiagnosticReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),

		PipelineName:    record.PipelineName,
		RunID:           record.RunID,
		FailingActivity: record.FailingActivity,
		ActivityType:    record.ActivityType,
		RawErrorMessage: record.ErrorMessage,
		ErrorCode:       record.ErrorCode,
		RunStart:        record.RunStart,
		RunEnd:          record.RunEnd,
		DurationSeconds: record.DurationSeconds,
		Parameters:      record.Parameters,
		InvokedBy:       record.InvokedBy,

		PlainEnglishError:   ai.PlainEnglishError,
		Category:            ai.Category,
		Severity:            ai.Severity,
		RootCause:           ai.RootCause,
		Solutions:           ai.Solutions,
		PreventiveMeasures:  ai.PreventiveMeasures,
		AdditionalChecks:    ai.AdditionalChecks,
		DataEngineeringTips: ai.DataEngineeringTips,
		DocumentationLinks:  append([]string{}, ai.RelatedDocumentation...),

		AnalysisSource: source,
	}

	if report.Category == "" {
		report.Category = "unknown"
	}
	if report.Severity == "" {
		report.Severity = "medium"
	}

	if enr.Matched {
		report.KBPatternMatched = true
		report.KBErrorID = enr.EntryID
		report.KnownSolutions = enr.Solutions
		report.Runbook = enr.Runbook
		report.EstimatedFixTime = enr.EstimatedFixTime
		report.SimilarErrors = enr.SimilarErrors
		report.MatchConfidence = enr.MatchConfidence
		report.DocumentationLinks = appendMissingStrings(report.DocumentationLinks, enr.Documentation)
		if len(report.PreventiveMeasures) == 0 {
			report.PreventiveMeasures = enr.Prevention
		}
	}

	return report
}

func solutionTitles(solutions []Solution) []string {
	titles := make([]string, len(solutions))
	for i, s := range solutions {
		titles[i] = s.Title
	}
	return titles
}

func appendMissingStrings(base, extras []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extras {
		if !seen[s] {
			base = append(base, s)
			seen[s] = true
		}
	}
	return base
}
