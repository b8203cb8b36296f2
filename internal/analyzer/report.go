package analyzer

import (
	"time"

	"github.com/fyrsmithlabs/pipetriage/internal/factcheck"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
)

// Solution is one proposed fix, ordered steps included.
type Solution struct {
	Title         string   `json:"title"`
	Steps         []string `json:"steps"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Likelihood    string   `json:"likelihood,omitempty"`
}

// DiagnosticReport is the full triage output for one failed run.
type DiagnosticReport struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Run context.
	PipelineName    string            `json:"pipeline_name"`
	RunID           string            `json:"run_id"`
	FailingActivity string            `json:"failing_activity,omitempty"`
	ActivityType    string            `json:"activity_type,omitempty"`
	RawErrorMessage string            `json:"raw_error_message"`
	ErrorCode       string            `json:"error_code,omitempty"`
	RunStart        *time.Time        `json:"run_start,omitempty"`
	RunEnd          *time.Time        `json:"run_end,omitempty"`
	DurationSeconds float64           `json:"duration_seconds,omitempty"`
	Parameters      map[string]string `json:"parameters,omitempty"`
	InvokedBy       string            `json:"invoked_by,omitempty"`

	// Diagnosis.
	PlainEnglishError   string     `json:"plain_english_error"`
	Category            string     `json:"category"`
	Severity            string     `json:"severity"`
	RootCause           string     `json:"root_cause"`
	Solutions           []Solution `json:"solutions"`
	PreventiveMeasures  []string   `json:"preventive_measures,omitempty"`
	AdditionalChecks    []string   `json:"additional_checks,omitempty"`
	DataEngineeringTips []string   `json:"data_engineering_tips,omitempty"`
	DocumentationLinks  []string   `json:"documentation_links,omitempty"`

	// Knowledge-base context.
	KBPatternMatched bool                     `json:"kb_pattern_matched"`
	KBErrorID        string                   `json:"kb_error_id,omitempty"`
	KnownSolutions   []string                 `json:"known_solutions,omitempty"`
	Runbook          []string                 `json:"runbook,omitempty"`
	EstimatedFixTime string                   `json:"estimated_fix_time,omitempty"`
	SimilarErrors    []knowledge.SimilarError `json:"similar_errors,omitempty"`
	MatchConfidence  float64                  `json:"match_confidence,omitempty"`

	// Verification.
	FactCheck       *factcheck.Result `json:"fact_check,omitempty"`
	ConfidenceScore float64           `json:"confidence_score"`
	ConfidenceLevel string            `json:"confidence_level"`
	ShouldSendEmail bool              `json:"should_send_email"`

	// AnalysisSource is "ai" or "fallback".
	AnalysisSource string `json:"analysis_source"`
}
