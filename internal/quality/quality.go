// Package quality runs heuristic data-quality checks over a failed
// run, surfacing context the diagnostic report alone does not show.
package quality

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
)

// Thresholds for the timing checks.
const (
	fastFailureSeconds = 5
	longRunSeconds     = 3600
	offHoursStart      = 22
	offHoursEnd        = 6
)

// transientMarkers are error-text fragments that usually indicate a
// transient failure worth retrying.
var transientMarkers = []string{
	"timeout", "timed out", "transient", "temporarily",
	"throttl", "429", "deadlock", "connection reset",
	"service unavailable", "503",
}

// placeholderValues are parameter values that look like leftovers from
// development.
var placeholderValues = []string{
	"todo", "changeme", "placeholder", "xxx", "test", "dummy", "tbd",
}

// Finding is one observation from a check.
type Finding struct {
	Check    string `json:"check"`
	Severity string `json:"severity"` // "info" or "warning"
	Message  string `json:"message"`
}

// Assessment is the combined result of all checks on one run.
type Assessment struct {
	Findings        []Finding `json:"findings"`
	Recommendations []string  `json:"recommendations"`

	// LikelyTransient reports whether the error text suggests a
	// retry could succeed.
	LikelyTransient bool `json:"likely_transient"`
}

// Analyzer runs the checks. Stateless.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a quality analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Assess runs every check against the record and its activity runs.
// activities may be empty.
func (a *Analyzer) Assess(record *adf.FailureRecord, activities []adf.ActivityRun) Assessment {
	var out Assessment

	out.Findings = append(out.Findings, a.checkTiming(record)...)
	out.Findings = append(out.Findings, a.checkActivities(activities)...)
	out.Findings = append(out.Findings, a.checkParameters(record)...)

	patternFindings, transient := a.checkFailurePattern(record)
	out.Findings = append(out.Findings, patternFindings...)
	out.LikelyTransient = transient

	out.Recommendations = recommendations(out)

	a.logger.Debug("quality assessment complete",
		zap.String("pipeline", record.PipelineName),
		zap.Int("findings", len(out.Findings)),
		zap.Bool("likely_transient", out.LikelyTransient),
	)
	return out
}

func (a *Analyzer) checkTiming(record *adf.FailureRecord) []Finding {
	var findings []Finding

	if record.DurationSeconds > 0 && record.DurationSeconds < fastFailureSeconds {
		findings = append(findings, Finding{
			Check:    "timing",
			Severity: "warning",
			Message: fmt.Sprintf("Run failed in %.1f seconds; failures this fast usually point at configuration, authentication or a missing resource rather than a data problem",
				record.DurationSeconds),
		})
	}
	if record.DurationSeconds > longRunSeconds {
		findings = append(findings, Finding{
			Check:    "timing",
			Severity: "info",
			Message: fmt.Sprintf("Run lasted %.0f minutes before failing; check for data-volume growth or resource contention",
				record.DurationSeconds/60),
		})
	}

	if record.RunStart != nil {
		start := record.RunStart.UTC()
		hour := start.Hour()
		if hour >= offHoursStart || hour < offHoursEnd {
			findings = append(findings, Finding{
				Check:    "timing",
				Severity: "info",
				Message:  fmt.Sprintf("Run started at %02d:00 UTC; maintenance windows on source systems are a common cause of off-hours failures", hour),
			})
		}
		if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			findings = append(findings, Finding{
				Check:    "timing",
				Severity: "info",
				Message:  "Run started on a weekend; upstream deliveries may follow a business-day schedule",
			})
		}
	}

	return findings
}

func (a *Analyzer) checkActivities(activities []adf.ActivityRun) []Finding {
	if len(activities) == 0 {
		return nil
	}

	failed := 0
	for i := range activities {
		if activities[i].Failed() {
			failed++
		}
	}
	rate := float64(len(activities)-failed) / float64(len(activities)) * 100

	severity := "info"
	if failed > 1 {
		severity = "warning"
	}
	return []Finding{{
		Check:    "activities",
		Severity: severity,
		Message: fmt.Sprintf("%d of %d activities succeeded (%.0f%%); %d failed",
			len(activities)-failed, len(activities), rate, failed),
	}}
}

func (a *Analyzer) checkParameters(record *adf.FailureRecord) []Finding {
	var findings []Finding

	for name, value := range record.Parameters {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			findings = append(findings, Finding{
				Check:    "parameters",
				Severity: "warning",
				Message:  fmt.Sprintf("Parameter %q is empty", name),
			})
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, ph := range placeholderValues {
			if lower == ph {
				findings = append(findings, Finding{
					Check:    "parameters",
					Severity: "warning",
					Message:  fmt.Sprintf("Parameter %q has placeholder value %q", name, value),
				})
				break
			}
		}
	}

	return findings
}

func (a *Analyzer) checkFailurePattern(record *adf.FailureRecord) ([]Finding, bool) {
	var findings []Finding
	transient := false

	lower := strings.ToLower(record.ErrorMessage)
	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			transient = true
			findings = append(findings, Finding{
				Check:    "failure_pattern",
				Severity: "info",
				Message:  fmt.Sprintf("Error text contains %q, which often indicates a transient failure", marker),
			})
			break
		}
	}

	switch record.FailureType {
	case "UserError":
		findings = append(findings, Finding{
			Check:    "failure_pattern",
			Severity: "info",
			Message:  "ADF classified this as a UserError: the cause is in the pipeline's own configuration or data, not the platform",
		})
	case "SystemError":
		findings = append(findings, Finding{
			Check:    "failure_pattern",
			Severity: "warning",
			Message:  "ADF classified this as a SystemError: check Azure service health before changing the pipeline",
		})
	}

	return findings, transient
}

// recommendations derives next steps from the findings.
func recommendations(a Assessment) []string {
	var recs []string

	if a.LikelyTransient {
		recs = append(recs, "Retry the pipeline run; the error pattern looks transient")
	}
	for _, f := range a.Findings {
		switch {
		case f.Check == "parameters" && f.Severity == "warning":
			recs = append(recs, "Review pipeline parameters; at least one is empty or a placeholder")
		case f.Check == "timing" && f.Severity == "warning":
			recs = append(recs, "Verify linked-service configuration and credentials; the run failed almost immediately")
		}
	}

	return dedup(recs)
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
