package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
)

func findingsFor(a Assessment, check string) []Finding {
	var out []Finding
	for _, f := range a.Findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

func TestFastFailureFlagged(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	record := &adf.FailureRecord{
		PipelineName:    "p",
		ErrorMessage:    "Login failed",
		DurationSeconds: 2.5,
	}

	out := a.Assess(record, nil)
	timing := findingsFor(out, "timing")
	require.Len(t, timing, 1)
	assert.Equal(t, "warning", timing[0].Severity)
	assert.Contains(t, out.Recommendations, "Verify linked-service configuration and credentials; the run failed almost immediately")
}

func TestLongRunNoted(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	record := &adf.FailureRecord{ErrorMessage: "failed", DurationSeconds: 7200}

	out := a.Assess(record, nil)
	timing := findingsFor(out, "timing")
	require.Len(t, timing, 1)
	assert.Equal(t, "info", timing[0].Severity)
}

func TestOffHoursAndWeekend(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	// Saturday 23:00 UTC.
	start := time.Date(2026, 8, 22, 23, 0, 0, 0, time.UTC)
	record := &adf.FailureRecord{ErrorMessage: "failed", RunStart: &start, DurationSeconds: 60}

	out := a.Assess(record, nil)
	timing := findingsFor(out, "timing")
	assert.Len(t, timing, 2)
}

func TestActivitySuccessRate(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	record := &adf.FailureRecord{ErrorMessage: "failed", DurationSeconds: 60}
	activities := []adf.ActivityRun{
		{ActivityName: "a", Status: "Succeeded"},
		{ActivityName: "b", Status: "Succeeded"},
		{ActivityName: "c", Status: "Failed"},
		{ActivityName: "d", Status: "Failed"},
	}

	out := a.Assess(record, activities)
	acts := findingsFor(out, "activities")
	require.Len(t, acts, 1)
	assert.Equal(t, "warning", acts[0].Severity)
	assert.Contains(t, acts[0].Message, "2 of 4")
}

func TestParameterValidation(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	record := &adf.FailureRecord{
		ErrorMessage:    "failed",
		DurationSeconds: 60,
		Parameters: map[string]string{
			"env":    "prod",
			"path":   "",
			"target": "CHANGEME",
		},
	}

	out := a.Assess(record, nil)
	params := findingsFor(out, "parameters")
	assert.Len(t, params, 2)
	assert.Contains(t, out.Recommendations, "Review pipeline parameters; at least one is empty or a placeholder")
}

func TestTransientDetection(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	record := &adf.FailureRecord{
		ErrorMessage:    "The operation has timed out after 30 seconds",
		DurationSeconds: 60,
	}

	out := a.Assess(record, nil)
	assert.True(t, out.LikelyTransient)
	assert.Contains(t, out.Recommendations, "Retry the pipeline run; the error pattern looks transient")
}

func TestFailureTypeClassification(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())

	out := a.Assess(&adf.FailureRecord{ErrorMessage: "x", FailureType: "UserError", DurationSeconds: 60}, nil)
	patterns := findingsFor(out, "failure_pattern")
	require.Len(t, patterns, 1)
	assert.Contains(t, patterns[0].Message, "UserError")

	out = a.Assess(&adf.FailureRecord{ErrorMessage: "x", FailureType: "SystemError", DurationSeconds: 60}, nil)
	patterns = findingsFor(out, "failure_pattern")
	require.Len(t, patterns, 1)
	assert.Equal(t, "warning", patterns[0].Severity)
}

func TestCleanRunNoFindings(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	start := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC) // Wednesday morning
	record := &adf.FailureRecord{
		ErrorMessage:    "some odd failure",
		DurationSeconds: 300,
		RunStart:        &start,
		Parameters:      map[string]string{"env": "prod"},
	}

	out := a.Assess(record, nil)
	assert.Empty(t, out.Findings)
	assert.Empty(t, out.Recommendations)
	assert.False(t, out.LikelyTransient)
}
