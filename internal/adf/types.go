package adf

import "time"

// PipelineRun is one pipeline execution as reported by the Data
// Factory management API.
type PipelineRun struct {
	RunID        string            `json:"runId"`
	PipelineName string            `json:"pipelineName"`
	Status       string            `json:"status"`
	RunStart     *time.Time        `json:"runStart,omitempty"`
	RunEnd       *time.Time        `json:"runEnd,omitempty"`
	DurationInMs int64             `json:"durationInMs,omitempty"`
	Message      string            `json:"message,omitempty"`
	Parameters   map[string]string `json:"parameters,omitempty"`
	InvokedBy    InvokedBy         `json:"invokedBy,omitempty"`
}

// InvokedBy identifies what started a run.
type InvokedBy struct {
	Name        string `json:"name,omitempty"`
	InvokedType string `json:"invokedByType,omitempty"`
}

// ActivityRun is one activity execution inside a pipeline run.
type ActivityRun struct {
	ActivityName     string         `json:"activityName"`
	ActivityType     string         `json:"activityType"`
	Status           string         `json:"status"`
	ActivityRunStart *time.Time     `json:"activityRunStart,omitempty"`
	ActivityRunEnd   *time.Time     `json:"activityRunEnd,omitempty"`
	DurationInMs     int64          `json:"durationInMs,omitempty"`
	Error            *ActivityError `json:"error,omitempty"`
}

// ActivityError is the error payload attached to a failed activity.
// ADF sometimes omits it entirely, so callers must handle nil.
type ActivityError struct {
	ErrorCode   string `json:"errorCode,omitempty"`
	Message     string `json:"message,omitempty"`
	FailureType string `json:"failureType,omitempty"`
}

// Failed reports whether the activity ended in failure.
func (a *ActivityRun) Failed() bool {
	return a.Status == "Failed"
}

// FailureRecord is the triage input: everything known about one failed
// pipeline run, flattened for the analyzer.
type FailureRecord struct {
	PipelineName    string            `json:"pipeline_name"`
	RunID           string            `json:"run_id"`
	FailingActivity string            `json:"failing_activity,omitempty"`
	ActivityType    string            `json:"activity_type,omitempty"`
	ErrorCode       string            `json:"error_code,omitempty"`
	ErrorMessage    string            `json:"error_message"`
	FailureType     string            `json:"failure_type,omitempty"`
	RunStart        *time.Time        `json:"run_start,omitempty"`
	RunEnd          *time.Time        `json:"run_end,omitempty"`
	DurationSeconds float64           `json:"duration_seconds,omitempty"`
	Parameters      map[string]string `json:"parameters,omitempty"`
	InvokedBy       string            `json:"invoked_by,omitempty"`
}
