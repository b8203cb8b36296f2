// Package adf talks to the Azure Data Factory management REST API and
// turns failed pipeline runs into FailureRecords for the analyzer.
package adf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultBaseURL = "https://management.azure.com"
	apiVersion     = "2018-06-01"
	defaultTimeout = 30 * time.Second
)

var tracer = otel.Tracer("pipetriage.adf")

var (
	// ErrRunNotFound indicates the run ID does not exist in the factory.
	ErrRunNotFound = errors.New("pipeline run not found")

	// ErrNoError indicates a run has no failed activity and no error
	// message to triage.
	ErrNoError = errors.New("run has no error details")
)

// Config identifies the factory and the service principal used to
// query it.
type Config struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
	ResourceGroup  string
	FactoryName    string

	// BaseURL overrides the management endpoint, used in tests.
	BaseURL string
}

// Validate checks that all required fields are set.
func (c Config) Validate() error {
	switch {
	case c.TenantID == "":
		return errors.New("adf: tenant ID required")
	case c.ClientID == "":
		return errors.New("adf: client ID required")
	case c.ClientSecret == "":
		return errors.New("adf: client secret required")
	case c.SubscriptionID == "":
		return errors.New("adf: subscription ID required")
	case c.ResourceGroup == "":
		return errors.New("adf: resource group required")
	case c.FactoryName == "":
		return errors.New("adf: factory name required")
	}
	return nil
}

// Client queries the Data Factory management API.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the authenticated HTTP client, used in tests
// to point at a fake server without OAuth.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client authenticated via the OAuth2 client
// credentials flow against Azure AD.
func NewClient(config Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cc := clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", config.TenantID),
		Scopes:       []string{"https://management.azure.com/.default"},
	}

	c := &Client{
		config:     config,
		baseURL:    baseURL,
		httpClient: cc.Client(context.Background()),
		logger:     logger,
	}
	c.httpClient.Timeout = defaultTimeout

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// factoryPath is the resource path of the configured factory.
func (c *Client) factoryPath() string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.DataFactory/factories/%s",
		c.config.SubscriptionID, c.config.ResourceGroup, c.config.FactoryName)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + path + "?api-version=" + apiVersion
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling data factory API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrRunNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("data factory API returned %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// TestConnection verifies credentials and factory access by fetching
// the factory resource.
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Client.TestConnection")
	defer span.End()

	if err := c.do(ctx, http.MethodGet, c.factoryPath(), nil, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	c.logger.Info("data factory reachable", zap.String("factory", c.config.FactoryName))
	return nil
}

type runFilter struct {
	Operand  string   `json:"operand"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

type queryRunsRequest struct {
	LastUpdatedAfter  time.Time   `json:"lastUpdatedAfter"`
	LastUpdatedBefore time.Time   `json:"lastUpdatedBefore"`
	Filters           []runFilter `json:"filters,omitempty"`
}

type queryRunsResponse struct {
	Value []PipelineRun `json:"value"`
}

// FailedRuns returns the failed pipeline runs updated within the
// lookback window, newest first as returned by the API.
func (c *Client) FailedRuns(ctx context.Context, window time.Duration) ([]PipelineRun, error) {
	ctx, span := tracer.Start(ctx, "Client.FailedRuns")
	defer span.End()

	span.SetAttributes(attribute.String("window", window.String()))

	now := time.Now().UTC()
	req := queryRunsRequest{
		LastUpdatedAfter:  now.Add(-window),
		LastUpdatedBefore: now,
		Filters: []runFilter{
			{Operand: "Status", Operator: "Equals", Values: []string{"Failed"}},
		},
	}

	var resp queryRunsResponse
	if err := c.do(ctx, http.MethodPost, c.factoryPath()+"/queryPipelineRuns", req, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("runs", len(resp.Value)))
	c.logger.Debug("queried failed runs",
		zap.Duration("window", window),
		zap.Int("count", len(resp.Value)),
	)
	return resp.Value, nil
}

// History returns all runs of one pipeline over the given number of
// days, any status.
func (c *Client) History(ctx context.Context, pipelineName string, days int) ([]PipelineRun, error) {
	ctx, span := tracer.Start(ctx, "Client.History")
	defer span.End()

	span.SetAttributes(attribute.String("pipeline", pipelineName))

	now := time.Now().UTC()
	req := queryRunsRequest{
		LastUpdatedAfter:  now.AddDate(0, 0, -days),
		LastUpdatedBefore: now,
		Filters: []runFilter{
			{Operand: "PipelineName", Operator: "Equals", Values: []string{pipelineName}},
		},
	}

	var resp queryRunsResponse
	if err := c.do(ctx, http.MethodPost, c.factoryPath()+"/queryPipelineRuns", req, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp.Value, nil
}

// PipelineRun fetches one run by ID.
func (c *Client) PipelineRun(ctx context.Context, runID string) (*PipelineRun, error) {
	ctx, span := tracer.Start(ctx, "Client.PipelineRun")
	defer span.End()

	span.SetAttributes(attribute.String("run_id", runID))

	var run PipelineRun
	if err := c.do(ctx, http.MethodGet, c.factoryPath()+"/pipelineruns/"+runID, nil, &run); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &run, nil
}

type queryActivityRunsResponse struct {
	Value []ActivityRun `json:"value"`
}

// ActivityRuns fetches the activity runs of one pipeline run. The
// query window is derived from the run itself, padded to catch
// activities that outlived the run record.
func (c *Client) ActivityRuns(ctx context.Context, run *PipelineRun) ([]ActivityRun, error) {
	ctx, span := tracer.Start(ctx, "Client.ActivityRuns")
	defer span.End()

	span.SetAttributes(attribute.String("run_id", run.RunID))

	after := time.Now().UTC().AddDate(0, 0, -7)
	before := time.Now().UTC()
	if run.RunStart != nil {
		after = run.RunStart.Add(-time.Hour)
	}
	if run.RunEnd != nil {
		before = run.RunEnd.Add(time.Hour)
	}

	req := queryRunsRequest{LastUpdatedAfter: after, LastUpdatedBefore: before}

	var resp queryActivityRunsResponse
	path := c.factoryPath() + "/pipelineruns/" + run.RunID + "/queryActivityruns"
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp.Value, nil
}

// FailureDetails builds the triage record for a failed run: the run
// plus its first failed activity's error payload. Runs whose failed
// activity carries no error payload still produce a record, using the
// run-level message. Returns ErrNoError when there is nothing to
// triage at all.
func (c *Client) FailureDetails(ctx context.Context, runID string) (*FailureRecord, error) {
	ctx, span := tracer.Start(ctx, "Client.FailureDetails")
	defer span.End()

	span.SetAttributes(attribute.String("run_id", runID))

	run, err := c.PipelineRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	activities, err := c.ActivityRuns(ctx, run)
	if err != nil {
		return nil, err
	}

	record := RecordFromRun(run, activities)
	if record.ErrorMessage == "" {
		return nil, fmt.Errorf("%w: run %s", ErrNoError, runID)
	}

	c.logger.Info("built failure record",
		zap.String("pipeline", record.PipelineName),
		zap.String("run_id", record.RunID),
		zap.String("activity", record.FailingActivity),
	)
	return record, nil
}

// RecordFromRun assembles a FailureRecord from a run and its
// activities without touching the network.
func RecordFromRun(run *PipelineRun, activities []ActivityRun) *FailureRecord {
	record := &FailureRecord{
		PipelineName: run.PipelineName,
		RunID:        run.RunID,
		ErrorMessage: run.Message,
		RunStart:     run.RunStart,
		RunEnd:       run.RunEnd,
		Parameters:   run.Parameters,
		InvokedBy:    run.InvokedBy.Name,
	}
	if run.DurationInMs > 0 {
		record.DurationSeconds = float64(run.DurationInMs) / 1000.0
	}

	for i := range activities {
		a := &activities[i]
		if !a.Failed() {
			continue
		}
		record.FailingActivity = a.ActivityName
		record.ActivityType = a.ActivityType
		if a.Error != nil {
			if a.Error.Message != "" {
				record.ErrorMessage = a.Error.Message
			}
			record.ErrorCode = a.Error.ErrorCode
			record.FailureType = a.Error.FailureType
		}
		break
	}

	return record
}
