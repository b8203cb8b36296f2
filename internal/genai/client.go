// Package genai wraps the generative-AI collaborator used for report
// synthesis and fact-checking.
package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.3
	defaultMaxRetries  = 2
	defaultBaseBackoff = 1 * time.Second
)

// Rate limiter defaults: 30 requests per minute.
const (
	defaultRateLimit = 30.0 / 60.0
	defaultBurst     = 3
)

var (
	// ErrNotConfigured indicates no API key was provided.
	ErrNotConfigured = errors.New("generative AI not configured")

	// ErrEmptyResponse indicates the model returned no content.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Config holds configuration for the generative-AI client.
type Config struct {
	// APIKey authenticates against the Gemini API. Empty means the
	// collaborator is absent and callers fall back to heuristics.
	APIKey string

	// Model is the model name. Default: gemini-2.0-flash.
	Model string

	// Temperature for generation. Default: 0.3.
	Temperature float64
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
}

// Client is the generative-AI collaborator. Implementations must be
// safe for concurrent use.
type Client interface {
	// Generate sends a system prompt plus a user prompt and returns
	// the raw text completion.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Gemini implements Client via langchaingo's Google AI backend.
type Gemini struct {
	llm         *googleai.GoogleAI
	config      Config
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	logger      *zap.Logger
}

// NewGemini creates a Gemini-backed client. Returns ErrNotConfigured
// when no API key is set so callers can degrade instead of failing.
func NewGemini(ctx context.Context, config Config, logger *zap.Logger) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger.Info("generative AI client ready", zap.String("model", config.Model))

	return &Gemini{
		llm:         llm,
		config:      config,
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		logger:      logger,
	}, nil
}

// Generate sends the prompt and returns the completion text. Transient
// failures are retried with exponential backoff.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := g.llm.GenerateContent(ctx, messages,
			llms.WithTemperature(g.config.Temperature),
		)
		if err != nil {
			lastErr = err
			g.logger.Warn("generation attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
			lastErr = ErrEmptyResponse
			continue
		}
		return resp.Choices[0].Content, nil
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", g.maxRetries+1, lastErr)
}

var _ Client = (*Gemini)(nil)
