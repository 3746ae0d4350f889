// Package llm wraps the remote completion service behind a narrow client
// interface and a retrying invoker. The engine treats the service as an
// opaque call with one distinguished failure mode: rate limiting.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// ErrRateLimited is the distinguished transient failure from the completion
// service. It is the only error the Invoker retries.
var ErrRateLimited = errors.New("completion service rate limited")

// Client is the minimal surface the engine needs from a completion service.
type Client interface {
	Generate(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (string, error)
}

// Config holds completion client configuration.
type Config struct {
	BaseURL           string
	Model             string
	APIKey            string
	Temperature       float64
	MaxTokens         int
	RequestsPerSecond float64
	Burst             int
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	return nil
}

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint
// through langchaingo. An outbound token-bucket limiter paces requests to
// stay under provider quotas.
type OpenAIClient struct {
	llm         *openai.LLM
	limiter     *rate.Limiter
	temperature float64
	maxTokens   int
}

// NewOpenAIClient creates a completion client with the given configuration.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &OpenAIClient{
		llm:         client,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate sends the message sequence to the completion service and returns
// the first choice's text. Rate-limit failures come back wrapped in
// ErrRateLimited so callers can distinguish them from everything else.
func (c *OpenAIClient) Generate(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	// Defaults first so per-call options win.
	callOpts := []llms.CallOption{
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	}
	callOpts = append(callOpts, opts...)

	resp, err := c.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		if looksRateLimited(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion service")
	}
	return resp.Choices[0].Content, nil
}

// IsRateLimit reports whether err is the distinguished transient failure.
func IsRateLimit(err error) bool {
	return err != nil && (errors.Is(err, ErrRateLimited) || looksRateLimited(err))
}

// looksRateLimited sniffs provider error text for 429-style failures, which
// surface as plain errors from the underlying SDK.
func looksRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit")
}

var _ Client = (*OpenAIClient)(nil)
