// Package ai talks to OpenAI-compatible chat completion providers and wraps
// them in best-effort helpers (rating, encouragement, summary) that always
// answer with a usable value.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/metrics"
)

var (
	ErrNoProvider    = errors.New("no AI provider configured")
	ErrEmptyResponse = errors.New("AI provider returned no choices")
)

// Completer produces a single chat completion. task labels the call for logs
// and metrics.
type Completer interface {
	Complete(ctx context.Context, task, system, prompt string) (string, error)
}

// Provider is one OpenAI-compatible endpoint.
type Provider struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
}

// Options tune the Client. Zero values fall back to defaults.
type Options struct {
	Timeout          time.Duration
	RatePerSec       float64
	MaxTokens        int64
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HTTPClient       *http.Client
}

type provider struct {
	name    string
	model   string
	client  openaigo.Client
	breaker *gobreaker.CircuitBreaker[string]
}

// Client tries its providers in order until one answers. Each provider sits
// behind its own circuit breaker; all of them share one rate limiter.
type Client struct {
	providers []*provider
	limiter   *rate.Limiter
	timeout   time.Duration
	maxTokens int64
}

// ProvidersFromConfig returns the configured providers in priority order
// (GLM, DeepSeek, OpenAI). Providers without an API key are skipped.
func ProvidersFromConfig(cfg *config.Config) []Provider {
	all := []Provider{
		{Name: "glm", BaseURL: cfg.GLMBaseURL, APIKey: cfg.GLMAPIKey, Model: cfg.GLMModel},
		{Name: "deepseek", BaseURL: cfg.DeepSeekBaseURL, APIKey: cfg.DeepSeekAPIKey, Model: cfg.DeepSeekModel},
		{Name: "openai", BaseURL: cfg.OpenAIBaseURL, APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
	}
	out := make([]Provider, 0, len(all))
	for _, p := range all {
		if strings.TrimSpace(p.APIKey) != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewClient(providers []Provider, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 5
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	burst := int(opts.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSec), burst),
		timeout:   opts.Timeout,
		maxTokens: opts.MaxTokens,
	}

	for _, p := range providers {
		threshold := opts.FailureThreshold
		c.providers = append(c.providers, &provider{
			name:  p.Name,
			model: p.Model,
			client: openaigo.NewClient(
				option.WithBaseURL(p.BaseURL),
				option.WithAPIKey(strings.TrimSpace(p.APIKey)),
				option.WithHTTPClient(opts.HTTPClient),
				option.WithMaxRetries(0),
				option.WithRequestTimeout(opts.Timeout),
			),
			breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
				Name:        "ai-" + p.Name,
				MaxRequests: 1,
				Timeout:     opts.OpenTimeout,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= threshold
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					slog.Warn("AI circuit breaker state changed", "action", "ai_breaker",
						"breaker", name, "from", from.String(), "to", to.String())
				},
			}),
		})
	}
	return c
}

// NewClientFromConfig builds a Client for every provider with an API key.
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(ProvidersFromConfig(cfg), Options{
		Timeout:    cfg.AITimeout,
		RatePerSec: cfg.AIRatePerSec,
	})
}

// Enabled reports whether at least one provider is configured.
func (c *Client) Enabled() bool { return len(c.providers) > 0 }

// Complete asks each provider in turn and returns the first non-empty answer.
// The whole chain, rate limiter waits included, shares one timeout.
func (c *Client) Complete(ctx context.Context, task, system, prompt string) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var errs []error
	for _, p := range c.providers {
		out, err := c.call(ctx, task, p, system, prompt)
		if err == nil {
			return out, nil
		}
		slog.Warn("AI provider failed", "action", "ai_"+task, "provider", p.name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

func (c *Client) call(ctx context.Context, task string, p *provider, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	out, err := p.breaker.Execute(func() (string, error) {
		resp, err := p.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
			Model: openaigo.ChatModel(p.model),
			Messages: []openaigo.ChatCompletionMessageParamUnion{
				openaigo.SystemMessage(system),
				openaigo.UserMessage(prompt),
			},
			MaxTokens: openaigo.Int(c.maxTokens),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return "", ErrEmptyResponse
		}
		return content, nil
	})
	metrics.ObserveAI(task, p.name, err, time.Since(start))
	return out, err
}
