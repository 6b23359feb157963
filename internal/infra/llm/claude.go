package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"draftdesk/internal/resilience/circuitbreaker"
	"draftdesk/internal/resilience/retry"
	"draftdesk/internal/usecase/revision"
	"draftdesk/internal/usecase/strategy"
	"draftdesk/internal/utils/text"
)

// Claude implements revision.Generator and revision.Humanizer with
// Anthropic's Messages API.
type Claude struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

// NewClaude creates a Claude adapter. The SDK's own retries are disabled;
// retries go through retry.WithBackoff so they stay bounded and observable.
func NewClaude(apiKey string, cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude provider",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens),
		slog.Duration("timeout", cfg.Timeout))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

func (c *Claude) Name() string { return "claude" }

// Generate asks Claude for a revision of req.
func (c *Claude) Generate(ctx context.Context, req strategy.Request) (*revision.Generation, error) {
	out, err := c.complete(ctx, "generate", generationSystemPrompt, req.Prompt())
	if err != nil {
		return nil, err
	}
	gen, structured := ParseGeneration(out)
	if !structured {
		c.metricsRecorder.RecordPlainFallback(c.Name())
		slog.WarnContext(ctx, "claude answer was not JSON, using it as plain content",
			slog.Int("length", text.CountRunes(out)))
	}
	return gen, nil
}

// Humanize rewrites content in the given style.
func (c *Claude) Humanize(ctx context.Context, content, style string) (string, error) {
	out, err := c.complete(ctx, "humanize", humanizeSystemPrompt, humanizePrompt(content, style))
	if err != nil {
		return "", err
	}
	return StripCodeFence(out), nil
}

func (c *Claude) complete(ctx context.Context, operation, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	return guarded(ctx, c.Name(), c.circuitBreaker, c.retryConfig, func() (string, error) {
		return c.doComplete(ctx, operation, system, prompt)
	})
}

// doComplete performs one API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, operation, system, prompt string) (string, error) {
	requestID := uuid.New().String()

	slog.InfoContext(ctx, "Starting claude request",
		slog.String("request_id", requestID),
		slog.String("operation", operation),
		slog.Int("input_length", text.CountRunes(prompt)))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)
	c.metricsRecorder.RecordDuration(c.Name(), operation, duration)

	if err != nil {
		slog.ErrorContext(ctx, "claude request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude api error: %w", statusError(apiErr.StatusCode))
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	out := b.String()
	if strings.TrimSpace(out) == "" {
		slog.ErrorContext(ctx, "claude returned no text",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	length := text.CountRunes(out)
	c.metricsRecorder.RecordOutputLength(c.Name(), operation, length)
	slog.InfoContext(ctx, "claude request completed",
		slog.String("request_id", requestID),
		slog.String("operation", operation),
		slog.Int("output_length", length),
		slog.Duration("duration", duration))
	return out, nil
}
