package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"draftdesk/internal/resilience/circuitbreaker"
	"draftdesk/internal/resilience/retry"
	"draftdesk/internal/usecase/revision"
	"draftdesk/internal/usecase/strategy"
	"draftdesk/internal/utils/text"
)

// OpenAI implements revision.Generator and revision.Humanizer with the
// Chat Completions API.
type OpenAI struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	config          Config
	metricsRecorder MetricsRecorder
}

// NewOpenAI creates an OpenAI adapter.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized OpenAI provider",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientCfg),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		config:          cfg,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

func (o *OpenAI) Name() string { return "openai" }

// Generate asks the model for a revision of req. JSON mode is requested, but
// a non-JSON answer still degrades to plain content.
func (o *OpenAI) Generate(ctx context.Context, req strategy.Request) (*revision.Generation, error) {
	out, err := o.complete(ctx, "generate", generationSystemPrompt, req.Prompt(), true)
	if err != nil {
		return nil, err
	}
	gen, structured := ParseGeneration(out)
	if !structured {
		o.metricsRecorder.RecordPlainFallback(o.Name())
		slog.WarnContext(ctx, "openai answer was not JSON, using it as plain content",
			slog.Int("length", text.CountRunes(out)))
	}
	return gen, nil
}

// Humanize rewrites content in the given style.
func (o *OpenAI) Humanize(ctx context.Context, content, style string) (string, error) {
	out, err := o.complete(ctx, "humanize", humanizeSystemPrompt, humanizePrompt(content, style), false)
	if err != nil {
		return "", err
	}
	return StripCodeFence(out), nil
}

func (o *OpenAI) complete(ctx context.Context, operation, system, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	return guarded(ctx, o.Name(), o.circuitBreaker, o.retryConfig, func() (string, error) {
		return o.doComplete(ctx, operation, system, prompt, jsonMode)
	})
}

// doComplete performs one API call without retry or circuit breaker.
func (o *OpenAI) doComplete(ctx context.Context, operation, system, prompt string, jsonMode bool) (string, error) {
	requestID := uuid.New().String()

	req := openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	slog.InfoContext(ctx, "Starting openai request",
		slog.String("request_id", requestID),
		slog.String("operation", operation),
		slog.Int("input_length", text.CountRunes(prompt)))

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	o.metricsRecorder.RecordDuration(o.Name(), operation, duration)

	if err != nil {
		slog.ErrorContext(ctx, "openai request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai api error: %w", statusError(apiErr.HTTPStatusCode))
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", fmt.Errorf("openai api error: %w", statusError(reqErr.HTTPStatusCode))
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		slog.ErrorContext(ctx, "openai returned no text",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	out := resp.Choices[0].Message.Content
	length := text.CountRunes(out)
	o.metricsRecorder.RecordOutputLength(o.Name(), operation, length)
	slog.InfoContext(ctx, "openai request completed",
		slog.String("request_id", requestID),
		slog.String("operation", operation),
		slog.Int("output_length", length),
		slog.Duration("duration", duration))
	return out, nil
}
