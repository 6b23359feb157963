package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"draftdesk/internal/resilience/circuitbreaker"
	"draftdesk/internal/resilience/retry"
)

// guarded runs fn through the breaker with bounded retries.
func guarded(ctx context.Context, provider string, cb *circuitbreaker.CircuitBreaker, rc retry.Config, fn func() (string, error)) (string, error) {
	var result string
	retryErr := retry.WithBackoff(ctx, rc, func() error {
		out, err := circuitbreaker.Run(cb, fn)
		if err != nil {
			if circuitbreaker.IsOpenErr(err) {
				slog.Warn("ai provider circuit breaker open, request rejected",
					slog.String("service", cb.Name()),
					slog.String("state", cb.State().String()))
				return fmt.Errorf("%s api unavailable: circuit breaker open", provider)
			}
			return err
		}
		result = out
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s call failed: %w", provider, retryErr)
	}
	return result, nil
}

// statusError maps an HTTP status from an SDK error onto retry.HTTPError so
// that retry.IsRetryable can classify it.
func statusError(code int) *retry.HTTPError {
	return &retry.HTTPError{StatusCode: code, Message: http.StatusText(code)}
}
