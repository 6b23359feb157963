// Package publisher delivers articles to the public site through the
// WordPress REST API.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/resilience/circuitbreaker"
	"draftdesk/internal/resilience/retry"
	"draftdesk/internal/usecase/autopublish"
)

// Config configures the WordPress publisher.
type Config struct {
	BaseURL string // site root, e.g. https://blog.example.com
	// Username and AppPassword are WordPress application-password credentials.
	Username    string
	AppPassword string
	Timeout     time.Duration
	// RequestsPerSecond caps publish calls; 0 means 1.
	RequestsPerSecond float64
	// PostStatus is the WordPress status to create posts with; empty means "publish".
	PostStatus string
}

// Validate checks the settings needed to reach the site.
func (c Config) Validate() error {
	if err := entity.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("publisher base URL: %w", err)
	}
	if c.Username == "" || c.AppPassword == "" {
		return errors.New("publisher credentials are required")
	}
	return nil
}

// WordPress implements autopublish.Publisher.
type WordPress struct {
	cfg            Config
	httpClient     *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewWordPress(cfg Config) *WordPress {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.PostStatus == "" {
		cfg.PostStatus = "publish"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &WordPress{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.PublisherConfig()),
		retryConfig:    retry.PublishConfig(),
	}
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
	Status  string `json:"status"`
	Slug    string `json:"slug,omitempty"`
}

type postResponse struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

type wpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Publish creates the post. A 4xx answer is a rejection reported in the
// result; transport failures and 5xx answers are returned as errors after
// bounded retries.
func (w *WordPress) Publish(ctx context.Context, a *entity.Article) (*autopublish.PublishResult, error) {
	requestID := uuid.New().String()
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var result *autopublish.PublishResult
	err := retry.WithBackoff(ctx, w.retryConfig, func() error {
		res, err := circuitbreaker.Run(w.circuitBreaker, func() (*autopublish.PublishResult, error) {
			return w.doPublish(ctx, requestID, a)
		})
		if err != nil {
			if circuitbreaker.IsOpenErr(err) {
				return fmt.Errorf("publisher unavailable: circuit breaker open")
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (w *WordPress) doPublish(ctx context.Context, requestID string, a *entity.Article) (*autopublish.PublishResult, error) {
	body, err := json.Marshal(postRequest{
		Title:   a.Title,
		Content: a.Content,
		Excerpt: a.MetaDescription,
		Status:  w.cfg.PostStatus,
		Slug:    slugify(a.Title),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL+"/wp-json/wp/v2/posts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	req.SetBasicAuth(w.cfg.Username, w.cfg.AppPassword)

	start := time.Now()
	resp, err := w.httpClient.Do(req)
	if err != nil {
		slog.Error("wordpress request failed",
			slog.String("request_id", requestID),
			slog.Int64("article_id", a.ID),
			slog.Any("error", err))
		return nil, fmt.Errorf("post to wordpress: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	slog.Info("wordpress responded",
		slog.String("request_id", requestID),
		slog.Int64("article_id", a.ID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var post postResponse
		if err := json.Unmarshal(raw, &post); err != nil {
			return nil, fmt.Errorf("decode wordpress response: %w", err)
		}
		ref := post.Link
		if ref == "" {
			ref = "wp:" + strconv.FormatInt(post.ID, 10)
		}
		return &autopublish.PublishResult{Success: true, ExternalRef: ref}, nil

	case retryableStatus(resp.StatusCode):
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}

	default:
		return &autopublish.PublishResult{
			Success: false,
			Error:   fmt.Sprintf("wordpress rejected the post (HTTP %d): %s", resp.StatusCode, errorMessage(raw, resp.StatusCode)),
		}, nil
	}
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func errorMessage(raw []byte, status int) string {
	var e wpError
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		if e.Code != "" {
			return e.Code + ": " + e.Message
		}
		return e.Message
	}
	return http.StatusText(status)
}

// slugify lowercases s and joins its ASCII letters and digits with dashes.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// retryAfter parses a Retry-After header given in seconds. Dates are ignored.
func retryAfter(h string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
