package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"draftdesk/internal/domain/entity"
)

// SlackConfig configures the Slack Incoming Webhook notifier.
type SlackConfig struct {
	Enabled bool
	// WebhookURL includes the authentication token; never log it.
	WebhookURL string
	Timeout    time.Duration
}

// SlackNotifier posts Block Kit messages to a Slack Incoming Webhook.
type SlackNotifier struct {
	hook *webhook
}

// NewSlackNotifier limits sends to 1 per second, the webhook's own limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{hook: &webhook{
		service:    "Slack",
		url:        config.WebhookURL,
		client:     &http.Client{Timeout: config.Timeout},
		limiter:    NewRateLimiter(1.0, 1),
		retryDelay: defaultRetryDelay,
	}}
}

// SlackWebhookPayload is the Block Kit message body.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
)

func (s *SlackNotifier) buildPayload(article *entity.Article, externalRef string) SlackWebhookPayload {
	heading := fmt.Sprintf("*%s*", article.Title)
	if u := publishedURL(externalRef); u != "" {
		heading = fmt.Sprintf("*<%s|%s>*", u, article.Title)
	}
	section := heading + " was auto-published."
	if article.MetaDescription != "" {
		section += "\n\n" + article.MetaDescription
	}

	published := "now"
	if article.PublishedAt != nil {
		published = article.PublishedAt.UTC().Format(time.RFC3339)
	}
	footer := fmt.Sprintf("article #%d • quality %d • risk %s • %s",
		article.ID, article.QualityScore, article.RiskLevel, published)

	return SlackWebhookPayload{
		Text: truncate("Auto-published: "+article.Title, maxFallbackLength),
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength)}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: footer}}},
		},
	}
}

// NotifyPublished implements Notifier.
func (s *SlackNotifier) NotifyPublished(ctx context.Context, article *entity.Article, externalRef string) error {
	requestID := uuid.New().String()
	slog.Info("Starting Slack notification",
		slog.String("request_id", requestID),
		slog.Int64("article_id", article.ID),
		slog.String("external_ref", externalRef))

	return s.hook.send(ctx, requestID, article.ID, s.buildPayload(article, externalRef))
}
