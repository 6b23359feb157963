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

// DiscordConfig configures the Discord webhook notifier.
type DiscordConfig struct {
	Enabled bool
	// WebhookURL includes the authentication token; never log it.
	WebhookURL string
	Timeout    time.Duration
}

// DiscordNotifier posts embeds to a Discord webhook.
type DiscordNotifier struct {
	hook *webhook
}

// NewDiscordNotifier limits sends to 30 per minute with a burst of 3.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{hook: &webhook{
		service:    "Discord",
		url:        config.WebhookURL,
		client:     &http.Client{Timeout: config.Timeout},
		limiter:    NewRateLimiter(0.5, 3),
		retryDelay: defaultRetryDelay,
	}}
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url,omitempty"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp,omitempty"`
}

type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096

	discordGreenColor = 5763719 // #57F287
)

func (d *DiscordNotifier) buildPayload(article *entity.Article, externalRef string) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title:       truncate(article.Title, maxTitleLength),
		Description: truncate(article.MetaDescription, maxDescriptionLength),
		URL:         publishedURL(externalRef),
		Color:       discordGreenColor,
		Footer: DiscordEmbedFooter{
			Text: fmt.Sprintf("article #%d • quality %d • risk %s", article.ID, article.QualityScore, article.RiskLevel),
		},
	}
	if article.PublishedAt != nil {
		embed.Timestamp = article.PublishedAt.UTC().Format(time.RFC3339)
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// NotifyPublished implements Notifier.
func (d *DiscordNotifier) NotifyPublished(ctx context.Context, article *entity.Article, externalRef string) error {
	requestID := uuid.New().String()
	slog.Info("Starting Discord notification",
		slog.String("request_id", requestID),
		slog.Int64("article_id", article.ID),
		slog.String("external_ref", externalRef))

	return d.hook.send(ctx, requestID, article.ID, d.buildPayload(article, externalRef))
}
