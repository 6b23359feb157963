package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"draftdesk/internal/infra/lock"
	"draftdesk/internal/infra/notifier"
	"draftdesk/internal/infra/publisher"
	pkgconfig "draftdesk/internal/pkg/config"
)

const webhookTimeout = 30 * time.Second

// Integrations holds the settings of the external systems the engine talks to.
type Integrations struct {
	// RedisAddr is empty when locks are process-local.
	RedisAddr     string
	RedisPassword string
	LockTTL       time.Duration
	WordPress     publisher.Config
	Slack         notifier.SlackConfig
	Discord       notifier.DiscordConfig
}

// LoadIntegrations reads integration settings from the environment.
// Notification channels with an invalid webhook URL are disabled with a
// warning; an invalid WordPress config is an error.
func LoadIntegrations(logger *slog.Logger) (*Integrations, error) {
	cfg := &Integrations{
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Slack:         loadSlackConfig(logger),
		Discord:       loadDiscordConfig(logger),
	}

	r := pkgconfig.LoadEnvDuration("LOCK_TTL", lock.DefaultTTL, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, 30*time.Second, time.Hour)
	})
	cfg.LockTTL = r.Value.(time.Duration)
	logWarnings(logger, "lock_ttl", r)

	r = pkgconfig.LoadEnvDuration("WORDPRESS_TIMEOUT", 30*time.Second, pkgconfig.ValidatePositiveDuration)
	logWarnings(logger, "wordpress_timeout", r)
	cfg.WordPress = publisher.Config{
		BaseURL:     strings.TrimRight(os.Getenv("WORDPRESS_URL"), "/"),
		Username:    os.Getenv("WORDPRESS_USERNAME"),
		AppPassword: os.Getenv("WORDPRESS_APP_PASSWORD"),
		Timeout:     r.Value.(time.Duration),
		PostStatus:  pkgconfig.LoadEnvString("WORDPRESS_POST_STATUS", "publish"),
	}
	if err := cfg.WordPress.Validate(); err != nil {
		return nil, fmt.Errorf("wordpress config: %w", err)
	}
	return cfg, nil
}

func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	if os.Getenv("SLACK_ENABLED") != "true" {
		return notifier.SlackConfig{}
	}
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if err := validateWebhookURL(webhookURL, "hooks.slack.com", "/services/"); err != nil {
		logger.Warn("Invalid Slack webhook URL, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{}
	}
	return notifier.SlackConfig{Enabled: true, WebhookURL: webhookURL, Timeout: webhookTimeout}
}

func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	if os.Getenv("DISCORD_ENABLED") != "true" {
		return notifier.DiscordConfig{}
	}
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if err := validateWebhookURL(webhookURL, "discord.com", "/api/webhooks/"); err != nil {
		logger.Warn("Invalid Discord webhook URL, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{}
	}
	return notifier.DiscordConfig{Enabled: true, WebhookURL: webhookURL, Timeout: webhookTimeout}
}

// validateWebhookURL rejects anything but https://host/pathPrefix... so a
// misconfigured variable cannot leak article data to another host.
// Errors never include the URL itself, which carries the token.
func validateWebhookURL(raw, host, pathPrefix string) error {
	if raw == "" {
		return fmt.Errorf("webhook URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed webhook URL")
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use https")
	}
	if u.Host != host {
		return fmt.Errorf("unexpected webhook host %q", u.Host)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("webhook path must start with %s", pathPrefix)
	}
	return nil
}
