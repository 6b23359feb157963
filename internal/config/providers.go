package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	pkgconfig "draftdesk/internal/pkg/config"
)

// Provider names accepted by GENERATION_PRIMARY.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// ErrNoProvider is returned when neither API key is set.
var ErrNoProvider = errors.New("no generation provider configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY")

// ProviderConfig holds the LLM provider settings.
type ProviderConfig struct {
	// API keys are secrets; never log them.
	AnthropicAPIKey string
	OpenAIAPIKey    string
	ClaudeModel     string
	OpenAIModel     string
	// Primary is tried first; the other configured provider is the fallback.
	Primary         string
	ProviderTimeout time.Duration
	HumanizeStyle   string
}

// LoadProviderConfig reads the provider settings from the environment.
func LoadProviderConfig(logger *slog.Logger) (*ProviderConfig, error) {
	cfg := &ProviderConfig{
		AnthropicAPIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		ClaudeModel:     os.Getenv("CLAUDE_MODEL"),
		OpenAIModel:     os.Getenv("OPENAI_MODEL"),
		HumanizeStyle:   pkgconfig.LoadEnvString("HUMANIZE_STYLE", "conversational"),
	}

	r := pkgconfig.LoadEnvWithFallback("GENERATION_PRIMARY", ProviderClaude, func(s string) error {
		switch strings.ToLower(s) {
		case ProviderClaude, ProviderOpenAI:
			return nil
		}
		return fmt.Errorf("must be %q or %q", ProviderClaude, ProviderOpenAI)
	})
	cfg.Primary = strings.ToLower(r.Value.(string))
	logWarnings(logger, "generation_primary", r)

	r = pkgconfig.LoadEnvDuration("PROVIDER_TIMEOUT", 90*time.Second, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, 5*time.Second, 10*time.Minute)
	})
	cfg.ProviderTimeout = r.Value.(time.Duration)
	logWarnings(logger, "provider_timeout", r)

	if cfg.AnthropicAPIKey == "" && cfg.OpenAIAPIKey == "" {
		return nil, ErrNoProvider
	}
	return cfg, nil
}

// Order returns the configured providers, primary first.
func (c *ProviderConfig) Order() []string {
	var order []string
	for _, name := range []string{c.Primary, ProviderClaude, ProviderOpenAI} {
		if !c.has(name) || contains(order, name) {
			continue
		}
		order = append(order, name)
	}
	return order
}

func (c *ProviderConfig) has(name string) bool {
	switch name {
	case ProviderClaude:
		return c.AnthropicAPIKey != ""
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func logWarnings(logger *slog.Logger, field string, r pkgconfig.ConfigLoadResult) {
	for _, w := range r.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", w))
	}
}
