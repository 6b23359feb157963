package llm

import (
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// Config holds the settings of one provider adapter.
type Config struct {
	Model     string
	MaxTokens int
	// Timeout bounds one API call including retries.
	Timeout time.Duration
	// BaseURL overrides the provider endpoint; empty selects the default.
	BaseURL string
}

// DefaultClaudeConfig returns the Claude defaults.
func DefaultClaudeConfig() Config {
	return Config{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 8192,
		Timeout:   120 * time.Second,
	}
}

// DefaultOpenAIConfig returns the OpenAI defaults.
func DefaultOpenAIConfig() Config {
	return Config{
		Model:     openai.GPT4oMini,
		MaxTokens: 8192,
		Timeout:   120 * time.Second,
	}
}

// Validate checks that the config can be used.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
