package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

const defaultTimeout = 120 * time.Second

// Completer sends one system/user exchange to a generative-text service and
// returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string

	// BaseURL overrides the provider endpoint. Empty means the public API.
	BaseURL string
	Timeout time.Duration
}

// New returns a Completer for cfg.Provider. An empty provider means Gemini.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case ProviderClaude:
		return NewClaudeClient(ClaudeConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (must be 'gemini' or 'claude')", cfg.Provider)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if strings.ToLower(provider) == ProviderClaude {
		return defaultClaudeModel
	}
	return defaultGeminiModel
}
