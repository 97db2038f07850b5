package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinKeyLength is the shortest accepted CSRF or session signing key.
const MinKeyLength = 32

// Config holds all application configuration.
type Config struct {
	// Analysis service
	LLMProvider     string // "gemini" or "claude" (default: gemini)
	LLMModel        string // empty selects the provider default
	LLMTimeout      time.Duration
	GeminiAPIKey    string
	AnthropicAPIKey string

	// Profile
	ProfilePath string // empty uses the embedded default

	// Web
	ListenAddr         string
	AccessPassword     string
	AccessPasswordHash string
	CSRFKey            string
	SessionKey         string
	SessionTTL         time.Duration
	SecureCookies      bool

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:           getEnv("LLM_MODEL", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		ProfilePath:        getEnv("PROFILE_PATH", ""),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		AccessPassword:     getEnv("ACCESS_PASSWORD", ""),
		AccessPasswordHash: getEnv("ACCESS_PASSWORD_HASH", ""),
		CSRFKey:            getEnv("CSRF_KEY", ""),
		SessionKey:         getEnv("SESSION_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	// Parse durations
	var err error
	cfg.LLMTimeout, err = time.ParseDuration(getEnv("LLM_TIMEOUT", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	// Parse booleans
	cfg.SecureCookies, err = strconv.ParseBool(getEnv("SECURE_COOKIES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIES: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "gemini", "claude", "":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER: %s (must be 'gemini' or 'claude')", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	return nil
}

// ValidateForAnalyze checks configuration needed for a one-shot analysis.
// The credential itself may still come from a flag.
func (c *Config) ValidateForAnalyze() error {
	return c.Validate()
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if c.AccessPassword == "" && c.AccessPasswordHash == "" {
		return fmt.Errorf("ACCESS_PASSWORD or ACCESS_PASSWORD_HASH is required for serve")
	}
	if len(c.CSRFKey) < MinKeyLength {
		return fmt.Errorf("CSRF_KEY must be at least %d bytes", MinKeyLength)
	}
	if len(c.SessionKey) < MinKeyLength {
		return fmt.Errorf("SESSION_KEY must be at least %d bytes", MinKeyLength)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// APIKeyForProvider returns the environment credential for the active
// provider, or an empty string.
func (c *Config) APIKeyForProvider() string {
	if c.LLMProvider == "claude" {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
