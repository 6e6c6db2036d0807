package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.OpenAI.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}

	if c.Integrations.BaseURL == "" {
		errs = append(errs, "INTEGRATIONS_BASE_URL is required")
	} else if !strings.HasPrefix(c.Integrations.BaseURL, "http://") &&
		!strings.HasPrefix(c.Integrations.BaseURL, "https://") {
		errs = append(errs, "INTEGRATIONS_BASE_URL must start with http:// or https://")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.Voice.HistoryLimit > c.Voice.HistoryMax {
		errs = append(errs, fmt.Sprintf("VOICE_HISTORY_LIMIT (%d) must not exceed VOICE_HISTORY_MAX (%d)",
			c.Voice.HistoryLimit, c.Voice.HistoryMax))
	}
	if c.Voice.StatusTTL <= 0 {
		errs = append(errs, "VOICE_STATUS_TTL must be positive")
	}
	if c.Voice.RateLimit < 1 {
		errs = append(errs, "VOICE_RATE_LIMIT must be at least 1")
	}

	// Integrations API key: warn only
	if c.Integrations.APIKey == "" {
		slog.Warn("INTEGRATIONS_API_KEY is empty, integrations requests are unauthenticated")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
