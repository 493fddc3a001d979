package config

import (
	"strings"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/logging"
	"github.com/dshills/proofline/internal/provider"
)

var _ assist.SettingsSource = (*Config)(nil)

// Settings returns the engine's view of the current configuration. Values
// of the wrong type fall back to the defaults and are recorded in
// ConfigErrors.
func (c *Config) Settings() assist.Settings {
	def := assist.DefaultSettings()

	name := strings.ToLower(strings.TrimSpace(c.getStringOr(KeyProviderName, def.Provider)))
	model := c.getStringOr(KeyProviderModel, "")
	if model == "" {
		model = provider.DefaultModel(name)
	}

	return assist.Settings{
		Provider:    name,
		Model:       model,
		APIKey:      c.apiKey(name),
		Temperature: c.getFloatOr(KeyProviderTemperature, def.Temperature),
		MaxTokens:   c.getIntOr(KeyProviderMaxTokens, def.MaxTokens),

		AutocompleteEnabled: c.getBoolOr(KeyAutocompleteEnabled, def.AutocompleteEnabled),
		GrammarEnabled:      c.getBoolOr(KeyGrammarEnabled, def.GrammarEnabled),

		AutocompleteDelay: c.getDurationOr(KeyAutocompleteDelay, def.AutocompleteDelay),
		GrammarDelay:      c.getDurationOr(KeyGrammarDelay, def.GrammarDelay),

		MinContextLength: c.getIntOr(KeyMinContextLength, def.MinContextLength),
		ContextLookback:  c.getIntOr(KeyContextLookback, def.ContextLookback),

		RateLimitBackoff:     c.getDurationOr(KeyRateLimitBackoff, def.RateLimitBackoff),
		AcceptSuppressWindow: c.getDurationOr(KeyAcceptSuppressWindow, def.AcceptSuppressWindow),
		RequestTimeout:       c.getDurationOr(KeyProviderTimeout, def.RequestTimeout),
	}
}

// apiKey prefers provider.apiKey and falls back to keys.<vendor>.
func (c *Config) apiKey(vendor string) string {
	if key := strings.TrimSpace(c.getStringOr(KeyProviderAPIKey, "")); key != "" {
		return key
	}
	return strings.TrimSpace(c.getStringOr(keyPath(vendor), ""))
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:  c.getStringOr(KeyLogLevel, "info"),
		Format: c.getStringOr(KeyLogFormat, "console"),
		File:   c.getStringOr(KeyLogFile, ""),
	}
}

// Pacing is the client-side request rate for provider calls.
type Pacing struct {
	PerSecond float64
	Burst     int
}

// Pacing returns the provider request pacing. A non-positive rate
// disables pacing.
func (c *Config) Pacing() Pacing {
	return Pacing{
		PerSecond: c.getFloatOr(KeyProviderRate, 2),
		Burst:     c.getIntOr(KeyProviderBurst, 4),
	}
}
