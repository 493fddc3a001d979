package assist

import (
	"strings"
	"time"
)

// Settings are the user-tunable knobs read on every scheduling decision.
type Settings struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int

	AutocompleteEnabled bool
	GrammarEnabled      bool

	AutocompleteDelay time.Duration
	GrammarDelay      time.Duration

	// MinContextLength is the minimum number of non-blank characters
	// before the cursor needed to ask for a continuation.
	MinContextLength int

	// ContextLookback bounds how many bytes before the cursor are sent.
	ContextLookback int

	RateLimitBackoff     time.Duration
	AcceptSuppressWindow time.Duration
	RequestTimeout       time.Duration
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Provider:             "openai",
		Model:                "gpt-4o-mini",
		Temperature:          0.3,
		MaxTokens:            50,
		AutocompleteEnabled:  true,
		GrammarEnabled:       true,
		AutocompleteDelay:    500 * time.Millisecond,
		GrammarDelay:         2 * time.Second,
		MinContextLength:     10,
		ContextLookback:      500,
		RateLimitBackoff:     60 * time.Second,
		AcceptSuppressWindow: 100 * time.Millisecond,
		RequestTimeout:       30 * time.Second,
	}
}

// HasCredential reports whether an API key is configured.
func (s Settings) HasCredential() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// SettingsSource supplies the current settings.
type SettingsSource interface {
	Settings() Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings Settings

// Settings returns s.
func (s StaticSettings) Settings() Settings {
	return Settings(s)
}

// SettingsFunc adapts a function to SettingsSource.
type SettingsFunc func() Settings

// Settings calls f.
func (f SettingsFunc) Settings() Settings {
	return f()
}
