package config

// Setting paths.
const (
	KeyProviderName        = "provider.name"
	KeyProviderModel       = "provider.model"
	KeyProviderAPIKey      = "provider.apiKey"
	KeyProviderTemperature = "provider.temperature"
	KeyProviderMaxTokens   = "provider.maxTokens"
	KeyProviderTimeout     = "provider.timeout"
	KeyProviderRate        = "provider.ratePerSecond"
	KeyProviderBurst       = "provider.burst"

	KeyAutocompleteEnabled  = "autocomplete.enabled"
	KeyAutocompleteDelay    = "autocomplete.delay"
	KeyMinContextLength     = "autocomplete.minContextLength"
	KeyContextLookback      = "autocomplete.contextLookback"
	KeyAcceptSuppressWindow = "autocomplete.suppressWindow"

	KeyGrammarEnabled = "grammar.enabled"
	KeyGrammarDelay   = "grammar.delay"

	KeyRateLimitBackoff = "rateLimit.backoff"

	KeyLogLevel  = "logging.level"
	KeyLogFormat = "logging.format"
	KeyLogFile   = "logging.file"
)

// keyPath is where the API key for a vendor is looked up when
// provider.apiKey is unset.
func keyPath(vendor string) string {
	return "keys." + vendor
}

// defaults returns the built-in layer. An empty provider.model means the
// vendor's default model.
func defaults() map[string]any {
	return map[string]any{
		"provider": map[string]any{
			"name":          "openai",
			"model":         "",
			"apiKey":        "",
			"temperature":   0.3,
			"maxTokens":     int64(50),
			"timeout":       "30s",
			"ratePerSecond": 2.0,
			"burst":         int64(4),
		},
		"keys": map[string]any{},
		"autocomplete": map[string]any{
			"enabled":          true,
			"delay":            "500ms",
			"minContextLength": int64(10),
			"contextLookback":  int64(500),
			"suppressWindow":   "100ms",
		},
		"grammar": map[string]any{
			"enabled": true,
			"delay":   "2s",
		},
		"rateLimit": map[string]any{
			"backoff": "60s",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "console",
			"file":   "",
		},
	}
}
