package config

import (
	"errors"
	"slices"

	"github.com/dshills/proofline/internal/logging"
	"github.com/dshills/proofline/internal/provider"
)

// Validate checks the merged settings and returns every problem found,
// joined. Type errors recorded by the accessors are included.
func (c *Config) Validate() error {
	s := c.Settings()
	var errs []error

	check := func(ok bool, path string, value any, msg string) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
		}
	}

	check(slices.Contains(provider.Names(), s.Provider), KeyProviderName, s.Provider, "unknown provider")
	check(s.Temperature >= 0 && s.Temperature <= 2, KeyProviderTemperature, s.Temperature, "must be between 0 and 2")
	check(s.MaxTokens > 0, KeyProviderMaxTokens, s.MaxTokens, "must be positive")
	check(s.AutocompleteDelay >= 0, KeyAutocompleteDelay, s.AutocompleteDelay, "must not be negative")
	check(s.GrammarDelay >= 0, KeyGrammarDelay, s.GrammarDelay, "must not be negative")
	check(s.MinContextLength >= 0, KeyMinContextLength, s.MinContextLength, "must not be negative")
	check(s.ContextLookback > 0, KeyContextLookback, s.ContextLookback, "must be positive")
	check(s.RateLimitBackoff > 0, KeyRateLimitBackoff, s.RateLimitBackoff, "must be positive")
	check(s.AcceptSuppressWindow >= 0, KeyAcceptSuppressWindow, s.AcceptSuppressWindow, "must not be negative")
	check(s.RequestTimeout > 0, KeyProviderTimeout, s.RequestTimeout, "must be positive")

	lc := c.Logging()
	check(logging.ValidLevel(lc.Level), KeyLogLevel, lc.Level, "unknown log level")
	check(logging.ValidFormat(lc.Format), KeyLogFormat, lc.Format, "must be console or json")

	p := c.Pacing()
	check(p.PerSecond <= 0 || p.Burst > 0, KeyProviderBurst, p.Burst, "must be positive when pacing is enabled")

	errs = append(errs, c.ConfigErrors()...)
	return errors.Join(errs...)
}
