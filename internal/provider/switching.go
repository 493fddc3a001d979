package provider

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/assist"
)

// Builder creates a provider for the given settings.
type Builder func(ctx context.Context, s assist.Settings) (assist.Provider, error)

// ClientBuilder returns a Builder that creates a Client, wrapped in Paced
// when perSecond is positive.
func ClientBuilder(logger *zap.Logger, perSecond float64, burst int) Builder {
	return func(ctx context.Context, s assist.Settings) (assist.Provider, error) {
		c, err := New(ctx, Options{
			Name:    s.Provider,
			APIKey:  s.APIKey,
			Model:   s.Model,
			Timeout: s.RequestTimeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		if perSecond <= 0 {
			return c, nil
		}
		return NewPaced(c, perSecond, burst), nil
	}
}

// Switching follows the current settings, rebuilding its provider when
// the vendor, model or key changes. Reloading configuration therefore
// takes effect on the next call.
type Switching struct {
	source assist.SettingsSource
	build  Builder
	logger *zap.Logger

	mu      sync.Mutex
	key     switchKey
	current assist.Provider
}

type switchKey struct {
	name, model, apiKey string
}

var _ assist.Provider = (*Switching)(nil)

// NewSwitching creates a provider driven by source.
func NewSwitching(source assist.SettingsSource, build Builder, logger *zap.Logger) *Switching {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Switching{source: source, build: build, logger: logger}
}

func (s *Switching) provider(ctx context.Context) (assist.Provider, error) {
	settings := s.source.Settings()
	key := switchKey{name: settings.Provider, model: settings.Model, apiKey: settings.APIKey}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.key == key {
		return s.current, nil
	}
	p, err := s.build(ctx, settings)
	if err != nil {
		return nil, err
	}
	if s.current != nil {
		s.logger.Info("provider switched",
			zap.String("provider", key.name),
			zap.String("model", key.model),
		)
	}
	s.current, s.key = p, key
	return p, nil
}

// Autocomplete implements assist.Provider.
func (s *Switching) Autocomplete(ctx context.Context, contextBefore string, temperature float64, maxTokens int) (string, error) {
	p, err := s.provider(ctx)
	if err != nil {
		return "", err
	}
	return p.Autocomplete(ctx, contextBefore, temperature, maxTokens)
}

// GrammarSuggestions implements assist.Provider.
func (s *Switching) GrammarSuggestions(ctx context.Context, text string, temperature float64) (string, error) {
	p, err := s.provider(ctx)
	if err != nil {
		return "", err
	}
	return p.GrammarSuggestions(ctx, text, temperature)
}

// CorrectText implements assist.Provider.
func (s *Switching) CorrectText(ctx context.Context, text string, temperature float64) (string, error) {
	p, err := s.provider(ctx)
	if err != nil {
		return "", err
	}
	return p.CorrectText(ctx, text, temperature)
}

// TestConnection implements assist.Provider.
func (s *Switching) TestConnection(ctx context.Context, apiKey, model string) (bool, error) {
	p, err := s.provider(ctx)
	if err != nil {
		return false, err
	}
	return p.TestConnection(ctx, apiKey, model)
}
