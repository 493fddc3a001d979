package provider

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/suggest"
)

// Paced spaces out calls to a provider on the client side.
//
// A call waits for a token before it reaches the provider. When the wait
// cannot finish before the call's deadline the call fails straight away
// with an error wrapping suggest.ErrRateLimited, which the engine treats
// like a rate limit reported by the vendor.
type Paced struct {
	next    assist.Provider
	limiter *rate.Limiter
}

var _ assist.Provider = (*Paced)(nil)

// NewPaced allows perSecond calls per second with the given burst. A
// non-positive perSecond disables pacing.
func NewPaced(next assist.Provider, perSecond float64, burst int) *Paced {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Paced{
		next:    next,
		limiter: rate.NewLimiter(limit, max(1, burst)),
	}
}

func (p *Paced) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", suggest.ErrRateLimited, err)
	}
	return nil
}

// Autocomplete implements assist.Provider.
func (p *Paced) Autocomplete(ctx context.Context, contextBefore string, temperature float64, maxTokens int) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	return p.next.Autocomplete(ctx, contextBefore, temperature, maxTokens)
}

// GrammarSuggestions implements assist.Provider.
func (p *Paced) GrammarSuggestions(ctx context.Context, text string, temperature float64) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	return p.next.GrammarSuggestions(ctx, text, temperature)
}

// CorrectText implements assist.Provider.
func (p *Paced) CorrectText(ctx context.Context, text string, temperature float64) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	return p.next.CorrectText(ctx, text, temperature)
}

// TestConnection is never paced.
func (p *Paced) TestConnection(ctx context.Context, apiKey, model string) (bool, error) {
	return p.next.TestConnection(ctx, apiKey, model)
}
