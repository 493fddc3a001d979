// Package provider adapts hosted language models to the engine's
// suggestion calls.
//
// Each vendor adapter only knows how to send one system prompt and one
// user prompt and return the reply text. Client layers the suggestion
// prompts on top, so every vendor behaves the same way to the engine.
// Vendor failures come back as *suggest.ProviderError carrying the HTTP
// status where the SDK exposes one.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/suggest"
)

// Vendor names accepted by New.
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Gemini    = "gemini"
)

// ErrUnknownProvider is returned for a vendor name New does not know.
var ErrUnknownProvider = errors.New("unknown provider")

// Options selects and configures a vendor.
type Options struct {
	Name    string
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// request is one round trip to a model.
type request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// completer sends a request to one vendor.
type completer interface {
	complete(ctx context.Context, req request) (string, error)
}

type factory func(ctx context.Context, opts Options) (completer, error)

var vendors = map[string]factory{
	Anthropic: newAnthropic,
	OpenAI:    newOpenAI,
	Gemini:    newGemini,
}

// Names returns the supported vendor names, sorted.
func Names() []string {
	names := make([]string, 0, len(vendors))
	for name := range vendors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Client implements assist.Provider for one vendor.
type Client struct {
	opts   Options
	c      completer
	logger *zap.Logger
}

var _ assist.Provider = (*Client)(nil)

// New creates a client for opts.Name. An empty model selects the vendor's
// default.
func New(ctx context.Context, opts Options) (*Client, error) {
	opts.Name = strings.ToLower(strings.TrimSpace(opts.Name))
	f, ok := vendors[opts.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Name)
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Name)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c, err := f(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{
		opts:   opts,
		c:      c,
		logger: opts.Logger.With(zap.String("provider", opts.Name), zap.String("model", opts.Model)),
	}, nil
}

// Name returns the vendor name.
func (c *Client) Name() string {
	return c.opts.Name
}

// Model returns the model in use.
func (c *Client) Model() string {
	return c.opts.Model
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(name string) string {
	switch name {
	case Anthropic:
		return "claude-3-5-haiku-latest"
	case Gemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-4o-mini"
	}
}

// Autocomplete asks for a continuation of contextBefore.
func (c *Client) Autocomplete(ctx context.Context, contextBefore string, temperature float64, maxTokens int) (string, error) {
	out, err := c.call(ctx, "autocomplete", request{
		System:      autocompleteSystem,
		Prompt:      autocompletePrompt(contextBefore),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, " \t\r\n"), nil
}

// GrammarSuggestions returns the model's raw JSON reply for text.
func (c *Client) GrammarSuggestions(ctx context.Context, text string, temperature float64) (string, error) {
	return c.call(ctx, "grammar", request{
		System:      grammarSystem,
		Prompt:      grammarPrompt(text),
		Temperature: temperature,
		MaxTokens:   grammarMaxTokens,
	})
}

// CorrectText returns a corrected version of text.
func (c *Client) CorrectText(ctx context.Context, text string, temperature float64) (string, error) {
	return c.call(ctx, "correct", request{
		System:      correctionSystem,
		Prompt:      text,
		Temperature: temperature,
		MaxTokens:   correctionMaxTokens(text),
	})
}

// TestConnection sends a minimal request using apiKey and model in place
// of the configured ones. Empty arguments keep the configured values.
func (c *Client) TestConnection(ctx context.Context, apiKey, model string) (bool, error) {
	opts := c.opts
	if apiKey != "" {
		opts.APIKey = apiKey
	}
	if model != "" {
		opts.Model = model
	}
	ch, err := vendors[opts.Name](ctx, opts)
	if err != nil {
		return false, err
	}
	_, err = ch.complete(ctx, request{
		System:      pingSystem,
		Prompt:      "ping",
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) call(ctx context.Context, op string, req request) (string, error) {
	start := time.Now()
	out, err := c.c.complete(ctx, req)
	log := c.logger.With(zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Debug("provider call failed", zap.Error(err))
		return "", annotate(c.opts.Name, op, err)
	}
	if strings.TrimSpace(out) == "" && op != "autocomplete" {
		log.Debug("provider returned empty reply")
		return "", suggest.NewProviderError(c.opts.Name, op, 0, suggest.ErrEmptyResponse)
	}
	log.Debug("provider call done", zap.Int("reply_len", len(out)))
	return out, nil
}

// annotate fills in the vendor and op of a ProviderError, or wraps a
// plain error in one.
func annotate(vendor, op string, err error) error {
	var pe *suggest.ProviderError
	if errors.As(err, &pe) {
		if pe.Vendor == "" {
			pe.Vendor = vendor
		}
		if pe.Op == "" {
			pe.Op = op
		}
		return pe
	}
	return suggest.NewProviderError(vendor, op, 0, err)
}
