package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/proofline/internal/suggest"
)

type anthropicCompleter struct {
	client anthropic.Client
	model  string
}

func newAnthropic(_ context.Context, opts Options) (completer, error) {
	if opts.APIKey == "" {
		return nil, suggest.NewProviderError(Anthropic, "connect", 0, suggest.ErrNoCredential)
	}
	ro := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		ro = append(ro, option.WithRequestTimeout(opts.Timeout))
	}
	return &anthropicCompleter{
		client: anthropic.NewClient(ro...),
		model:  opts.Model,
	}, nil
}

func (a *anthropicCompleter) complete(ctx context.Context, req request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", suggest.NewProviderError(Anthropic, "", apiErr.StatusCode, err)
		}
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
