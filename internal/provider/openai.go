package provider

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dshills/proofline/internal/suggest"
)

type openAICompleter struct {
	client openai.Client
	model  string
}

func newOpenAI(_ context.Context, opts Options) (completer, error) {
	if opts.APIKey == "" {
		return nil, suggest.NewProviderError(OpenAI, "connect", 0, suggest.ErrNoCredential)
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
	return &openAICompleter{
		client: openai.NewClient(ro...),
		model:  opts.Model,
	}, nil
}

func (o *openAICompleter) complete(ctx context.Context, req request) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", suggest.NewProviderError(OpenAI, "", apiErr.StatusCode, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
