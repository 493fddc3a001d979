package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/dshills/proofline/internal/suggest"
)

type geminiCompleter struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, opts Options) (completer, error) {
	if opts.APIKey == "" {
		return nil, suggest.NewProviderError(Gemini, "connect", 0, suggest.ErrNoCredential)
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &geminiCompleter{client: client, model: opts.Model}, nil
}

func (g *geminiCompleter) complete(ctx context.Context, req request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", geminiError(err)
	}
	return resp.Text(), nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		if status == 0 && apiErr.Status == "RESOURCE_EXHAUSTED" {
			status = http.StatusTooManyRequests
		}
		return suggest.NewProviderError(Gemini, "", status, err)
	}
	return err
}
