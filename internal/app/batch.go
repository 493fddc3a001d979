package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/document"
	"github.com/dshills/proofline/internal/provider"
	"github.com/dshills/proofline/internal/suggest"
)

// ErrRateLimited is returned when the provider is cooling down.
var ErrRateLimited = errors.New("rate limited")

// statusRecorder keeps the last status line a batch run produced.
type statusRecorder struct {
	assist.NopOverlay
	last string
}

func (r *statusRecorder) Status(msg string) {
	r.last = msg
}

// Check runs one grammar check over text and returns the annotations that
// still match it.
func (a *Application) Check(ctx context.Context, text string) ([]suggest.GrammarSuggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := a.requireCredential(); err != nil {
		return nil, err
	}

	doc := document.New(text)
	eng, err := a.NewEngine(ctx, doc, &statusRecorder{}, Batch)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eng.Dispatch(assist.CheckNowEvent{})
	if err := batchError(eng); err != nil {
		return nil, err
	}
	return eng.Annotations(), nil
}

// Correct sends the whole of text for correction and returns the result
// along with the engine's closing status message.
func (a *Application) Correct(ctx context.Context, text string) (string, string, error) {
	if strings.TrimSpace(text) == "" {
		return text, "No changes", nil
	}
	if err := a.requireCredential(); err != nil {
		return "", "", err
	}

	doc := document.New(text)
	doc.SetSelection(0, doc.Len())
	status := &statusRecorder{}
	eng, err := a.NewEngine(ctx, doc, status, Batch)
	if err != nil {
		return "", "", err
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	eng.Dispatch(assist.CorrectSelectionEvent{})
	if err := batchError(eng); err != nil {
		return "", status.last, err
	}
	return doc.Text(), status.last, nil
}

func (a *Application) requireCredential() error {
	s := a.config.Settings()
	if !s.HasCredential() {
		return fmt.Errorf("%w: set %s", ErrNoCredential, credentialHint(s.Provider))
	}
	return nil
}

func credentialHint(vendor string) string {
	switch vendor {
	case provider.Anthropic:
		return "ANTHROPIC_API_KEY or provider.apiKey"
	case provider.Gemini:
		return "GEMINI_API_KEY or provider.apiKey"
	default:
		return "OPENAI_API_KEY or provider.apiKey"
	}
}

func batchError(eng *assist.Engine) error {
	if eng.RateLimited() {
		return ErrRateLimited
	}
	return eng.LastError()
}
