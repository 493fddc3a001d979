package assist

import (
	"context"

	"github.com/dshills/proofline/internal/suggest"
)

// Editor is the document the engine reads from and edits. Offsets are byte
// offsets into Text.
type Editor interface {
	Text() string
	Cursor() int
	SetCursor(offset int)
	Line(n int) string
	OffsetToPosition(offset int) (line, col int)
	PositionToOffset(line, col int) int
	ReplaceRange(start, end int, text string) error
	Selection() (start, end int)
}

// Provider produces raw suggestions. Implementations may fail with errors
// whose message carries a rate-limit marker; see suggest.Classify.
type Provider interface {
	// Autocomplete returns a continuation of contextBefore.
	Autocomplete(ctx context.Context, contextBefore string, temperature float64, maxTokens int) (string, error)

	// GrammarSuggestions returns the model's raw reply: a JSON array of
	// suggestions, possibly fenced or wrapped in prose.
	GrammarSuggestions(ctx context.Context, text string, temperature float64) (string, error)

	// CorrectText returns a corrected version of text.
	CorrectText(ctx context.Context, text string, temperature float64) (string, error)

	// TestConnection checks that apiKey can reach model.
	TestConnection(ctx context.Context, apiKey, model string) (bool, error)
}

// Overlay renders suggestions and status text.
type Overlay interface {
	// SuggestionAvailable shows ghost text at the suggestion's anchor.
	SuggestionAvailable(s suggest.AutocompleteSuggestion)

	// SuggestionCleared hides any ghost text.
	SuggestionCleared()

	// Annotate replaces the set of grammar annotations. An empty slice
	// clears them.
	Annotate(items []suggest.GrammarSuggestion)

	// Status shows a one-line message.
	Status(msg string)
}

// NopOverlay discards everything.
type NopOverlay struct{}

func (NopOverlay) SuggestionAvailable(suggest.AutocompleteSuggestion) {}
func (NopOverlay) SuggestionCleared()                                {}
func (NopOverlay) Annotate([]suggest.GrammarSuggestion)              {}
func (NopOverlay) Status(string)                                     {}

// Runner starts provider calls off the loop.
type Runner interface {
	Go(fn func())
}

// GoRunner runs each call on its own goroutine.
type GoRunner struct{}

// Go starts fn in a goroutine.
func (GoRunner) Go(fn func()) {
	go fn()
}

// InlineRunner runs each call on the caller's goroutine. Combined with a
// synchronous dispatch it makes Handle run a whole request to completion,
// which is what one-shot command-line use wants.
type InlineRunner struct{}

// Go runs fn immediately.
func (InlineRunner) Go(fn func()) {
	fn()
}
