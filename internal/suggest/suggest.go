// Package suggest defines the suggestion values shared by the lifecycles,
// the reconciler and the provider adapters.
package suggest

import (
	"strings"
	"time"
)

// Kind classifies a grammar suggestion.
type Kind string

const (
	// KindGrammar is a grammatical correction.
	KindGrammar Kind = "grammar"
	// KindSpelling is a spelling correction.
	KindSpelling Kind = "spelling"
	// KindStyle is a stylistic rewrite.
	KindStyle Kind = "style"
)

// ParseKind maps a provider-supplied type string onto a Kind.
// Unknown values are treated as grammar.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spelling":
		return KindSpelling
	case "style":
		return KindStyle
	default:
		return KindGrammar
	}
}

// GrammarSuggestion is a replacement proposed for the range [Start, End)
// of the document as it was when the check ran.
//
// Original must match the live text of that range when the suggestion is
// applied; offsets alone are never trusted.
type GrammarSuggestion struct {
	ID         string `json:"id,omitempty"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Suggestion string `json:"suggestion"`
	Type       Kind   `json:"type"`
	Original   string `json:"original"`
}

// Len returns the length of the original range.
func (s GrammarSuggestion) Len() int {
	return s.End - s.Start
}

// Valid reports whether the range is well formed and lies within a
// document of length n.
func (s GrammarSuggestion) Valid(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

// Matches reports whether text still holds Original at [Start, End).
func (s GrammarSuggestion) Matches(text string) bool {
	if !s.Valid(len(text)) {
		return false
	}
	return text[s.Start:s.End] == s.Original
}

// Shift returns a copy of s moved by delta bytes.
func (s GrammarSuggestion) Shift(delta int) GrammarSuggestion {
	s.Start += delta
	s.End += delta
	return s
}

// AutocompleteSuggestion is a continuation generated for the cursor
// position AnchorOffset.
type AutocompleteSuggestion struct {
	Text         string
	AnchorOffset int
}

// IsZero reports whether there is no suggestion.
func (s AutocompleteSuggestion) IsZero() bool {
	return s.Text == ""
}

// RateLimitState is a snapshot of the rate-limit guard.
// A zero CooldownUntil means no cooldown is armed.
type RateLimitState struct {
	Limited       bool
	CooldownUntil time.Time
}
