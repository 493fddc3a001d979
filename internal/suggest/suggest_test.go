package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindSpelling, ParseKind("Spelling"))
	assert.Equal(t, KindStyle, ParseKind(" style "))
	assert.Equal(t, KindGrammar, ParseKind("grammar"))
	assert.Equal(t, KindGrammar, ParseKind("punctuation"))
	assert.Equal(t, KindGrammar, ParseKind(""))
}

func TestGrammarSuggestion_Matches(t *testing.T) {
	text := "She go to school."
	s := GrammarSuggestion{Start: 4, End: 6, Suggestion: "goes", Original: "go"}

	assert.True(t, s.Matches(text))
	assert.False(t, s.Matches("She went to school."))
	assert.False(t, s.Matches("She"))

	bad := GrammarSuggestion{Start: 6, End: 4}
	assert.False(t, bad.Valid(len(text)))
}

func TestGrammarSuggestion_Shift(t *testing.T) {
	s := GrammarSuggestion{Start: 10, End: 12}
	moved := s.Shift(-3)
	assert.Equal(t, 7, moved.Start)
	assert.Equal(t, 9, moved.End)
	assert.Equal(t, 2, moved.Len())
	assert.Equal(t, 10, s.Start)
}
