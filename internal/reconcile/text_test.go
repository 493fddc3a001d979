package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicatePrefix(t *testing.T) {
	tests := []struct {
		name       string
		context    string
		suggestion string
		want       string
	}{
		{"single word overlap", "The quick brown", "brown fox jumps", "fox jumps"},
		{"partial word", "test", "testing the function", "ingthe function"},
		{"longest overlap wins", "I think that the", "that the cat sat", "cat sat"},
		{"repeated word prefers longest", "the the", "the the end", "end"},
		{"case insensitive", "Hello World", "world peace", "peace"},
		{"no overlap", "The quick brown", "fox jumps", "fox jumps"},
		{"identical last word is whole-word match", "go to", "to the store", "the store"},
		{"full overlap yields empty", "brown fox", "brown fox", ""},
		{"empty context", "", "anything goes", "anything goes"},
		{"empty suggestion", "context", "", ""},
		{"whitespace only suggestion", "context", "   ", "   "},
		{"collapses spaces after strip", "a b", "b   c  d", "c d"},
		{"partial word keeps rest casing", "Inter", "International relations", "nationalrelations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveDuplicatePrefix(tt.context, tt.suggestion))
		})
	}
}

func TestRemoveDuplicatePrefix_MaximalMunch(t *testing.T) {
	// Overlaps of two and four words both exist; only the four-word one is removed.
	context := "x a b a b"
	suggestion := "a b a b c"
	assert.Equal(t, "c", RemoveDuplicatePrefix(context, suggestion))

	// Removing only the longest overlap, never more.
	assert.Equal(t, "b c", RemoveDuplicatePrefix("z a", "a b c"))
}

func TestIsAtSentenceStart(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"Hello. ", true},
		{"Hello.", true},
		{"Really?", true},
		{"Wow!  ", true},
		{"Hello ", false},
		{"Hello", false},
		{"Hello,", false},
		{"First line\n", true},
		{"First line\n  ", true},
		{"First line\n  word", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAtSentenceStart(tt.text), "IsAtSentenceStart(%q)", tt.text)
	}
}

func TestShouldTriggerAutocomplete(t *testing.T) {
	tests := []struct {
		context string
		min     int
		want    bool
	}{
		{"Hello world ", 5, true},
		{"Hello wor", 5, false},
		{"Hi ", 10, false},
		{"", 0, true},
		{"   ", 0, false},
		{"Done. ", 3, true},
		{"First, ", 3, true},
		{"He said \"yes\" ", 3, true},
		{"(see below) ", 3, true},
		{"a + ", 1, false},
		{"price 42 ", 3, true},
		{"line\n", 3, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldTriggerAutocomplete(tt.context, tt.min),
			"ShouldTriggerAutocomplete(%q, %d)", tt.context, tt.min)
	}
}

func TestAdjustSuggestionCasing(t *testing.T) {
	assert.Equal(t, "  the end", AdjustSuggestionCasing("  The end", false))
	assert.Equal(t, " The end", AdjustSuggestionCasing(" the end", true))
	assert.Equal(t, "Élan", AdjustSuggestionCasing("élan", true))
	assert.Equal(t, "42 apples", AdjustSuggestionCasing("42 apples", true))
	assert.Equal(t, "   ", AdjustSuggestionCasing("   ", true))
	assert.Equal(t, "", AdjustSuggestionCasing("", false))
}

func TestPreserveCapitalization(t *testing.T) {
	assert.Equal(t, "corrected", PreserveCapitalization("original", "Corrected", false))
	assert.Equal(t, "Corrected", PreserveCapitalization("original", "Corrected", true))
	assert.Equal(t, "Corrected", PreserveCapitalization("Original", "Corrected", false))
	assert.Equal(t, "", PreserveCapitalization("original", "", false))
	assert.Equal(t, "1st place", PreserveCapitalization("first", "1st place", false))
}

func TestExtractWhitespace(t *testing.T) {
	ws := ExtractWhitespace("  hello world \n")
	assert.Equal(t, "  ", ws.Leading)
	assert.Equal(t, " \n", ws.Trailing)
	assert.Equal(t, "hello world", ws.Content)
	assert.Equal(t, "  HELLO \n", ws.Wrap("HELLO"))

	blank := ExtractWhitespace(" \t ")
	assert.Equal(t, " \t ", blank.Leading)
	assert.Empty(t, blank.Trailing)
	assert.Empty(t, blank.Content)

	plain := ExtractWhitespace("word")
	assert.Equal(t, Whitespace{Content: "word"}, plain)
}

func TestContextWindow(t *testing.T) {
	text := "The quick brown fox"
	assert.Equal(t, "brown", ContextWindow(text, 15, 5))
	assert.Equal(t, "The quick", ContextWindow(text, 9, 100))
	assert.Equal(t, text, ContextWindow(text, 999, 0))
	assert.Equal(t, "", ContextWindow(text, -4, 10))

	// "é" is two bytes; a window that would split it is widened.
	utf := "café au lait"
	assert.Equal(t, "é au", ContextWindow(utf, 8, 4))
}
