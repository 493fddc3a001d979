package reconcile

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RemoveDuplicatePrefix strips the part of suggestion that repeats the end
// of context.
//
// The longest case-insensitive whole-word overlap between the last words of
// context and the first words of suggestion is removed and the remainder is
// joined with single spaces. When no whole word overlaps but the first word
// of suggestion extends the last word of context, the shared prefix is cut
// from that word and the rest is appended with no separator. Otherwise
// suggestion is returned unchanged.
func RemoveDuplicatePrefix(context, suggestion string) string {
	contextWords := strings.Fields(context)
	suggestionWords := strings.Fields(suggestion)
	if len(contextWords) == 0 || len(suggestionWords) == 0 {
		return suggestion
	}

	for k := min(len(contextWords), len(suggestionWords)); k > 0; k-- {
		if wordsEqualFold(contextWords[len(contextWords)-k:], suggestionWords[:k]) {
			return strings.Join(suggestionWords[k:], " ")
		}
	}

	lastWord := strings.ToLower(contextWords[len(contextWords)-1])
	firstWord := strings.ToLower(suggestionWords[0])
	if firstWord != lastWord && strings.HasPrefix(firstWord, lastWord) {
		rest := dropRunes(suggestionWords[0], utf8.RuneCountInString(lastWord))
		return rest + strings.Join(suggestionWords[1:], " ")
	}

	return suggestion
}

func wordsEqualFold(a, b []string) bool {
	for i := range a {
		if strings.ToLower(a[i]) != strings.ToLower(b[i]) {
			return false
		}
	}
	return true
}

// dropRunes removes the first n runes of s.
func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

var trailingNewline = regexp.MustCompile(`\n\s*$`)

// IsAtSentenceStart reports whether the cursor following textBeforeCursor
// begins a new sentence: the text is blank, ends in sentence punctuation
// (optionally followed by whitespace), or ends in a newline.
func IsAtSentenceStart(textBeforeCursor string) bool {
	trimmed := strings.TrimRightFunc(textBeforeCursor, unicode.IsSpace)
	if trimmed == "" {
		return true
	}
	if isSentencePunct(lastRune(trimmed)) {
		return true
	}
	return trailingNewline.MatchString(textBeforeCursor)
}

// ShouldTriggerAutocomplete is the gate run before asking for a
// continuation. It requires at least minLength non-blank characters and a
// cursor that sits after whitespace, never in the middle of a token.
func ShouldTriggerAutocomplete(contextBefore string, minLength int) bool {
	if utf8.RuneCountInString(strings.TrimSpace(contextBefore)) < minLength {
		return false
	}
	if contextBefore == "" {
		return true
	}

	if !unicode.IsSpace(lastRune(contextBefore)) {
		return false
	}

	trimmed := strings.TrimRightFunc(contextBefore, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	return canPrecedeContinuation(lastRune(trimmed))
}

func canPrecedeContinuation(r rune) bool {
	switch {
	case isSentencePunct(r), isClausePunct(r):
		return true
	case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
		return true
	}
	return strings.ContainsRune(`'"`+"`"+`()[]{}“”‘’`, r)
}

func isSentencePunct(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClausePunct(r rune) bool {
	return r == ',' || r == ';' || r == ':'
}

// AdjustSuggestionCasing upper-cases the first non-space character of
// suggestion when it starts a sentence and lower-cases it otherwise.
// Leading whitespace is kept verbatim.
func AdjustSuggestionCasing(suggestion string, isStartOfSentence bool) string {
	for i, r := range suggestion {
		if unicode.IsSpace(r) {
			continue
		}
		var c rune
		if isStartOfSentence {
			c = unicode.ToUpper(r)
		} else {
			c = unicode.ToLower(r)
		}
		if c == r {
			return suggestion
		}
		return suggestion[:i] + string(c) + suggestion[i+utf8.RuneLen(r):]
	}
	return suggestion
}

// PreserveCapitalization stops a provider from capitalizing a fragment
// taken from the middle of a sentence: when the cursor is not at a
// sentence start and originalSelection began lower-case, the first
// character of correctedText is lower-cased.
func PreserveCapitalization(originalSelection, correctedText string, isStartOfSentence bool) string {
	if correctedText == "" || isStartOfSentence {
		return correctedText
	}
	first, _ := utf8.DecodeRuneInString(originalSelection)
	if !unicode.IsLower(first) {
		return correctedText
	}
	r, size := utf8.DecodeRuneInString(correctedText)
	return string(unicode.ToLower(r)) + correctedText[size:]
}

// Whitespace is text split into its surrounding whitespace runs and core.
type Whitespace struct {
	Leading  string
	Trailing string
	Content  string
}

// ExtractWhitespace splits text into leading whitespace, trimmed content
// and trailing whitespace. All-blank text is returned as Leading.
func ExtractWhitespace(text string) Whitespace {
	content := strings.TrimLeftFunc(text, unicode.IsSpace)
	leading := text[:len(text)-len(content)]
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	return Whitespace{
		Leading:  leading,
		Trailing: content[len(trimmed):],
		Content:  trimmed,
	}
}

// Wrap surrounds content with the recorded whitespace.
func (w Whitespace) Wrap(content string) string {
	return w.Leading + content + w.Trailing
}

// ContextWindow returns at most lookback bytes of text ending at cursor,
// widened as needed so it never starts inside a UTF-8 sequence.
func ContextWindow(text string, cursor, lookback int) string {
	cursor = max(0, min(cursor, len(text)))
	if lookback <= 0 {
		return text[:cursor]
	}
	start := max(0, cursor-lookback)
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	return text[start:cursor]
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
