package provider

import (
	"fmt"
	"unicode/utf8"
)

const autocompleteSystem = `You are an autocomplete engine inside a text editor.
Continue the user's text from exactly where it stops.
Reply with the continuation only: a few words, at most one sentence.
Never repeat any of the text you were given and never add quotes or commentary.`

func autocompletePrompt(before string) string {
	return before
}

const grammarSystem = `You are a careful proofreader.
Find grammar, spelling and style problems in the user's text.
Reply with a JSON array and nothing else. Each element is an object:
{"start": <byte offset>, "end": <byte offset>, "original": "<exact text at start:end>", "suggestion": "<replacement>", "type": "grammar" | "spelling" | "style"}
Offsets index the text exactly as given. If there are no problems reply with [].`

const grammarMaxTokens = 2048

func grammarPrompt(text string) string {
	return fmt.Sprintf("Check this text:\n\n%s", text)
}

const correctionSystem = `You correct grammar and spelling.
Reply with the corrected text only, keeping the author's wording, tone and formatting wherever they are already correct.
Do not explain your changes.`

// correctionMaxTokens leaves room for the corrected text to grow a little.
func correctionMaxTokens(text string) int {
	return max(256, utf8.RuneCountInString(text))
}

const pingSystem = `Reply with the single word OK.`
