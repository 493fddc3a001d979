package reconcile

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/proofline/internal/suggest"
)

var (
	leadingFence  = regexp.MustCompile("^```[\\w+#.-]*[ \\t]*\\r?\\n?")
	trailingFence = regexp.MustCompile("\\r?\\n?```[ \\t]*$")
	firstArray    = regexp.MustCompile(`\[[\s\S]*\]`)
)

// preambles are the lead-ins models put in front of a corrected text.
var preambles = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(here is|here's|here are) (the |your )?(corrected|revised|fixed|improved|edited)[^:\n]*:\s*`),
	regexp.MustCompile(`(?i)^(the )?corrected( text| version)?:\s*`),
	regexp.MustCompile(`(?i)^sure[!,.]?[^:\n]*:\s*`),
	regexp.MustCompile(`(?i)^certainly[!,.]?[^:\n]*:\s*`),
}

// CleanProviderResponse removes a wrapping code fence and a conversational
// preamble from a model reply and trims the result.
func CleanProviderResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripPreamble(s)
	s = stripFences(s)
	s = stripPreamble(s)
	return strings.TrimSpace(s)
}

func stripFences(s string) string {
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return s
}

func stripPreamble(s string) string {
	for _, re := range preambles {
		if loc := re.FindStringIndex(s); loc != nil {
			return strings.TrimSpace(s[loc[1]:])
		}
	}
	return s
}

// ParseSuggestionArray decodes a grammar-check reply into suggestions.
//
// The reply may be fenced or surrounded by prose; the first bracketed span
// is used in that case. Any failure, or a JSON value that is not an array,
// yields an empty slice. Elements that are not objects are skipped; missing
// fields keep their zero values.
func ParseSuggestionArray(raw string) []suggest.GrammarSuggestion {
	out := []suggest.GrammarSuggestion{}

	s := strings.TrimSpace(stripFences(strings.TrimSpace(raw)))
	if !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
		s = firstArray.FindString(s)
	}
	if s == "" || !gjson.Valid(s) {
		return out
	}

	parsed := gjson.Parse(s)
	if !parsed.IsArray() {
		return out
	}

	parsed.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		out = append(out, suggest.GrammarSuggestion{
			Start:      int(v.Get("start").Int()),
			End:        int(v.Get("end").Int()),
			Suggestion: v.Get("suggestion").String(),
			Type:       suggest.ParseKind(v.Get("type").String()),
			Original:   v.Get("original").String(),
		})
		return true
	})
	return out
}
