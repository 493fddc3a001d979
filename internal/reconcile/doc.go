// Package reconcile normalizes raw provider text so suggestions read
// naturally where they land.
//
// Everything here is a pure function over strings: no state, no I/O. The
// lifecycles call these helpers between receiving a provider reply and
// showing it to the user.
//
// # Autocomplete
//
// Continuation models tend to echo the tail of the prompt. RemoveDuplicatePrefix
// strips that echo, first by whole words and then by a partial-word rule:
//
//	RemoveDuplicatePrefix("The quick brown", "brown fox jumps") // "fox jumps"
//	RemoveDuplicatePrefix("test", "testing the function")       // "ingthe function"
//
// AdjustSuggestionCasing and IsAtSentenceStart fix the first letter so the
// continuation matches its position in the sentence. ShouldTriggerAutocomplete
// is the cheap gate run before any network call.
//
// # Grammar
//
// ParseSuggestionArray turns a model reply into suggestions and never fails:
// malformed replies produce an empty list. CleanProviderResponse,
// ExtractWhitespace and PreserveCapitalization serve selection correction.
//
// Offsets are byte offsets into UTF-8 text.
package reconcile
