// Package term is the interactive terminal front end: a small tcell
// editor that shows autocomplete ghost text, underlines grammar
// annotations and reports engine status on the bottom line.
package term

import (
	"sort"
	"sync"

	"github.com/dshills/proofline/internal/assist"
	"github.com/dshills/proofline/internal/suggest"
)

// View holds what the engine asked to display. It implements
// assist.Overlay; the engine calls it from its loop goroutine while the
// UI goroutine draws, so all state is behind mu.
type View struct {
	mu     sync.Mutex
	ghost  suggest.AutocompleteSuggestion
	notes  []suggest.GrammarSuggestion
	status string
	wake   func()
}

var _ assist.Overlay = (*View)(nil)

// NewView creates an empty view. wake, if set, is called after every
// change so the UI goroutine redraws.
func NewView(wake func()) *View {
	return &View{wake: wake}
}

// SuggestionAvailable implements assist.Overlay.
func (v *View) SuggestionAvailable(s suggest.AutocompleteSuggestion) {
	v.update(func() { v.ghost = s })
}

// SuggestionCleared implements assist.Overlay.
func (v *View) SuggestionCleared() {
	v.update(func() { v.ghost = suggest.AutocompleteSuggestion{} })
}

// Annotate implements assist.Overlay.
func (v *View) Annotate(items []suggest.GrammarSuggestion) {
	notes := append([]suggest.GrammarSuggestion(nil), items...)
	sort.Slice(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })
	v.update(func() { v.notes = notes })
}

// Status implements assist.Overlay.
func (v *View) Status(msg string) {
	v.update(func() { v.status = msg })
}

func (v *View) update(fn func()) {
	v.mu.Lock()
	fn()
	wake := v.wake
	v.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Ghost returns the ghost text currently shown.
func (v *View) Ghost() suggest.AutocompleteSuggestion {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ghost
}

// Annotations returns the annotations currently shown, by start offset.
func (v *View) Annotations() []suggest.GrammarSuggestion {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]suggest.GrammarSuggestion(nil), v.notes...)
}

// StatusText returns the last status message.
func (v *View) StatusText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// AnnotationAt returns the annotation covering offset, or else the first
// one starting after it.
func (v *View) AnnotationAt(offset int) (suggest.GrammarSuggestion, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.notes {
		if offset >= n.Start && offset <= n.End {
			return n, true
		}
	}
	for _, n := range v.notes {
		if n.Start > offset {
			return n, true
		}
	}
	return suggest.GrammarSuggestion{}, false
}
