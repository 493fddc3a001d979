package assist

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/debounce"
	"github.com/dshills/proofline/internal/reconcile"
	"github.com/dshills/proofline/internal/suggest"
)

type autocompleteState struct {
	phase Phase
	// gen increases on every edit, cursor move and dismissal. A fetch
	// whose generation is behind is stale.
	gen   uint64
	shown suggest.AutocompleteSuggestion
}

// AutocompletePhase returns the autocomplete lifecycle state.
func (e *Engine) AutocompletePhase() Phase {
	return e.ac.phase
}

// Displayed returns the suggestion currently shown, if any.
func (e *Engine) Displayed() (suggest.AutocompleteSuggestion, bool) {
	if e.ac.phase != PhaseDisplayed {
		return suggest.AutocompleteSuggestion{}, false
	}
	return e.ac.shown, true
}

func (e *Engine) autocompleteOnEdit() {
	e.ac.gen++
	e.clearSuggestion()

	s := e.settings.Settings()
	if !s.AutocompleteEnabled {
		e.sched.Cancel(debounce.Autocomplete)
		e.ac.phase = PhaseIdle
		return
	}
	if e.schedule(debounce.Autocomplete, s) {
		e.ac.phase = PhaseScheduled
		return
	}
	// Our own insert; wait for the user's next edit.
	e.ac.phase = PhaseIdle
}

func (e *Engine) autocompleteOnCursor() {
	e.ac.gen++
	e.sched.Cancel(debounce.Autocomplete)
	e.clearSuggestion()
	e.ac.phase = PhaseIdle
}

func (e *Engine) autocompleteOnKey(ev KeyEvent) {
	if e.ac.phase != PhaseDisplayed {
		return
	}
	switch {
	case ev.Key == KeyEscape:
		e.dismiss()
	case ev.Key == KeyRune && isVisible(ev.Rune):
		e.dismiss()
	}
}

func isVisible(r rune) bool {
	return r > ' ' && r != 0x7f
}

func (e *Engine) autocompleteOnTimer() {
	s := e.settings.Settings()
	switch {
	case !s.AutocompleteEnabled, !s.HasCredential(), e.guard.IsLimited():
		e.gateFailed(kindAutocomplete)
		return
	}

	text := e.editor.Text()
	anchor := e.editor.Cursor()
	before := reconcile.ContextWindow(text, anchor, s.ContextLookback)
	if !reconcile.ShouldTriggerAutocomplete(before, s.MinContextLength) {
		e.gateFailed(kindAutocomplete)
		return
	}

	gen := e.ac.gen
	id := uuid.NewString()
	log := e.logger.With(zap.String("request_id", id), zap.Int("anchor", anchor))
	log.Debug("autocomplete requested", zap.Int("context_len", len(before)))
	e.metrics.requested(kindAutocomplete)

	// Set before starting: an inline runner delivers the result before Go
	// returns.
	e.ac.phase = PhaseFetching
	e.runner.Go(func() {
		ctx, cancel := e.requestContext(s)
		defer cancel()
		start := time.Now()
		out, err := e.provider.Autocomplete(ctx, before, s.Temperature, s.MaxTokens)
		e.metrics.observe(kindAutocomplete, time.Since(start))
		e.post(autocompleteResult{gen: gen, anchor: anchor, before: before, text: out, err: err})
	})
}

func (e *Engine) gateFailed(kind string) {
	e.metrics.discarded(kind, reasonGate)
	switch kind {
	case kindAutocomplete:
		e.ac.phase = PhaseIdle
	case kindGrammar:
		e.gr.phase = e.grammarRestPhase()
	}
}

func (e *Engine) finishAutocomplete(r autocompleteResult) {
	if r.err != nil {
		if e.ac.gen == r.gen {
			e.ac.phase = PhaseIdle
		}
		e.metrics.discarded(kindAutocomplete, reasonError)
		if suggest.IsRateLimit(r.err) {
			e.tripRateLimit()
			return
		}
		e.logger.Warn("autocomplete failed", zap.Error(r.err))
		return
	}

	text := e.editor.Text()
	if reason := e.autocompleteStale(r, text); reason != "" {
		e.logger.Debug("discarding stale autocomplete", zap.String("reason", reason))
		e.metrics.discarded(kindAutocomplete, reasonStale)
		return
	}

	out := reconcile.RemoveDuplicatePrefix(r.before, r.text)
	out = reconcile.AdjustSuggestionCasing(out, reconcile.IsAtSentenceStart(text[:r.anchor]))
	if strings.TrimSpace(out) == "" {
		e.metrics.discarded(kindAutocomplete, reasonEmpty)
		e.ac.phase = PhaseIdle
		return
	}

	e.ac.shown = suggest.AutocompleteSuggestion{Text: out, AnchorOffset: r.anchor}
	e.ac.phase = PhaseDisplayed
	e.metrics.shown(kindAutocomplete, 1)
	e.overlay.SuggestionAvailable(e.ac.shown)
}

// autocompleteStale returns why r no longer applies to text, or "".
func (e *Engine) autocompleteStale(r autocompleteResult, text string) string {
	if r.gen != e.ac.gen {
		return "superseded"
	}
	if e.editor.Cursor() != r.anchor {
		return "cursor moved"
	}
	if r.anchor > len(text) || !strings.HasSuffix(text[:r.anchor], r.before) {
		return "text changed"
	}
	return ""
}

// Accept inserts the displayed suggestion at the cursor. It reports false,
// changing nothing, when no suggestion is displayed, the cursor has left
// the anchor, or the cursor is not at the end of its line.
func (e *Engine) Accept() bool {
	if e.ac.phase != PhaseDisplayed {
		return false
	}
	cursor := e.editor.Cursor()
	if cursor != e.ac.shown.AnchorOffset || !e.atEndOfLine(cursor) {
		return false
	}

	insert := strings.TrimLeft(e.ac.shown.Text, " \t\r\n")
	s := e.settings.Settings()
	e.sched.Suppress(debounce.Autocomplete, s.AcceptSuppressWindow)
	e.sched.Cancel(debounce.Autocomplete)

	if err := e.replace(cursor, cursor, insert); err != nil {
		e.logger.Warn("accept failed", zap.Error(err))
		e.clearSuggestion()
		e.ac.phase = PhaseIdle
		return false
	}
	e.shiftAnnotations(-1, cursor, cursor, len(insert))
	e.editor.SetCursor(cursor + len(insert))
	e.clearSuggestion()
	e.ac.phase = PhaseIdle
	e.metrics.accepted(kindAutocomplete)
	return true
}

func (e *Engine) atEndOfLine(offset int) bool {
	line, col := e.editor.OffsetToPosition(offset)
	return col == len(e.editor.Line(line))
}

func (e *Engine) dismiss() {
	if e.ac.phase == PhaseDisplayed {
		e.logger.Debug("autocomplete dismissed")
	}
	e.clearSuggestion()
	e.ac.phase = PhaseIdle
}

// clearSuggestion hides the ghost text if one is showing.
func (e *Engine) clearSuggestion() {
	if e.ac.shown.IsZero() {
		return
	}
	e.ac.shown = suggest.AutocompleteSuggestion{}
	e.overlay.SuggestionCleared()
}
