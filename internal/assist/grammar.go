package assist

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/debounce"
	"github.com/dshills/proofline/internal/reconcile"
	"github.com/dshills/proofline/internal/suggest"
)

type grammarState struct {
	phase Phase
	// req identifies the newest check. Results from older checks are
	// dropped.
	req   uint64
	items []suggest.GrammarSuggestion
}

// GrammarPhase returns the grammar lifecycle state.
func (e *Engine) GrammarPhase() Phase {
	return e.gr.phase
}

// Annotations returns the live grammar suggestions ordered by offset.
func (e *Engine) Annotations() []suggest.GrammarSuggestion {
	return slices.Clone(e.gr.items)
}

func (e *Engine) grammarRestPhase() Phase {
	if len(e.gr.items) > 0 {
		return PhaseAnnotated
	}
	return PhaseIdle
}

func (e *Engine) grammarOnEdit() {
	s := e.settings.Settings()
	if !s.GrammarEnabled {
		e.sched.Cancel(debounce.Grammar)
		return
	}
	if e.schedule(debounce.Grammar, s) {
		e.gr.phase = PhaseScheduled
	}
}

func (e *Engine) grammarOnTimer() {
	if !e.settings.Settings().GrammarEnabled {
		e.gateFailed(kindGrammar)
		return
	}
	e.runGrammarCheck()
}

// runGrammarCheck checks the whole document. An explicit check request
// comes here directly, regardless of GrammarEnabled.
func (e *Engine) runGrammarCheck() {
	s := e.settings.Settings()
	text := e.editor.Text()
	if strings.TrimSpace(text) == "" {
		e.setAnnotations(nil)
		e.gateFailed(kindGrammar)
		return
	}
	if !s.HasCredential() || e.guard.IsLimited() {
		e.gateFailed(kindGrammar)
		return
	}

	e.gr.req++
	req := e.gr.req
	id := uuid.NewString()
	e.logger.Debug("grammar check requested",
		zap.String("request_id", id),
		zap.Int("text_len", len(text)),
	)
	e.metrics.requested(kindGrammar)
	e.overlay.Status("Checking grammar...")

	e.gr.phase = PhaseChecking
	e.runner.Go(func() {
		ctx, cancel := e.requestContext(s)
		defer cancel()
		start := time.Now()
		raw, err := e.provider.GrammarSuggestions(ctx, text, s.Temperature)
		e.metrics.observe(kindGrammar, time.Since(start))
		e.post(grammarResult{req: req, checked: text, raw: raw, err: err})
	})
}

func (e *Engine) finishGrammar(r grammarResult) {
	current := r.req == e.gr.req
	if r.err != nil && (current || suggest.IsRateLimit(r.err)) {
		// A rate limit from any check pauses the provider, even one that
		// was superseded.
		if current {
			e.gr.phase = e.grammarRestPhase()
		}
		e.reportError(kindGrammar, r.err)
		return
	}
	if !current {
		e.logger.Debug("discarding superseded grammar check")
		e.metrics.discarded(kindGrammar, reasonStale)
		return
	}
	e.lastErr = nil

	if e.editor.Text() != r.checked {
		// The document moved on while the check ran. The edit that
		// changed it has scheduled a new check unless grammar checking
		// is off.
		e.logger.Debug("discarding grammar check for outdated text")
		e.metrics.discarded(kindGrammar, reasonStale)
		e.gr.phase = e.grammarRestPhase()
		if e.sched.IsPending(debounce.Grammar) {
			e.gr.phase = PhaseScheduled
		}
		return
	}

	items := markable(reconcile.ParseSuggestionArray(r.raw), r.checked)
	for i := range items {
		items[i].ID = uuid.NewString()
	}
	e.setAnnotations(items)
	e.gr.phase = e.grammarRestPhase()
	e.metrics.shown(kindGrammar, len(items))

	switch len(items) {
	case 0:
		e.overlay.Status("No issues found")
	case 1:
		e.overlay.Status("1 suggestion")
	default:
		e.overlay.Status(fmt.Sprintf("%d suggestions", len(items)))
	}
}

// markable keeps the suggestions that can be placed on text. Entries whose
// offsets do not hold Original, that change nothing, or that overlap an
// earlier entry are dropped.
func markable(in []suggest.GrammarSuggestion, text string) []suggest.GrammarSuggestion {
	out := make([]suggest.GrammarSuggestion, 0, len(in))
	for _, s := range in {
		if s.Suggestion == s.Original || !s.Matches(text) {
			continue
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b suggest.GrammarSuggestion) int {
		return a.Start - b.Start
	})

	kept := out[:0]
	end := -1
	for _, s := range out {
		if s.Start < end {
			continue
		}
		kept = append(kept, s)
		end = max(s.End, s.Start+1)
	}
	return kept
}

// setAnnotations replaces the live annotations. A pending or running
// check keeps its phase.
func (e *Engine) setAnnotations(items []suggest.GrammarSuggestion) {
	changed := len(items) > 0 || len(e.gr.items) > 0
	e.gr.items = items
	if e.gr.phase == PhaseIdle || e.gr.phase == PhaseAnnotated {
		e.gr.phase = e.grammarRestPhase()
	}
	if changed {
		e.overlay.Annotate(slices.Clone(items))
	}
}

// Apply replaces the range of annotation id with its suggestion. It is a
// silent no-op, returning false, when id is unknown or the document no
// longer holds the original text there.
func (e *Engine) Apply(id string) bool {
	i := slices.IndexFunc(e.gr.items, func(s suggest.GrammarSuggestion) bool { return s.ID == id })
	if i < 0 {
		return false
	}
	item := e.gr.items[i]
	if !item.Matches(e.editor.Text()) {
		e.logger.Debug("grammar suggestion no longer matches", zap.String("id", id))
		e.metrics.discarded(kindGrammar, reasonStale)
		return false
	}

	s := e.settings.Settings()
	e.sched.Suppress(debounce.Autocomplete, s.AcceptSuppressWindow)
	if err := e.replace(item.Start, item.End, item.Suggestion); err != nil {
		e.logger.Warn("apply failed", zap.String("id", id), zap.Error(err))
		return false
	}
	e.metrics.accepted(kindGrammar)
	e.shiftAnnotations(i, item.Start, item.End, len(item.Suggestion))
	return true
}

// shiftAnnotations updates the annotations for an edit that replaced
// [start, oldEnd) with newLen bytes. Annotations after the edit move by
// the length change; those it touched are dropped, as is the one at index
// skip.
func (e *Engine) shiftAnnotations(skip, start, oldEnd, newLen int) {
	if len(e.gr.items) == 0 {
		return
	}
	delta := newLen - (oldEnd - start)
	rest := make([]suggest.GrammarSuggestion, 0, len(e.gr.items))
	changed := false
	for j, other := range e.gr.items {
		switch {
		case j == skip:
			changed = true
		case other.End <= start && other.Start < start:
			rest = append(rest, other)
		case other.Start >= oldEnd:
			if delta != 0 {
				changed = true
			}
			rest = append(rest, other.Shift(delta))
		default:
			changed = true
		}
	}
	if changed {
		e.setAnnotations(rest)
	}
}

// ApplyAll applies every annotation, right to left so earlier offsets stay
// valid, and returns how many were applied.
func (e *Engine) ApplyAll() int {
	ids := make([]string, len(e.gr.items))
	for i, s := range e.gr.items {
		ids[len(ids)-1-i] = s.ID
	}
	n := 0
	for _, id := range ids {
		if e.Apply(id) {
			n++
		}
	}
	return n
}

// DismissAnnotation removes annotation id without applying it.
func (e *Engine) DismissAnnotation(id string) bool {
	i := slices.IndexFunc(e.gr.items, func(s suggest.GrammarSuggestion) bool { return s.ID == id })
	if i < 0 {
		return false
	}
	e.setAnnotations(slices.Delete(slices.Clone(e.gr.items), i, i+1))
	return true
}
