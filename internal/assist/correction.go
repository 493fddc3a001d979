package assist

import (
	"time"

	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/debounce"
	"github.com/dshills/proofline/internal/reconcile"
)

// Correcting reports whether a selection correction is in flight.
func (e *Engine) Correcting() bool {
	return e.correcting
}

func (e *Engine) correctSelection() {
	if e.correcting {
		return
	}
	start, end := e.editor.Selection()
	if start >= end {
		return
	}
	s := e.settings.Settings()
	if !s.HasCredential() || e.guard.IsLimited() {
		e.gateFailed(kindCorrection)
		return
	}

	text := e.editor.Text()
	if end > len(text) {
		return
	}
	original := text[start:end]
	before := text[:start]

	e.metrics.requested(kindCorrection)
	e.overlay.Status("Correcting selection...")
	e.correcting = true
	e.runner.Go(func() {
		ctx, cancel := e.requestContext(s)
		defer cancel()
		t0 := time.Now()
		out, err := e.provider.CorrectText(ctx, original, s.Temperature)
		e.metrics.observe(kindCorrection, time.Since(t0))
		e.post(correctionResult{start: start, end: end, original: original, before: before, text: out, err: err})
	})
}

func (e *Engine) finishCorrection(r correctionResult) {
	e.correcting = false
	if r.err != nil {
		e.reportError(kindCorrection, r.err)
		return
	}

	cleaned := reconcile.CleanProviderResponse(r.text)
	if cleaned == "" {
		e.metrics.discarded(kindCorrection, reasonEmpty)
		e.overlay.Status("No correction returned")
		return
	}

	ws := reconcile.ExtractWhitespace(r.original)
	sentenceStart := reconcile.IsAtSentenceStart(r.before + ws.Leading)
	corrected := ws.Wrap(reconcile.PreserveCapitalization(ws.Content, cleaned, sentenceStart))

	start, end := e.editor.Selection()
	text := e.editor.Text()
	if start != r.start || end != r.end || end > len(text) || text[start:end] != r.original {
		e.logger.Debug("discarding correction for changed selection")
		e.metrics.discarded(kindCorrection, reasonStale)
		return
	}
	if corrected == r.original {
		e.overlay.Status("No changes")
		return
	}

	e.sched.Suppress(debounce.Autocomplete, e.settings.Settings().AcceptSuppressWindow)
	if err := e.replace(r.start, r.end, corrected); err != nil {
		e.logger.Warn("correction replace failed", zap.Error(err))
		return
	}
	e.shiftAnnotations(-1, r.start, r.end, len(corrected))
	e.lastErr = nil
	e.metrics.accepted(kindCorrection)
	e.overlay.Status("Selection corrected")
}
