package assist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/proofline/internal/clock/clocktest"
	"github.com/dshills/proofline/internal/document"
	"github.com/dshills/proofline/internal/suggest"
)

type fakeProvider struct {
	mu           sync.Mutex
	autocomplete func(before string) (string, error)
	grammar      func(text string) (string, error)
	correct      func(text string) (string, error)
	calls        []string
	ctxErrs      []error
}

func (p *fakeProvider) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakeProvider) Autocomplete(_ context.Context, before string, _ float64, _ int) (string, error) {
	p.record("autocomplete")
	if p.autocomplete == nil {
		return "", nil
	}
	return p.autocomplete(before)
}

func (p *fakeProvider) GrammarSuggestions(ctx context.Context, text string, _ float64) (string, error) {
	p.record("grammar")
	p.mu.Lock()
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	p.mu.Unlock()
	if p.grammar == nil {
		return "[]", nil
	}
	return p.grammar(text)
}

func (p *fakeProvider) CorrectText(_ context.Context, text string, _ float64) (string, error) {
	p.record("correct")
	if p.correct == nil {
		return text, nil
	}
	return p.correct(text)
}

func (p *fakeProvider) TestConnection(context.Context, string, string) (bool, error) {
	return true, nil
}

// manualRunner holds provider calls until flush, so tests can change the
// document while a request is in flight.
type manualRunner struct {
	queue []func()
}

func (r *manualRunner) Go(fn func()) {
	r.queue = append(r.queue, fn)
}

func (r *manualRunner) flush() {
	for len(r.queue) > 0 {
		fn := r.queue[0]
		r.queue = r.queue[1:]
		fn()
	}
}

func (r *manualRunner) pending() int {
	return len(r.queue)
}

type recordingOverlay struct {
	mu          sync.Mutex
	shown       []suggest.AutocompleteSuggestion
	cleared     int
	annotations [][]suggest.GrammarSuggestion
	statuses    []string
}

func (o *recordingOverlay) SuggestionAvailable(s suggest.AutocompleteSuggestion) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shown = append(o.shown, s)
}

func (o *recordingOverlay) SuggestionCleared() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleared++
}

func (o *recordingOverlay) Annotate(items []suggest.GrammarSuggestion) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.annotations = append(o.annotations, items)
}

func (o *recordingOverlay) Status(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, msg)
}

func (o *recordingOverlay) lastStatus() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.statuses) == 0 {
		return ""
	}
	return o.statuses[len(o.statuses)-1]
}

func (o *recordingOverlay) shownCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.shown)
}

type harness struct {
	clk      *clocktest.Fake
	doc      *document.Document
	prov     *fakeProvider
	run      *manualRunner
	ov       *recordingOverlay
	metrics  *Metrics
	logs     *observer.ObservedLogs
	settings Settings
	eng      *Engine
	attached bool
}

// newHarness builds an engine with a fake clock, a manual runner and a
// synchronous dispatch. Grammar checking is off unless mutate enables it.
func newHarness(t *testing.T, text string, mutate func(*Settings)) *harness {
	t.Helper()
	return newHarnessContext(t, context.Background(), text, mutate)
}

// newHarnessContext is newHarness with ctx bounding provider calls.
func newHarnessContext(t *testing.T, ctx context.Context, text string, mutate func(*Settings)) *harness {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{
		clk:     clocktest.NewFake(time.Time{}),
		doc:     document.New(text),
		prov:    &fakeProvider{},
		run:     &manualRunner{},
		ov:      &recordingOverlay{},
		metrics: NewMetrics(prometheus.NewRegistry()),
		logs:    logs,
	}
	h.doc.SetCursor(len(text))

	h.settings = DefaultSettings()
	h.settings.APIKey = "test-key"
	h.settings.GrammarEnabled = false
	if mutate != nil {
		mutate(&h.settings)
	}

	eng, err := New(EngineContext{
		Clock:    h.clk,
		Settings: SettingsFunc(func() Settings { return h.settings }),
		Provider: h.prov,
		Editor:   h.doc,
		Overlay:  h.ov,
		Logger:   zap.New(core),
		Metrics:  h.metrics,
		Runner:   h.run,
		Dispatch: func(fn func()) { fn() },
		Context:  ctx,
	})
	require.NoError(t, err)
	h.eng = eng
	return h
}

// attach reports every document change to the engine, the way the
// interactive front end does.
func (h *harness) attach() {
	h.attached = true
	h.doc.OnChange(func(ch document.Change) {
		h.eng.DocumentChanged(ch.Start, ch.OldEnd, len(ch.NewText))
	})
}

// typeText inserts s at the cursor the way a front end would: key events
// first, then the edit.
func (h *harness) typeText(s string) {
	for _, r := range s {
		h.eng.Handle(KeyEvent{Key: KeyRune, Rune: r})
	}
	h.doc.Insert(s)
	if !h.attached {
		h.eng.Handle(EditEvent{})
	}
}
