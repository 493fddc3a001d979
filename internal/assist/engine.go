package assist

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/clock"
	"github.com/dshills/proofline/internal/debounce"
	"github.com/dshills/proofline/internal/ratelimit"
)

// Engine errors.
var (
	ErrNoEditor   = errors.New("engine requires an editor")
	ErrNoProvider = errors.New("engine requires a provider")
	ErrNoLoop     = errors.New("engine was built with an external dispatch and has no loop")
)

// Phase is a lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScheduled
	PhaseFetching
	PhaseDisplayed
	PhaseChecking
	PhaseAnnotated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScheduled:
		return "scheduled"
	case PhaseFetching:
		return "fetching"
	case PhaseDisplayed:
		return "displayed"
	case PhaseChecking:
		return "checking"
	case PhaseAnnotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// EngineContext holds the engine's collaborators. Only Editor and
// Provider are required; everything else has a working default.
type EngineContext struct {
	Clock     clock.Clock
	Guard     *ratelimit.Guard
	Scheduler *debounce.Scheduler
	Settings  SettingsSource
	Provider  Provider
	Editor    Editor
	Overlay   Overlay
	Logger    *zap.Logger
	Metrics   *Metrics
	Runner    Runner

	// Context bounds every provider call. Cancelling it abandons calls in
	// flight. Nil means context.Background.
	Context context.Context

	// Dispatch runs a function on the serial loop. When nil the engine
	// creates its own Loop and Run must be called. A Guard or Scheduler
	// supplied here must dispatch through the same function.
	Dispatch func(func())
}

// Engine owns the autocomplete and grammar lifecycles.
//
// Handle and the methods it delegates to (Accept, Apply, ApplyAll and the
// phase accessors) must only be called on the serial loop, or from a
// single goroutine when the engine was built with a synchronous Dispatch.
// Dispatch and Subscribe are safe to call from anywhere. Do is too, except
// from the loop itself.
type Engine struct {
	clock    clock.Clock
	guard    *ratelimit.Guard
	sched    *debounce.Scheduler
	settings SettingsSource
	provider Provider
	editor   Editor
	overlay  Overlay
	logger   *zap.Logger
	metrics  *Metrics
	runner   Runner
	dispatch func(func())
	loop     *Loop
	base     context.Context

	ac autocompleteState
	gr grammarState

	correcting bool
	lastErr    error
	// editing is set while the engine changes the document itself.
	editing bool
}

// New builds an engine from ec.
func New(ec EngineContext) (*Engine, error) {
	if ec.Editor == nil {
		return nil, ErrNoEditor
	}
	if ec.Provider == nil {
		return nil, ErrNoProvider
	}

	e := &Engine{
		clock:    ec.Clock,
		guard:    ec.Guard,
		sched:    ec.Scheduler,
		settings: ec.Settings,
		provider: ec.Provider,
		editor:   ec.Editor,
		overlay:  ec.Overlay,
		logger:   ec.Logger,
		metrics:  ec.Metrics,
		runner:   ec.Runner,
		dispatch: ec.Dispatch,
		base:     ec.Context,
	}
	if e.base == nil {
		e.base = context.Background()
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.settings == nil {
		e.settings = StaticSettings(DefaultSettings())
	}
	if e.overlay == nil {
		e.overlay = NopOverlay{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	if e.runner == nil {
		e.runner = GoRunner{}
	}
	if e.dispatch == nil {
		e.loop = NewLoop(e.logger)
		e.dispatch = func(fn func()) { e.loop.Post(fn) }
	}
	if e.guard == nil {
		e.guard = ratelimit.New(
			ratelimit.WithClock(e.clock),
			ratelimit.WithOnChange(e.onGuardChange),
		)
	}
	if e.sched == nil {
		e.sched = debounce.New(
			debounce.WithClock(e.clock),
			debounce.WithDispatch(e.dispatch),
		)
	}
	return e, nil
}

// Run processes events until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) error {
	if e.loop == nil {
		return ErrNoLoop
	}
	e.logger.Debug("engine started")
	defer e.logger.Debug("engine stopped")
	return e.loop.Run(ctx)
}

// Stop cancels pending timers and stops the loop.
func (e *Engine) Stop() {
	e.sched.CancelAll()
	if e.loop != nil {
		e.loop.Stop()
	}
}

// Dispatch queues ev for Handle on the serial loop.
func (e *Engine) Dispatch(ev Event) {
	if ev == nil {
		return
	}
	e.dispatch(func() { e.Handle(ev) })
}

// Do runs fn on the serial loop and waits for it to finish. Front ends
// use it to edit the document so that edits and engine reads never
// interleave. It returns false, without running fn, once the loop has
// stopped.
func (e *Engine) Do(fn func()) bool {
	if e.loop == nil {
		e.dispatch(fn)
		return true
	}
	done := make(chan struct{})
	if !e.loop.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-e.loop.Done():
		return false
	}
}

// DocumentChanged reports an edit that replaced [start, oldEnd) with
// newLen bytes. Annotations after the edit move with the text and those
// it overlapped are dropped, unless the edit is one the engine is making
// itself. An EditEvent is then queued.
//
// It must run on the serial loop, which is where the editor's change
// callback runs when all edits go through Do.
func (e *Engine) DocumentChanged(start, oldEnd, newLen int) {
	if !e.editing {
		e.shiftAnnotations(-1, start, oldEnd, newLen)
	}
	e.post(EditEvent{})
}

// Subscribe dispatches every event received on events until the channel
// closes or ctx is done.
func (e *Engine) Subscribe(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.Dispatch(ev)
		}
	}
}

// Handle applies ev to the engine state.
func (e *Engine) Handle(ev Event) {
	switch ev := ev.(type) {
	case EditEvent:
		e.autocompleteOnEdit()
		e.grammarOnEdit()
	case CursorEvent:
		e.autocompleteOnCursor()
	case KeyEvent:
		e.autocompleteOnKey(ev)
	case AcceptEvent:
		e.Accept()
	case DismissEvent:
		e.sched.Cancel(debounce.Autocomplete)
		e.ac.gen++
		e.dismiss()
	case CheckNowEvent:
		e.sched.Cancel(debounce.Grammar)
		e.runGrammarCheck()
	case ApplyEvent:
		e.Apply(ev.ID)
	case ApplyAllEvent:
		e.ApplyAll()
	case DismissAnnotationEvent:
		e.DismissAnnotation(ev.ID)
	case CorrectSelectionEvent:
		e.correctSelection()
	case timerFired:
		switch ev.ch {
		case debounce.Autocomplete:
			e.autocompleteOnTimer()
		case debounce.Grammar:
			e.grammarOnTimer()
		}
	case autocompleteResult:
		e.finishAutocomplete(ev)
	case grammarResult:
		e.finishGrammar(ev)
	case correctionResult:
		e.finishCorrection(ev)
	case statusEvent:
		e.overlay.Status(ev.msg)
	default:
		e.logger.Debug("ignoring unknown event", zap.Any("event", ev))
	}
}

// LastError returns the most recent provider error that was reported to
// the user, or nil.
func (e *Engine) LastError() error {
	return e.lastErr
}

// RateLimited reports whether provider calls are paused.
func (e *Engine) RateLimited() bool {
	return e.guard.IsLimited()
}

// post queues ev on the loop. Off-loop work hands its results back this
// way.
func (e *Engine) post(ev Event) {
	e.dispatch(func() { e.Handle(ev) })
}

func (e *Engine) schedule(ch debounce.Channel, s Settings) bool {
	delay := s.AutocompleteDelay
	if ch == debounce.Grammar {
		delay = s.GrammarDelay
	}
	return e.sched.Schedule(ch, delay, func() { e.Handle(timerFired{ch: ch}) })
}

func (e *Engine) onGuardChange(limited bool) {
	if limited {
		return
	}
	e.post(statusEvent{msg: "Suggestions resumed"})
}

func (e *Engine) requestContext(s Settings) (context.Context, context.CancelFunc) {
	if s.RequestTimeout <= 0 {
		return context.WithCancel(e.base)
	}
	return context.WithTimeout(e.base, s.RequestTimeout)
}

// replace edits the document on behalf of the engine.
func (e *Engine) replace(start, end int, text string) error {
	e.editing = true
	defer func() { e.editing = false }()
	return e.editor.ReplaceRange(start, end, text)
}
