// Package debounce coalesces bursts of edit events into one delayed action
// per logical channel.
package debounce

import (
	"sync"
	"time"

	"github.com/dshills/proofline/internal/clock"
)

// Channel names an independent debounce stream.
type Channel string

// Predefined channels.
const (
	Grammar      Channel = "grammar"
	Autocomplete Channel = "autocomplete"
)

// Scheduler runs at most one pending action per channel.
//
// Scheduling on a channel replaces whatever was pending there, so a burst
// of N calls runs the last action once, delay after the last call
// (trailing edge, not throttling).
//
// Thread-safety: All methods are safe for concurrent use. Actions run
// through the dispatch function, never with the scheduler's lock held.
type Scheduler struct {
	mu         sync.Mutex
	clock      clock.Clock
	dispatch   func(func())
	channels   map[Channel]*entry
	suppressed map[Channel]time.Time
}

type entry struct {
	timer   clock.Timer
	seq     uint64 // sequence number to detect stale callbacks
	pending bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDispatch routes fired actions through fn, typically onto an event
// loop. By default actions run on the timer's goroutine.
func WithDispatch(fn func(func())) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.dispatch = fn
		}
	}
}

// New creates a scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:      clock.Real(),
		dispatch:   func(fn func()) { fn() },
		channels:   make(map[Channel]*entry),
		suppressed: make(map[Channel]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms action on ch after delay, cancelling anything pending on
// the same channel. It returns false, arming nothing, while ch is
// suppressed.
func (s *Scheduler) Schedule(ch Channel, delay time.Duration, action func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suppressedLocked(ch) {
		return false
	}

	e := s.channels[ch]
	if e == nil {
		e = &entry{}
		s.channels[ch] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}

	e.seq++
	seq := e.seq
	e.pending = true
	e.timer = s.clock.AfterFunc(max(0, delay), func() {
		s.fire(ch, seq, action)
	})
	return true
}

func (s *Scheduler) fire(ch Channel, seq uint64, action func()) {
	s.mu.Lock()
	e := s.channels[ch]
	// Only run if this is still the current scheduled action.
	if e == nil || !e.pending || e.seq != seq {
		s.mu.Unlock()
		return
	}
	e.pending = false
	e.timer = nil
	dispatch := s.dispatch
	s.mu.Unlock()

	if action == nil {
		return
	}
	dispatch(func() {
		// A Schedule or Cancel between firing and dispatch supersedes us.
		if s.isCurrent(ch, seq) {
			action()
		}
	})
}

func (s *Scheduler) isCurrent(ch Channel, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.channels[ch]
	return e != nil && e.seq == seq
}

// Cancel drops the pending action on ch without running it.
func (s *Scheduler) Cancel(ch Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(ch)
}

// CancelAll drops every pending action.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.channels {
		s.cancelLocked(ch)
	}
}

func (s *Scheduler) cancelLocked(ch Channel) {
	e := s.channels[ch]
	if e == nil {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	// Increment seq to invalidate a timer that already fired
	e.seq++
	e.pending = false
}

// IsPending reports whether an action is armed on ch.
func (s *Scheduler) IsPending(ch Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.channels[ch]
	return e != nil && e.pending
}

// Suppress refuses new schedules on ch for window. It guards against the
// engine's own edits re-triggering the channel they came from.
func (s *Scheduler) Suppress(ch Channel, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if window <= 0 {
		delete(s.suppressed, ch)
		return
	}
	s.suppressed[ch] = s.clock.Now().Add(window)
}

// IsSuppressed reports whether ch currently refuses schedules.
func (s *Scheduler) IsSuppressed(ch Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressedLocked(ch)
}

func (s *Scheduler) suppressedLocked(ch Channel) bool {
	until, ok := s.suppressed[ch]
	if !ok {
		return false
	}
	if s.clock.Now().Before(until) {
		return true
	}
	delete(s.suppressed, ch)
	return false
}
