// Package ratelimit gates provider calls after the provider signals that
// it is being called too often.
package ratelimit

import (
	"sync"
	"time"

	"github.com/dshills/proofline/internal/clock"
	"github.com/dshills/proofline/internal/suggest"
)

// Guard is a two-state switch: normal, or limited until a deadline.
//
// Trip enters the limited state and arms a single cooldown timer; tripping
// again while limited replaces that timer instead of adding another. The
// guard only answers IsLimited; it never blocks, queues or retries.
//
// Thread-safety: All methods are safe for concurrent use. The change
// callback runs without the guard's lock held.
type Guard struct {
	mu       sync.Mutex
	clock    clock.Clock
	limited  bool
	until    time.Time
	timer    clock.Timer
	seq      uint64 // invalidates timers replaced by a later Trip or Reset
	onChange func(limited bool)
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(g *Guard) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithOnChange registers a callback for limited/normal transitions.
func WithOnChange(fn func(limited bool)) Option {
	return func(g *Guard) {
		g.onChange = fn
	}
}

// New creates a guard in the normal state.
func New(opts ...Option) *Guard {
	g := &Guard{clock: clock.Real()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Trip enters the limited state for backoff. Non-positive durations are
// ignored.
func (g *Guard) Trip(backoff time.Duration) {
	if backoff <= 0 {
		return
	}

	g.mu.Lock()
	wasLimited := g.limited
	if g.timer != nil {
		g.timer.Stop()
	}
	g.seq++
	seq := g.seq
	g.limited = true
	g.until = g.clock.Now().Add(backoff)
	g.timer = g.clock.AfterFunc(backoff, func() { g.expire(seq) })
	cb := g.onChange
	g.mu.Unlock()

	if !wasLimited && cb != nil {
		cb(true)
	}
}

func (g *Guard) expire(seq uint64) {
	g.mu.Lock()
	if seq != g.seq || !g.limited {
		g.mu.Unlock()
		return
	}
	g.limited = false
	g.until = time.Time{}
	g.timer = nil
	cb := g.onChange
	g.mu.Unlock()

	if cb != nil {
		cb(false)
	}
}

// IsLimited reports whether calls should currently be suppressed.
func (g *Guard) IsLimited() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limited && g.clock.Now().Before(g.until)
}

// Remaining returns how long the cooldown has left, or zero.
func (g *Guard) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.limited {
		return 0
	}
	return max(0, g.until.Sub(g.clock.Now()))
}

// State returns a snapshot of the guard.
func (g *Guard) State() suggest.RateLimitState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return suggest.RateLimitState{Limited: g.limited, CooldownUntil: g.until}
}

// Reset returns to the normal state immediately.
func (g *Guard) Reset() {
	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.seq++
	wasLimited := g.limited
	g.limited = false
	g.until = time.Time{}
	cb := g.onChange
	g.mu.Unlock()

	if wasLimited && cb != nil {
		cb(false)
	}
}
