package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/proofline/internal/clock/clocktest"
)

func TestGuard_TripAndCooldown(t *testing.T) {
	c := clocktest.NewFake(time.Time{})
	g := New(WithClock(c))

	assert.False(t, g.IsLimited())
	assert.False(t, g.State().Limited)

	g.Trip(time.Minute)
	assert.True(t, g.IsLimited())
	assert.Equal(t, c.Now().Add(time.Minute), g.State().CooldownUntil)
	assert.Equal(t, time.Minute, g.Remaining())

	c.Advance(59 * time.Second)
	assert.True(t, g.IsLimited())

	c.Advance(time.Second)
	assert.False(t, g.IsLimited())
	assert.False(t, g.State().Limited)
	assert.True(t, g.State().CooldownUntil.IsZero())
	assert.Zero(t, g.Remaining())
}

func TestGuard_RetripRestartsDeadline(t *testing.T) {
	c := clocktest.NewFake(time.Time{})
	var transitions []bool
	g := New(WithClock(c), WithOnChange(func(limited bool) {
		transitions = append(transitions, limited)
	}))

	g.Trip(10 * time.Second)
	c.Advance(8 * time.Second)
	g.Trip(10 * time.Second)

	assert.Equal(t, 1, c.Pending(), "only one cooldown timer may be live")

	// The first deadline passes without releasing the guard.
	c.Advance(5 * time.Second)
	assert.True(t, g.IsLimited())

	c.Advance(5 * time.Second)
	assert.False(t, g.IsLimited())
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestGuard_ShorterRetripReplacesLongerDeadline(t *testing.T) {
	c := clocktest.NewFake(time.Time{})
	g := New(WithClock(c))

	g.Trip(time.Minute)
	g.Trip(time.Second)

	c.Advance(time.Second)
	assert.False(t, g.IsLimited())
	assert.Zero(t, c.Pending())
}

func TestGuard_IgnoresNonPositiveBackoff(t *testing.T) {
	c := clocktest.NewFake(time.Time{})
	g := New(WithClock(c))

	g.Trip(0)
	g.Trip(-time.Second)
	assert.False(t, g.IsLimited())
	assert.Zero(t, c.Pending())
}

func TestGuard_Reset(t *testing.T) {
	c := clocktest.NewFake(time.Time{})
	var transitions []bool
	g := New(WithClock(c), WithOnChange(func(limited bool) {
		transitions = append(transitions, limited)
	}))

	g.Trip(time.Minute)
	g.Reset()
	assert.False(t, g.IsLimited())
	assert.Zero(t, c.Pending())

	c.Advance(2 * time.Minute)
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestGuard_RealClock(t *testing.T) {
	g := New()
	g.Trip(20 * time.Millisecond)
	assert.True(t, g.IsLimited())
	assert.Eventually(t, func() bool { return !g.IsLimited() }, time.Second, 5*time.Millisecond)
}
