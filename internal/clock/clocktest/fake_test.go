package clocktest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(time.Time{})
	var order []string

	c.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	assert.Equal(t, 3, c.Pending())

	c.Advance(15 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Zero(t, c.Pending())
}

func TestFake_StopPreventsFire(t *testing.T) {
	c := NewFake(time.Time{})
	fired := false
	tm := c.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())

	c.Advance(time.Second)
	assert.False(t, fired)
}

func TestFake_StopAfterFire(t *testing.T) {
	c := NewFake(time.Time{})
	tm := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)
	assert.False(t, tm.Stop())
}

func TestFake_NowTracksFiringDeadline(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var seen time.Time
	c.AfterFunc(10*time.Millisecond, func() { seen = c.Now() })
	c.Advance(time.Second)

	assert.Equal(t, start.Add(10*time.Millisecond), seen)
	assert.Equal(t, start.Add(time.Second), c.Now())
}

func TestFake_CallbackMaySchedule(t *testing.T) {
	c := NewFake(time.Time{})
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(10*time.Millisecond, tick)
		}
	}
	c.AfterFunc(10*time.Millisecond, tick)

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, 3, count)
}
