// Package clock abstracts time so timers can be driven deterministically
// in tests.
package clock

import "time"

// Clock is the time source used by schedulers and guards.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f after d has elapsed. The returned Timer can stop
	// the call before it happens.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call from firing. It returns false if the call
	// already fired or was already stopped.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
