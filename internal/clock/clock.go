// internal/clock/clock.go

// Package clock abstracts time for the polling loop and the EC handshake.
//
// Production code injects Real(). Tests inject Fake(), whose Sleep
// advances virtual time immediately and runs an optional hook, so a test
// can act "during" a sleep without racing a goroutine.
package clock

import "time"

// Clock is the subset of the time package the probe needs.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
