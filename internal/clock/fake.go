// internal/clock/fake.go
package clock

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock. Time moves only on Sleep or Advance.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration

	// OnSleep runs after virtual time has advanced, still inside Sleep.
	OnSleep func(d time.Duration)
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Sleep records d, advances time by d and runs OnSleep.
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.current = c.current.Add(d)
	}
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(d)
	}
}

// Advance moves time forward without recording a sleep.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Sleeps returns a copy of every duration passed to Sleep.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
