// Package timer provides the clocks and the deferred callback scheduler the
// simulation uses for cooldowns, grace periods and other delayed transitions.
package timer

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock. Used for things that must keep running
// while the game is paused, like the restart latch.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to. Tests drive the simulation with it.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// PausableClock is game time layered over a base clock. While paused, Now
// stays frozen at the moment Pause was called; after Resume it continues from
// there, so the pause never shows up as elapsed time.
type PausableClock struct {
	mu   sync.RWMutex
	base Clock

	paused      bool
	pausedAt    time.Time     // base time when the current pause began
	totalPaused time.Duration // sum of all finished pauses
}

// NewPausableClock wraps base. A nil base means the system clock.
func NewPausableClock(base Clock) *PausableClock {
	if base == nil {
		base = SystemClock{}
	}
	return &PausableClock{base: base}
}

// Now returns game time.
func (c *PausableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.paused {
		return c.pausedAt.Add(-c.totalPaused)
	}
	return c.base.Now().Add(-c.totalPaused)
}

// Pause freezes game time. Pausing twice is a no-op.
func (c *PausableClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.base.Now()
}

// Resume lets game time advance again.
func (c *PausableClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	c.totalPaused += c.base.Now().Sub(c.pausedAt)
	c.pausedAt = time.Time{}
}

// IsPaused reports whether game time is frozen.
func (c *PausableClock) IsPaused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// TotalPaused returns how much base time has been spent paused, including an
// ongoing pause.
func (c *PausableClock) TotalPaused() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.totalPaused
	if c.paused {
		total += c.base.Now().Sub(c.pausedAt)
	}
	return total
}
