// Package testutil provides deterministic clocks, ids and fault-injecting
// slots for tests.
package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a wall clock that only moves when told to.
//
// Each call to Now returns the current instant and then advances it by Step,
// so consecutive completions get distinct, ordered timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	Step  time.Duration
}

// NewDeterministicClock creates a clock at start that advances one second
// per call to Now.
func NewDeterministicClock(start time.Time) *DeterministicClock {
	return &DeterministicClock{start: start, now: start, Step: time.Second}
}

// Now returns the current instant and advances by Step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Current returns the current instant without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset returns the clock to its start instant.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
