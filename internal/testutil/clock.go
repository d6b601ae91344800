package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant every FixedClock starts at.
var Epoch = time.Date(2025, 3, 14, 12, 26, 53, 589793000, time.UTC)

// FixedClock is a manual clock for tests.
//
// Now returns the same instant until Advance is called, so documents and
// history rows stamped through it are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock reading Epoch.
func NewFixedClock() *FixedClock {
	return &FixedClock{now: Epoch}
}

// Now returns the current instant. It has the signature of time.Now so
// it can be passed wherever a clock function is expected.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset puts the clock back to Epoch.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
