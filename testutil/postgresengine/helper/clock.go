package helper

import (
	"sync"
	"time"
)

// AdjustableClock is a circulation.Clock whose time only moves when a test moves it.
type AdjustableClock struct {
	now time.Time
	mu  sync.Mutex
}

// NewAdjustableClock creates a clock standing at start.
func NewAdjustableClock(start time.Time) *AdjustableClock {
	return &AdjustableClock{now: start}
}

// Now implements circulation.Clock.
func (c *AdjustableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward by d.
func (c *AdjustableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *AdjustableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}
