package fake

import (
	"sync"
	"time"

	"buildtrack/internal/build"
)

var _ build.Clock = (*Clock)(nil)

// Clock is a deterministic clock for testing. Time moves only when the
// test advances it.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock starting at the given time.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Epoch returns the current fake time in seconds since the Unix epoch.
func (c *Clock) Epoch() int64 {
	return c.Now().Unix()
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set sets the clock to an exact time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
