package app

import (
	"sync"
	"time"

	"github.com/iov-one/swap/errors"
)

// Clock provides the time stamped on every delivered message.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall clock time, truncated to seconds.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// FixedClock is a manually controlled clock. It can only move forward. The
// zero value is not usable, use NewFixedClock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ Clock = (*FixedClock)(nil)

// NewFixedClock returns a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. A time before the current one is rejected and
// the clock is left unchanged.
func (c *FixedClock) Set(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Before(c.now) {
		return errors.Wrapf(errors.ErrInvalidInput, "clock cannot move back from %s to %s", c.now, t)
	}
	c.now = t
	return nil
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) error {
	return c.Set(c.Now().Add(d))
}
