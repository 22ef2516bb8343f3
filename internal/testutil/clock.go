// Package testutil holds fakes shared by the engine tests.
package testutil

import (
	"sync"
	"time"
)

// FakeClock is a ports.Clock that never sleeps. Now advances by Step on each
// call, and After records the requested duration and fires immediately.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	step   time.Duration
	waited []time.Duration
}

// NewFakeClock starts the clock at base, advancing by step per Now call.
func NewFakeClock(base time.Time, step time.Duration) *FakeClock {
	return &FakeClock{now: base, step: step}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waited = append(c.waited, d)
	c.now = c.now.Add(d)
	t := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- t
	return ch
}

// Waited returns the durations passed to After, in order.
func (c *FakeClock) Waited() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waited))
	copy(out, c.waited)
	return out
}
