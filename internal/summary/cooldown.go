package summary

import (
	"context"
	"sync"
	"time"
)

// Cooldown serializes calls and keeps at least interval between the end of one call
// and the start of the next, across every caller sharing the instance. Create one per
// process.
type Cooldown struct {
	interval time.Duration
	sem      chan struct{}
	mu       sync.Mutex
	last     time.Time
	now      func() time.Time
}

// NewCooldown creates a cooldown with the given minimum interval
func NewCooldown(interval time.Duration) *Cooldown {
	if interval < 0 {
		interval = 0
	}
	return &Cooldown{
		interval: interval,
		sem:      make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Last returns the completion time of the most recent call, zero if none completed.
// It does not wait for a call in progress.
func (c *Cooldown) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Do blocks until the cooldown has elapsed, then runs fn while holding the slot.
// The completion time is recorded only when fn actually finished; a call abandoned
// through ctx leaves the previous timestamp in place.
func (c *Cooldown) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.sem }()

	if last := c.Last(); !last.IsZero() {
		if wait := last.Add(c.interval).Sub(c.now()); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	err := fn(ctx)
	if err == nil || ctx.Err() == nil {
		c.mu.Lock()
		c.last = c.now()
		c.mu.Unlock()
	}
	return err
}
