package engine

import (
	"context"
	"time"
)

// Clock is the cooperative stop condition of one search: wall-clock
// deadline, node budget and caller cancellation. Once tripped it stays
// tripped.
type Clock struct {
	ctx         context.Context
	lastStarted time.Time
	deadline    time.Time
	nodeBudget  int64
	tripped     bool
}

func NewClock(ctx context.Context, budget time.Duration, nodeBudget int64) *Clock {
	now := time.Now()
	return &Clock{
		ctx:         ctx,
		lastStarted: now,
		deadline:    now.Add(budget),
		nodeBudget:  nodeBudget,
	}
}

// Expired polls every stop condition. A zero node budget means unlimited.
func (c *Clock) Expired(nodes int64) bool {
	if c.tripped {
		return true
	}
	switch {
	case c.nodeBudget > 0 && nodes >= c.nodeBudget:
		c.tripped = true
	case c.ctx.Err() != nil:
		c.tripped = true
	case !time.Now().Before(c.deadline):
		c.tripped = true
	}
	return c.tripped
}

func (c *Clock) Tripped() bool {
	return c.tripped
}

func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.lastStarted)
}
