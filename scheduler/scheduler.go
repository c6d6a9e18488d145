// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// CloseFunc performs the closure action for a poll: tally the votes and
// persist the closed state. It must be idempotent; the scheduler may race
// with an explicit close issued through the API.
type CloseFunc func(pollID string)

// AutoCloser tracks one pending close timer per poll. All operations are
// last-write-wins on the poll ID: scheduling a poll that already has a
// timer replaces it, so two timers never coexist for the same poll.
type AutoCloser struct {
	mu     sync.Mutex
	close  CloseFunc
	timers map[string]*time.Timer
}

// New creates an AutoCloser that invokes close when a deadline is reached.
// Construct one per server and pass it to the handlers that need it.
func New(close CloseFunc) *AutoCloser {
	return &AutoCloser{
		close:  close,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms (or re-arms) the close timer for a poll. A deadline already
// in the past runs the closure action immediately, on the calling goroutine,
// so a reload after a missed deadline re-attempts the close right away.
func (c *AutoCloser) Schedule(pollID string, deadline time.Time) {
	c.mu.Lock()
	if prev, ok := c.timers[pollID]; ok {
		prev.Stop()
		delete(c.timers, pollID)
	}

	d := time.Until(deadline)
	if d <= 0 {
		c.mu.Unlock()
		slog.Info("deadline already passed, closing now", "poll_id", pollID)
		c.close(pollID)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		// A reschedule may have replaced this timer after it fired but
		// before it got the lock. Only the current timer may proceed.
		if c.timers[pollID] != timer {
			c.mu.Unlock()
			return
		}
		delete(c.timers, pollID)
		c.mu.Unlock()

		slog.Info("auto-close timer fired", "poll_id", pollID)
		c.close(pollID)
	})
	c.timers[pollID] = timer
	c.mu.Unlock()
}

// Cancel clears the pending timer for a poll, if any.
func (c *AutoCloser) Cancel(pollID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.timers[pollID]; ok {
		timer.Stop()
		delete(c.timers, pollID)
	}
}

// CancelAll clears every pending timer. Used on shutdown.
func (c *AutoCloser) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}

// Scheduled reports whether a timer is pending for the poll.
func (c *AutoCloser) Scheduled(pollID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[pollID]
	return ok
}

// Len returns the number of pending timers. Diagnostic only.
func (c *AutoCloser) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
