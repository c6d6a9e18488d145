// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scheduler closes polls when their voting deadline passes, without
user interaction.

An AutoCloser keeps at most one pending timer per poll ID:

	closer := scheduler.New(func(pollID string) {
		// tally votes, persist closed state
	})
	closer.Schedule(pollID, poll.VotingEndsAt)

Schedule is idempotent: re-scheduling replaces any pending timer
(last-write-wins), and a deadline already in the past fires the closure
action immediately on the calling goroutine. Cancel clears a timer with no
error if none exists; CancelAll is for shutdown. Len and Scheduled expose
the timer table for diagnostics and tests.

The closure action must itself be idempotent. The scheduler never retries a
failed close; a later Schedule call for the same poll (for example during
startup reconciliation) observes the past deadline and re-attempts it.
*/
package scheduler
