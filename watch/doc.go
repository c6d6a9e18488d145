// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package watch delivers live poll snapshots to subscribers.

Every feed carries the full current state of one poll (the poll document,
all votes, all orders), never deltas. Consumers replace their local state
wholesale on each delivery and recompute any derived view; out-of-order
concerns disappear because each snapshot is complete.

	hub := watch.NewHub(watch.NewDBLoader(db))

	sub, err := hub.Subscribe(pollID) // first snapshot arrives immediately
	defer sub.Close()                 // synchronous; nothing delivered after
	for snap := range sub.C {
		if snap.Poll == nil {
			// poll was deleted
		}
	}

Handlers call hub.Publish(pollID) after every mutation. Delivery is
coalescing: a subscriber that has not consumed the previous snapshot gets
it replaced by the newer one, so slow consumers observe the latest state
rather than a backlog.

The package also exports the snapshot queries (LoadSnapshot, LoadPoll,
LoadVotes, LoadOrders) for handlers that need a one-shot read.
*/
package watch
