// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package watch

import (
	"log/slog"
	"sync"

	"github.com/AvelDev/easyfood/models"
)

// Snapshot is the full current state of one poll: the poll document, every
// vote, and every order. Feeds always deliver whole snapshots, never deltas;
// consumers replace their local state wholesale. A nil Poll signals that the
// poll was deleted.
type Snapshot struct {
	Poll   *models.Poll
	Votes  []models.VoteWithUser
	Orders []models.OrderWithUser
}

// LoadFunc produces the current snapshot for a poll. A deleted poll is a
// Snapshot with nil Poll, not an error.
type LoadFunc func(pollID string) (*Snapshot, error)

// Hub fans poll snapshots out to subscribers. Handlers call Publish after
// every mutation; each subscriber's channel holds at most one pending
// snapshot, with newer snapshots displacing unread ones (a slow consumer
// sees the latest state, never a backlog).
type Hub struct {
	mu   sync.Mutex
	load LoadFunc
	subs map[string]map[*Subscription]struct{}
}

// Subscription is one consumer's feed for a single poll. Receive from C;
// call Close when done.
type Subscription struct {
	C <-chan *Snapshot

	hub    *Hub
	pollID string
	ch     chan *Snapshot
}

func NewHub(load LoadFunc) *Hub {
	return &Hub{
		load: load,
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a consumer for a poll and delivers the current
// snapshot as the first element on the channel.
func (h *Hub) Subscribe(pollID string) (*Subscription, error) {
	snap, err := h.load(pollID)
	if err != nil {
		return nil, err
	}

	ch := make(chan *Snapshot, 1)
	sub := &Subscription{C: ch, hub: h, pollID: pollID, ch: ch}
	ch <- snap

	h.mu.Lock()
	if h.subs[pollID] == nil {
		h.subs[pollID] = make(map[*Subscription]struct{})
	}
	h.subs[pollID][sub] = struct{}{}
	h.mu.Unlock()

	return sub, nil
}

// Close removes the subscription. It is synchronous: once Close returns,
// no further snapshot is delivered and C is closed.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	set, ok := s.hub.subs[s.pollID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return // already closed
	}
	delete(set, s)
	if len(set) == 0 {
		delete(s.hub.subs, s.pollID)
	}
	close(s.ch)
}

// Publish loads a fresh snapshot and delivers it to every subscriber of
// the poll. Load failures are logged and dropped; the next mutation will
// publish again.
func (h *Hub) Publish(pollID string) {
	snap, err := h.load(pollID)
	if err != nil {
		slog.Error("failed to load snapshot for publish", "poll_id", pollID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[pollID] {
		sub.deliver(snap)
	}
}

// deliver coalesces: if the subscriber has not consumed the previous
// snapshot, it is displaced by the new one. Caller holds the hub lock, so
// delivery cannot race with Close.
func (s *Subscription) deliver(snap *Snapshot) {
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snap:
		default:
		}
	}
}

// Subscribers reports the subscriber count for a poll. Diagnostic only.
func (h *Hub) Subscribers(pollID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[pollID])
}
