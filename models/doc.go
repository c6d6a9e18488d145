// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - User: account with display name, email, and role
  - Poll: a time-boxed restaurant vote with an ordering phase
  - RestaurantOption: canonical {name, url} option shape
  - Vote: a user's current restaurant selections (one per poll and user)
  - Order: a user's food order with cost and admin-managed fields
  - Proposal: a user-suggested option awaiting admin review
  - PollView: the derived read model (tallies, totals, gating flags)

# Poll Lifecycle

A poll is in exactly one of three states at any instant, derived from the
closed flag and the ordering deadline:

	voting_open     → closed == false
	voting_closed   → closed == true, ordering deadline absent or in the future
	ordering_closed → closed == true, ordering deadline in the past

Transitions only move forward: the voting deadline (or an explicit admin
close) sets closed and the selected restaurant; "close ordering now" sets
the ordering deadline to the current time. There is no reopening.

The state helpers live on Poll:

	p.State(now)    // one of the three states above
	p.CanVote(now)  // voting_open and deadline not passed
	p.CanOrder(now) // voting_closed and ordering still open

# Upsert Semantics

Votes and orders are keyed by (poll, user): resubmitting replaces the prior
record rather than adding one. An empty restaurant list on a vote is a kept,
first-class abstention, not a deletion.

# Constants

Roles: user, admin. Payment statuses: pending, paid, unpaid. Proposal
statuses: pending, approved, rejected.

# Money

All costs are integer cents (cost_cents, adjustment_cents); an order's
effective total is cost + adjustment.
*/
package models
