// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the EasyFood API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - UserHandler: account registration and session info
  - PollHandler: poll lifecycle (create, edit, delete, close, close ordering)
  - VotingHandler: vote upsert and retrieval
  - OrderHandler: order upsert, withdrawal, listing, admin adjustments
  - ProposalHandler: restaurant option proposals and admin review
  - ResultsHandler: derived poll view and humanized summary
  - WatchHandler: server-sent events live feed

Poll mutations need the auto-close scheduler and the snapshot hub:

	pollHandler := handlers.NewPollHandler(db, cfg, closer, hub)

# Poll Lifecycle

Polls move forward only: voting_open → voting_closed → ordering_closed.

	POST  /polls                     → CreatePoll (admin; schedules auto-close)
	PATCH /polls/{id}                → UpdatePoll (admin; reschedules deadline)
	POST  /polls/{id}/close          → ClosePoll (admin anytime, anyone after deadline)
	POST  /polls/{id}/close-ordering → CloseOrdering (admin)

Closing runs the tally and persists the winner with a conditional update
(closed = FALSE guard), so scheduler, countdown-expiry, and admin paths can
race without clobbering the stored selection. See ClosePollNow.

# Tally

TallyVotes and PickWinner are pure. A voter contributes one count per
selected restaurant, an empty selection is an abstention, and ties break to
the earliest restaurant in the poll's original option order, never to vote
arrival order.

# Votes and Orders

One record per (poll, user), upserted in a transaction (row update plus
choice-table replace, in the same shape for both). Orders are gated on
poll.CanOrder: voting closed and the ordering deadline not passed. Admin
order fields (notes, adjustment, payment status, confirmation) survive user
edits and remain editable after ordering ends.

# Sessions

All endpoints except registration expect X-Session-Token. requireUser
verifies the HMAC token and loads the account; requireAdmin adds the role
gate.
*/
package handlers
