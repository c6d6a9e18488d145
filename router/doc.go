// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the EasyFood API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, closer, hub)

# Endpoints

Health:

	GET /health

Accounts (registration is the only unauthenticated endpoint):

	POST /auth/register - Register or refresh session
	GET  /auth/me       - Current account

Poll lifecycle (mutations require admin role):

	POST   /polls                     - Create poll
	GET    /polls                     - List polls
	GET    /polls/{id}                - Poll details
	PATCH  /polls/{id}                - Edit poll
	DELETE /polls/{id}                - Delete poll
	POST   /polls/{id}/close          - Close voting (any user after deadline)
	POST   /polls/{id}/close-ordering - Close ordering

Voting:

	PUT /polls/{id}/vote - Submit or replace vote
	GET /polls/{id}/vote - Caller's vote

Ordering:

	PUT    /polls/{id}/order           - Submit or replace order
	GET    /polls/{id}/order           - Caller's order
	DELETE /polls/{id}/order           - Withdraw order
	GET    /polls/{id}/orders          - All orders with totals
	PATCH  /polls/{id}/orders/{userID} - Admin order adjustments

Restaurant proposals:

	POST /polls/{id}/proposals                 - Propose an option
	GET  /polls/{id}/proposals                 - List (own, or all for admin)
	POST /polls/{id}/proposals/{propID}/review - Approve or reject (admin)

Derived views:

	GET /polls/{id}/results - Tallies, winner, order totals
	GET /polls/{id}/summary - Humanized dashboard card
	GET /polls/{id}/watch   - Server-sent events feed

# Handler Initialization

The router creates handler instances with dependency injection. Handlers
that mutate poll state also receive the auto-close scheduler and the
snapshot hub:

	pollHandler := handlers.NewPollHandler(db, cfg, closer, hub)
	votingHandler := handlers.NewVotingHandler(db, cfg, hub)
*/
package router
