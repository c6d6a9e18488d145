// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/handlers"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/scheduler"
	"github.com/AvelDev/easyfood/watch"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, closer *scheduler.AutoCloser, hub *watch.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg, closer, hub)
	votingHandler := handlers.NewVotingHandler(db, cfg, hub)
	orderHandler := handlers.NewOrderHandler(db, cfg, hub)
	proposalHandler := handlers.NewProposalHandler(db, cfg, hub)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	watchHandler := handlers.NewWatchHandler(db, cfg, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts and sessions
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(userHandler.Me))

	// Poll lifecycle
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("PATCH /polls/{id}", middleware.WithLogging(pollHandler.UpdatePoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))
	mux.HandleFunc("POST /polls/{id}/close-ordering", middleware.WithLogging(pollHandler.CloseOrdering))

	// Voting
	mux.HandleFunc("PUT /polls/{id}/vote", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("GET /polls/{id}/vote", middleware.WithLogging(votingHandler.GetMyVote))

	// Ordering
	mux.HandleFunc("PUT /polls/{id}/order", middleware.WithLogging(orderHandler.SubmitOrder))
	mux.HandleFunc("GET /polls/{id}/order", middleware.WithLogging(orderHandler.GetMyOrder))
	mux.HandleFunc("DELETE /polls/{id}/order", middleware.WithLogging(orderHandler.DeleteOrder))
	mux.HandleFunc("GET /polls/{id}/orders", middleware.WithLogging(orderHandler.ListOrders))
	mux.HandleFunc("PATCH /polls/{id}/orders/{userID}", middleware.WithLogging(orderHandler.UpdateOrderAdmin))

	// Restaurant proposals
	mux.HandleFunc("POST /polls/{id}/proposals", middleware.WithLogging(proposalHandler.SubmitProposal))
	mux.HandleFunc("GET /polls/{id}/proposals", middleware.WithLogging(proposalHandler.ListProposals))
	mux.HandleFunc("POST /polls/{id}/proposals/{propID}/review", middleware.WithLogging(proposalHandler.ReviewProposal))

	// Derived views and live feed
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{id}/summary", middleware.WithLogging(resultsHandler.GetSummary))
	mux.HandleFunc("GET /polls/{id}/watch", middleware.WithLogging(watchHandler.Watch))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("easyfood API v1"))
	})

	return mux
}
