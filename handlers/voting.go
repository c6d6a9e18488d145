// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/AvelDev/easyfood/auth"
	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/watch"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *watch.Hub
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, hub *watch.Hub) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, hub: hub}
}

// SubmitVote handles PUT /polls/:id/vote
// Upsert semantics: one vote record per (poll, user); resubmitting replaces
// the restaurant set. An empty set is a kept abstention, not a deletion.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := watch.LoadPoll(h.db, pollID)
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if poll == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	if !poll.CanVote(time.Now()) {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting has closed for this poll")
		return
	}

	// Every selection must name a current option.
	valid := make(map[string]bool, len(poll.Options))
	for _, opt := range poll.Options {
		valid[opt.Name] = true
	}
	seen := make(map[string]bool, len(req.Restaurants))
	for _, name := range req.Restaurants {
		if !valid[name] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown restaurant: "+name)
			return
		}
		if seen[name] {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Duplicate restaurant: "+name)
			return
		}
		seen[name] = true
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var voteID string
	err = tx.QueryRow(`
		SELECT id FROM vote WHERE poll_id = $1 AND user_id = $2
	`, pollID, user.ID).Scan(&voteID)

	isUpdate := err != sql.ErrNoRows
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if isUpdate {
		_, err = tx.Exec(`UPDATE vote SET updated_at = $1 WHERE id = $2`, time.Now(), voteID)
		if err != nil {
			slog.Error("failed to update vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update vote")
			return
		}
		_, err = tx.Exec(`DELETE FROM vote_choice WHERE vote_id = $1`, voteID)
		if err != nil {
			slog.Error("failed to delete old choices", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update vote")
			return
		}
	} else {
		voteID, _ = auth.GenerateID(16)
		_, err = tx.Exec(`
			INSERT INTO vote (id, poll_id, user_id, updated_at)
			VALUES ($1, $2, $3, $4)
		`, voteID, pollID, user.ID, time.Now())
		if err != nil {
			slog.Error("failed to insert vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
			return
		}
	}

	for _, name := range req.Restaurants {
		_, err = tx.Exec(`
			INSERT INTO vote_choice (vote_id, restaurant)
			VALUES ($1, $2)
		`, voteID, name)
		if err != nil {
			slog.Error("failed to insert vote choice", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save vote")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	h.hub.Publish(pollID)

	message := "Vote submitted"
	if isUpdate {
		message = "Vote updated"
	}
	if len(req.Restaurants) == 0 {
		message = "Vote retracted"
	}

	slog.Info("vote submitted", "poll_id", pollID, "user_id", user.ID,
		"restaurants", len(req.Restaurants), "is_update", isUpdate)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		VoteID:  voteID,
		Message: message,
	})
}

// GetMyVote handles GET /polls/:id/vote
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	var vote models.Vote
	err := h.db.QueryRow(`
		SELECT id, poll_id, user_id, updated_at
		FROM vote
		WHERE poll_id = $1 AND user_id = $2
	`, pollID, user.ID).Scan(&vote.ID, &vote.PollID, &vote.UserID, &vote.UpdatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No vote submitted")
		return
	}
	if err != nil {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	vote.Restaurants = []string{}
	rows, err := h.db.Query(`
		SELECT restaurant FROM vote_choice WHERE vote_id = $1 ORDER BY restaurant
	`, vote.ID)
	if err != nil {
		slog.Error("failed to query vote choices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			slog.Error("failed to scan vote choice", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		vote.Restaurants = append(vote.Restaurants, name)
	}

	middleware.JSONResponse(w, http.StatusOK, vote)
}
