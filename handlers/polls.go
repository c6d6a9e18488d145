// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AvelDev/easyfood/auth"
	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/scheduler"
	"github.com/AvelDev/easyfood/watch"
)

type PollHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	closer *scheduler.AutoCloser
	hub    *watch.Hub
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, closer *scheduler.AutoCloser, hub *watch.Hub) *PollHandler {
	return &PollHandler{db: db, cfg: cfg, closer: closer, hub: hub}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user := requireAdmin(h.db, h.cfg, w, r)
	if user == nil {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.VotingEndsAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_ends_at is required")
		return
	}

	options, err := models.NormalizeOptions(req.Options)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant option names must be unique")
		return
	}
	if len(options) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one restaurant option is required")
		return
	}

	pollID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate poll ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, title, description, created_by, voting_ends_at, ordering_ends_at, closed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`, pollID, req.Title, req.Description, user.ID, req.VotingEndsAt, req.OrderingEndsAt, time.Now())
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	if err := insertOptions(tx, pollID, options); err != nil {
		slog.Error("failed to insert poll options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "creator", user.ID, "options", len(options))

	// A deadline already in the past closes the poll right here.
	h.closer.Schedule(pollID, req.VotingEndsAt)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{PollID: pollID})
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	if requireUser(h.db, h.cfg, w, r) == nil {
		return
	}

	rows, err := h.db.Query(`
		SELECT id FROM poll ORDER BY closed, created_at DESC
	`)
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan poll id", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ids = append(ids, id)
	}

	polls := []models.Poll{}
	for _, id := range ids {
		poll, err := watch.LoadPoll(h.db, id)
		if err != nil {
			slog.Error("failed to load poll", "poll_id", id, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if poll != nil {
			polls = append(polls, *poll)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /polls/:id
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	if requireUser(h.db, h.cfg, w, r) == nil {
		return
	}

	poll, err := watch.LoadPoll(h.db, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if poll == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// UpdatePoll handles PATCH /polls/:id
// Edits never transition poll state by themselves, but moving the voting
// deadline into the past makes the scheduler close the poll immediately.
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, h.cfg, w, r) == nil {
		return
	}
	pollID := r.PathValue("id")

	var req models.UpdatePollRequest
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

	if req.Title != nil {
		if *req.Title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		poll.Title = *req.Title
	}
	if req.Description != nil {
		poll.Description = *req.Description
	}
	if req.VotingEndsAt != nil {
		poll.VotingEndsAt = *req.VotingEndsAt
	}
	if req.OrderingEndsAt != nil {
		poll.OrderingEndsAt = req.OrderingEndsAt
	}

	var options []models.RestaurantOption
	if req.Options != nil {
		options, err = models.NormalizeOptions(*req.Options)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "restaurant option names must be unique")
			return
		}
		if len(options) == 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "at least one restaurant option is required")
			return
		}
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE poll
		SET title = $1, description = $2, voting_ends_at = $3, ordering_ends_at = $4
		WHERE id = $5
	`, poll.Title, poll.Description, poll.VotingEndsAt, poll.OrderingEndsAt, pollID)
	if err != nil {
		slog.Error("failed to update poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}

	if req.Options != nil {
		if _, err := tx.Exec(`DELETE FROM poll_option WHERE poll_id = $1`, pollID); err != nil {
			slog.Error("failed to clear poll options", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
			return
		}
		if err := insertOptions(tx, pollID, options); err != nil {
			slog.Error("failed to insert poll options", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}

	slog.Info("poll updated", "poll_id", pollID)

	if req.VotingEndsAt != nil && !poll.Closed {
		h.closer.Schedule(pollID, *req.VotingEndsAt)
	}
	h.hub.Publish(pollID)

	poll, err = watch.LoadPoll(h.db, pollID)
	if err != nil || poll == nil {
		// Closed-and-deleted races aside, report what we can.
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
		return
	}
	middleware.JSONResponse(w, http.StatusOK, poll)
}

// DeletePoll handles DELETE /polls/:id
// Votes, orders, and proposals cascade with the poll row.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, h.cfg, w, r) == nil {
		return
	}
	pollID := r.PathValue("id")

	res, err := h.db.Exec(`DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		slog.Error("failed to delete poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete poll")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	h.closer.Cancel(pollID)
	h.hub.Publish(pollID) // nil snapshot tells watchers the poll is gone

	slog.Info("poll deleted", "poll_id", pollID)
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ClosePoll handles POST /polls/:id/close
// Admins may close at any time; any signed-in user may trigger the close
// once the deadline has passed (the countdown-expiry path in the UI).
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

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

	if user.Role != models.RoleAdmin && time.Now().Before(poll.VotingEndsAt) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only admins may close before the deadline")
		return
	}

	resp, err := ClosePollNow(h.db, pollID)
	if err != nil {
		if errors.Is(err, ErrPollNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
			return
		}
		slog.Error("failed to close poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close poll")
		return
	}

	h.closer.Cancel(pollID)
	h.hub.Publish(pollID)

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CloseOrdering handles POST /polls/:id/close-ordering
// Sets the ordering deadline to the current time.
func (h *PollHandler) CloseOrdering(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, h.cfg, w, r) == nil {
		return
	}
	pollID := r.PathValue("id")

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

	now := time.Now()
	if !poll.Closed {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting has not closed yet")
		return
	}
	if poll.State(now) == models.StateOrderingClosed {
		middleware.ErrorResponse(w, http.StatusConflict, "Ordering is already closed")
		return
	}

	_, err = h.db.Exec(`UPDATE poll SET ordering_ends_at = $1 WHERE id = $2`, now, pollID)
	if err != nil {
		slog.Error("failed to close ordering", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close ordering")
		return
	}

	h.hub.Publish(pollID)

	slog.Info("ordering closed", "poll_id", pollID)
	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":           "ordering_closed",
		"ordering_ends_at": now,
	})
}

// insertOptions writes a normalized option list with stable positions.
func insertOptions(tx *sql.Tx, pollID string, options []models.RestaurantOption) error {
	for i, opt := range options {
		var url interface{}
		if opt.URL != "" {
			url = opt.URL
		}
		if _, err := tx.Exec(`
			INSERT INTO poll_option (poll_id, position, name, url)
			VALUES ($1, $2, $3, $4)
		`, pollID, i, opt.Name, url); err != nil {
			return err
		}
	}
	return nil
}
