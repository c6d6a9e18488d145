// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/watch"
)

type ProposalHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *watch.Hub
}

func NewProposalHandler(db *sql.DB, cfg cliparse.Config, hub *watch.Hub) *ProposalHandler {
	return &ProposalHandler{db: db, cfg: cfg, hub: hub}
}

// SubmitProposal handles POST /polls/:id/proposals
// A user may hold at most one pending proposal per poll.
func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	var req models.SubmitProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
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
	if poll.Closed {
		middleware.ErrorResponse(w, http.StatusConflict, "Poll is no longer accepting proposals")
		return
	}

	for _, opt := range poll.Options {
		if opt.Name == name {
			middleware.ErrorResponse(w, http.StatusConflict, name+" is already an option")
			return
		}
	}

	var pending bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM proposal
			WHERE poll_id = $1 AND user_id = $2 AND status = $3
		)
	`, pollID, user.ID, models.ProposalPending).Scan(&pending)
	if err != nil {
		slog.Error("failed to check pending proposals", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if pending {
		middleware.ErrorResponse(w, http.StatusConflict, "You already have a pending proposal for this poll")
		return
	}

	proposalID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO proposal (id, poll_id, user_id, name, url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, proposalID, pollID, user.ID, name, strings.TrimSpace(req.URL), models.ProposalPending, time.Now())
	if err != nil {
		slog.Error("failed to insert proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit proposal")
		return
	}

	slog.Info("proposal submitted", "poll_id", pollID, "proposal_id", proposalID, "name", name)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitProposalResponse{
		ProposalID: proposalID,
	})
}

// ListProposals handles GET /polls/:id/proposals
// Users see their own proposals; admins see everyone's.
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	query := `
		SELECT id, poll_id, user_id, name, url, status, reviewed_by, admin_notes, created_at, reviewed_at
		FROM proposal
		WHERE poll_id = $1
		ORDER BY created_at`
	args := []interface{}{pollID}
	if user.Role != models.RoleAdmin {
		query = `
		SELECT id, poll_id, user_id, name, url, status, reviewed_by, admin_notes, created_at, reviewed_at
		FROM proposal
		WHERE poll_id = $1 AND user_id = $2
		ORDER BY created_at`
		args = append(args, user.ID)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query proposals", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		var p models.Proposal
		var url, reviewedBy, adminNotes sql.NullString
		var reviewedAt sql.NullTime
		err := rows.Scan(&p.ID, &p.PollID, &p.UserID, &p.Name, &url, &p.Status,
			&reviewedBy, &adminNotes, &p.CreatedAt, &reviewedAt)
		if err != nil {
			slog.Error("failed to scan proposal", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		p.URL = url.String
		p.ReviewedBy = reviewedBy.String
		p.AdminNotes = adminNotes.String
		if reviewedAt.Valid {
			t := reviewedAt.Time
			p.ReviewedAt = &t
		}
		proposals = append(proposals, p)
	}

	middleware.JSONResponse(w, http.StatusOK, proposals)
}

// ReviewProposal handles POST /polls/:id/proposals/:propID/review
// Approval appends the proposed restaurant to the end of the poll's option
// list; rejection just records the reviewer and notes.
func (h *ProposalHandler) ReviewProposal(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(h.db, h.cfg, w, r)
	if admin == nil {
		return
	}
	pollID := r.PathValue("id")
	propID := r.PathValue("propID")

	var req models.ReviewProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var name string
	var url sql.NullString
	var status string
	err := h.db.QueryRow(`
		SELECT name, url, status FROM proposal WHERE id = $1 AND poll_id = $2
	`, propID, pollID).Scan(&name, &url, &status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
		return
	}
	if err != nil {
		slog.Error("failed to query proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.ProposalPending {
		middleware.ErrorResponse(w, http.StatusConflict, "Proposal has already been reviewed")
		return
	}

	newStatus := models.ProposalRejected
	if req.Approve {
		newStatus = models.ProposalApproved
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if req.Approve {
		poll, err := watch.LoadPoll(h.db, pollID)
		if err != nil || poll == nil {
			slog.Error("failed to load poll for approval", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		for _, opt := range poll.Options {
			if opt.Name == name {
				middleware.ErrorResponse(w, http.StatusConflict, name+" is already an option")
				return
			}
		}

		var urlArg interface{}
		if url.Valid && url.String != "" {
			urlArg = url.String
		}
		_, err = tx.Exec(`
			INSERT INTO poll_option (poll_id, position, name, url)
			VALUES ($1, $2, $3, $4)
		`, pollID, len(poll.Options), name, urlArg)
		if err != nil {
			slog.Error("failed to append option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to approve proposal")
			return
		}
	}

	_, err = tx.Exec(`
		UPDATE proposal
		SET status = $1, reviewed_by = $2, admin_notes = $3, reviewed_at = $4
		WHERE id = $5
	`, newStatus, admin.ID, req.AdminNotes, time.Now(), propID)
	if err != nil {
		slog.Error("failed to update proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to review proposal")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to review proposal")
		return
	}

	if req.Approve {
		h.hub.Publish(pollID)
	}

	slog.Info("proposal reviewed", "poll_id", pollID, "proposal_id", propID,
		"status", newStatus, "reviewer", admin.ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": newStatus})
}
