// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/watch"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /polls/:id/results
// Returns the derived view: per-option tallies with voter names, the
// winner once closed, order totals, and the caller's own vote and order.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	snap, err := watch.LoadSnapshot(h.db, pollID)
	if err != nil {
		slog.Error("failed to load snapshot", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	view := BuildPollView(snap, user.ID, time.Now())
	if view == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// GetSummary handles GET /polls/:id/summary
// Compact, human-formatted card for dashboards and link previews.
func (h *ResultsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if requireUser(h.db, h.cfg, w, r) == nil {
		return
	}
	pollID := r.PathValue("id")

	snap, err := watch.LoadSnapshot(h.db, pollID)
	if err != nil {
		slog.Error("failed to load snapshot", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if snap.Poll == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	now := time.Now()
	view := BuildPollView(snap, "", now)

	summary := map[string]interface{}{
		"title":       snap.Poll.Title,
		"state":       view.State,
		"voter_count": view.VoterCount,
		"order_count": view.OrderCount,
		"total_cost":  FormatCents(view.TotalCostCents),
	}

	switch view.State {
	case models.StateVotingOpen:
		summary["voting_ends"] = humanize.Time(snap.Poll.VotingEndsAt)
	case models.StateVotingClosed:
		summary["selected_restaurant"] = snap.Poll.SelectedRestaurant
		if snap.Poll.OrderingEndsAt != nil {
			summary["ordering_ends"] = humanize.Time(*snap.Poll.OrderingEndsAt)
		}
	case models.StateOrderingClosed:
		summary["selected_restaurant"] = snap.Poll.SelectedRestaurant
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}

// FormatCents renders integer cents as a dollar string, e.g. 3250 → "$32.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}
