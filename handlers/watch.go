// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/watch"
)

type WatchHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *watch.Hub
}

func NewWatchHandler(db *sql.DB, cfg cliparse.Config, hub *watch.Hub) *WatchHandler {
	return &WatchHandler{db: db, cfg: cfg, hub: hub}
}

// Watch handles GET /polls/:id/watch
// Server-sent events: one "view" event per snapshot, carrying the derived
// poll view for the caller. The stream ends with a "deleted" event if the
// poll is removed, or silently when the client disconnects.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	pollID := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	sub, err := h.hub.Subscribe(pollID)
	if err != nil {
		slog.Error("failed to subscribe", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			view := BuildPollView(snap, user.ID, time.Now())
			if view == nil {
				w.Write([]byte("event: deleted\ndata: {}\n\n"))
				flusher.Flush()
				return
			}

			payload, err := json.Marshal(view)
			if err != nil {
				slog.Error("failed to marshal view", "poll_id", pollID, "error", err)
				continue
			}
			w.Write([]byte("event: view\ndata: "))
			w.Write(payload)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
