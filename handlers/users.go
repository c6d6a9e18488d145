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

	"github.com/AvelDev/easyfood/auth"
	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
)

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// Register handles POST /auth/register
// Creates an account, or refreshes the session for an existing email. The
// returned token authenticates every other endpoint via X-Session-Token.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}
	if email == "" || !strings.Contains(email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	// Existing account: hand back a fresh token and update the name.
	var existingID, role string
	err := h.db.QueryRow(`
		SELECT id, role FROM app_user WHERE email = $1
	`, email).Scan(&existingID, &role)

	if err == nil {
		if _, err := h.db.Exec(`UPDATE app_user SET display_name = $1 WHERE id = $2`, name, existingID); err != nil {
			slog.Error("failed to update display name", "error", err)
		}

		slog.Info("user signed in", "user_id", existingID)
		middleware.JSONResponse(w, http.StatusOK, models.RegisterResponse{
			UserID:       existingID,
			SessionToken: auth.MintSessionToken(existingID, h.cfg.SessionSalt),
			Role:         role,
			IsNew:        false,
		})
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	userID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO app_user (id, display_name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, name, email, models.RoleUser, time.Now())
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("user registered", "user_id", userID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		UserID:       userID,
		SessionToken: auth.MintSessionToken(userID, h.cfg.SessionSalt),
		Role:         models.RoleUser,
		IsNew:        true,
	})
}

// Me handles GET /auth/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, h.cfg, w, r)
	if user == nil {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}
