// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/AvelDev/easyfood/auth"
	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/middleware"
	"github.com/AvelDev/easyfood/models"
)

// SessionHeader carries the HMAC-signed session token on every
// authenticated request.
const SessionHeader = "X-Session-Token"

// requireUser resolves the session token into a user record. On failure it
// writes the error response and returns nil; callers just bail out.
func requireUser(db *sql.DB, cfg cliparse.Config, w http.ResponseWriter, r *http.Request) *models.User {
	token := r.Header.Get(SessionHeader)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, SessionHeader+" header required")
		return nil
	}

	userID, err := auth.VerifySessionToken(token, cfg.SessionSalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return nil
	}

	user, err := loadUser(db, userID)
	if err != nil {
		slog.Error("failed to load user", "user_id", userID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil
	}
	if user == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown user")
		return nil
	}
	return user
}

// requireAdmin is requireUser plus a role gate.
func requireAdmin(db *sql.DB, cfg cliparse.Config, w http.ResponseWriter, r *http.Request) *models.User {
	user := requireUser(db, cfg, w, r)
	if user == nil {
		return nil
	}
	if user.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin role required")
		return nil
	}
	return user
}

// loadUser reads a user row. Returns (nil, nil) when absent.
func loadUser(db *sql.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.QueryRow(`
		SELECT id, display_name, email, role, created_at
		FROM app_user
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
