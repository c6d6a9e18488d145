// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AvelDev/easyfood/auth"
	"github.com/AvelDev/easyfood/models"
)

func TestRegister(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(conn, cfg)

	// Pre-create an account for the "existing email" case
	existingID, _ := newUser(t, conn, cfg, "Old Name", "taken@example.com", "user")

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.RegisterResponse)
	}{
		{
			name: "new account",
			requestBody: models.RegisterRequest{
				DisplayName: "Alice",
				Email:       "alice@example.com",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.RegisterResponse) {
				if resp.UserID == "" || resp.SessionToken == "" {
					t.Error("Expected non-empty user_id and session_token")
				}
				if !resp.IsNew {
					t.Error("Expected is_new to be true for a new account")
				}
				if resp.Role != models.RoleUser {
					t.Errorf("Expected role 'user', got %q", resp.Role)
				}

				// The token verifies against the configured salt
				userID, err := auth.VerifySessionToken(resp.SessionToken, cfg.SessionSalt)
				if err != nil || userID != resp.UserID {
					t.Errorf("Session token does not verify: %v", err)
				}
			},
		},
		{
			name: "existing email refreshes session",
			requestBody: models.RegisterRequest{
				DisplayName: "New Name",
				Email:       "taken@example.com",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.RegisterResponse) {
				if resp.UserID != existingID {
					t.Errorf("Expected existing user ID %s, got %s", existingID, resp.UserID)
				}
				if resp.IsNew {
					t.Error("Expected is_new to be false for an existing account")
				}

				// Display name updates on sign-in
				var name string
				if err := conn.QueryRow(`SELECT display_name FROM app_user WHERE id = $1`, existingID).Scan(&name); err != nil {
					t.Fatalf("Failed to query user: %v", err)
				}
				if name != "New Name" {
					t.Errorf("Expected updated display name, got %q", name)
				}
			},
		},
		{
			name: "email is case-insensitive",
			requestBody: models.RegisterRequest{
				DisplayName: "New Name",
				Email:       "TAKEN@example.com",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing display name",
			requestBody: models.RegisterRequest{
				Email: "no-name@example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			requestBody: models.RegisterRequest{
				DisplayName: "Alice",
				Email:       "not-an-email",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest("POST", "/auth/register", tt.requestBody, "")
			w := httptest.NewRecorder()
			handler.Register(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if (tt.expectedStatus == http.StatusCreated || tt.expectedStatus == http.StatusOK) && tt.checkResponse != nil {
				var resp models.RegisterResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestMe(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	handler := NewUserHandler(conn, cfg)

	userID, token := newUser(t, conn, cfg, "Alice", "alice@example.com", "user")

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{"valid session", token, http.StatusOK},
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "nope.nope", http.StatusUnauthorized},
		{"token for a deleted user", auth.MintSessionToken("ghost", cfg.SessionSalt), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest("GET", "/auth/me", nil, tt.token)
			w := httptest.NewRecorder()
			handler.Me(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var user models.User
				json.NewDecoder(w.Body).Decode(&user)
				if user.ID != userID || user.DisplayName != "Alice" {
					t.Errorf("Unexpected user payload: %+v", user)
				}
			}
		})
	}
}
