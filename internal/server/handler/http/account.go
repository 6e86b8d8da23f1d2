package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kmalkov/fitness-leveling/internal/middleware"
	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/service"
)

// AccountService defines the account operations required by AccountHandler.
type AccountService interface {
	// Register creates a new user account.
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	// Login authenticates by username and password and issues a token.
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	// Session returns the authenticated user's current snapshot.
	Session(ctx context.Context, userID string) (*service.SessionView, error)
	// UpdatePassword changes the password after verifying the current one.
	UpdatePassword(ctx context.Context, userID, current, newPassword string) error
}

// AccountHandler handles registration, login, session, and password change.
type AccountHandler struct {
	// Account performs the underlying account operations.
	Account AccountService
}

// Register handles POST /api/register.
// It expects a JSON body with username, name, email, and password, and
// responds with the created user and status 201.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.Account.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/login.
// On success it responds with the session token and the user record.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.Account.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Session handles GET /api/session.
// It returns the authenticated user together with the derived level band
// and progress toward the next level.
func (h *AccountHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	view, err := h.Account.Session(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PasswordRequest represents the JSON payload for a password change.
type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdatePassword handles PUT /api/password.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Account.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
