package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kmalkov/fitness-leveling/internal/middleware"
	"github.com/kmalkov/fitness-leveling/internal/models"
)

// SocialService defines the leaderboard, search, and friendship operations
// required by SocialHandler.
type SocialService interface {
	// Leaderboard lists the top users by XP.
	Leaderboard(ctx context.Context) ([]models.UserSummary, error)
	// SearchUsers finds users by username substring.
	SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error)
	// SendFriendRequest creates a pending request.
	SendFriendRequest(ctx context.Context, userID, friendID string) error
	// AcceptFriendRequest accepts a pending request sent to the user.
	AcceptFriendRequest(ctx context.Context, userID, requesterID string) error
	// RemoveFriend deletes a friendship or rejects a request.
	RemoveFriend(ctx context.Context, userID, friendID string) error
	// Friends lists accepted friends.
	Friends(ctx context.Context, userID string) ([]models.UserSummary, error)
	// PendingRequests lists users awaiting an answer.
	PendingRequests(ctx context.Context, userID string) ([]models.UserSummary, error)
}

// SocialHandler handles the leaderboard, user search, and friendships.
type SocialHandler struct {
	// Social performs the underlying social operations.
	Social SocialService
}

// Leaderboard handles GET /api/leaderboard.
func (h *SocialHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Social.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Search handles GET /api/users?username=<query>.
func (h *SocialHandler) Search(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Social.SearchUsers(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// Friends handles GET /api/friends.
func (h *SocialHandler) Friends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	friends, err := h.Social.Friends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// PendingRequests handles GET /api/friends/requests.
func (h *SocialHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	pending, err := h.Social.PendingRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// FriendRequest represents the JSON payload for sending a friend request.
type FriendRequest struct {
	FriendID string `json:"friend_id"`
}

// SendRequest handles POST /api/friends.
func (h *SocialHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req FriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Social.SendFriendRequest(r.Context(), userID, req.FriendID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "pending"})
}

// Accept handles POST /api/friends/{id}/accept, where {id} is the user
// who sent the request.
func (h *SocialHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	requesterID := chi.URLParam(r, "id")

	if err := h.Social.AcceptFriendRequest(r.Context(), userID, requesterID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// Remove handles DELETE /api/friends/{id}. It removes an accepted
// friendship or rejects a pending request; the two cases are identical
// from the store's point of view.
func (h *SocialHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	friendID := chi.URLParam(r, "id")

	if err := h.Social.RemoveFriend(r.Context(), userID, friendID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
