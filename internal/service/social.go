package service

import (
	"context"
	"strings"

	"github.com/kmalkov/fitness-leveling/internal/models"
)

// leaderboardLimit caps how many ranked users the leaderboard returns.
const leaderboardLimit = 100

// searchLimit caps how many matches a username search returns.
const searchLimit = 20

// Leaderboard lists the top users by XP, descending.
func (s *Service) Leaderboard(ctx context.Context) ([]models.UserSummary, error) {
	return s.store.UsersRankedByXP(ctx, leaderboardLimit)
}

// SearchUsers finds users whose username contains the query,
// case-insensitively. An empty query returns no matches.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserSummary{}, nil
	}
	return s.store.SearchUsersByUsername(ctx, query, searchLimit)
}

// SendFriendRequest creates a pending request from userID to friendID.
// Self-requests and duplicates in either direction are rejected.
func (s *Service) SendFriendRequest(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfFriendship
	}
	// The target must exist; surface ErrNotFound before the insert.
	if _, err := s.store.UserByID(ctx, friendID); err != nil {
		return err
	}
	return s.store.CreateFriendRequest(ctx, userID, friendID)
}

// AcceptFriendRequest accepts the pending request sent by requesterID to
// the authenticated user. Fails with ErrNotFound when no such pending
// request exists.
func (s *Service) AcceptFriendRequest(ctx context.Context, userID, requesterID string) error {
	return s.store.AcceptFriendRequest(ctx, requesterID, userID)
}

// RemoveFriend deletes the relationship between the two users, whether it
// is an accepted friendship, an outgoing request, or an incoming request.
// Rejecting a request and unfriending are the same operation.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return s.store.DeleteFriendship(ctx, userID, friendID)
}

// Friends lists the user's accepted friends.
func (s *Service) Friends(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.store.FriendsOf(ctx, userID)
}

// PendingRequests lists the users whose friend requests to userID are
// still awaiting an answer.
func (s *Service) PendingRequests(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.store.PendingRequestsFor(ctx, userID)
}
