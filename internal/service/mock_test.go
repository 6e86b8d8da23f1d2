package service

import (
	"context"
	"time"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

// mockStore implements repository.Store with per-method stub functions.
// Calling a method whose func field is nil panics, which makes an
// unexpected store call fail the test loudly.
type mockStore struct {
	CreateUserFunc            func(ctx context.Context, u *models.User) (*models.User, error)
	UserByIDFunc              func(ctx context.Context, id string) (*models.User, error)
	UserByUsernameFunc        func(ctx context.Context, username string) (*models.User, error)
	UserByEmailFunc           func(ctx context.Context, email string) (*models.User, error)
	UpdateUserFunc            func(ctx context.Context, id string, upd repository.UserUpdate) (*models.User, error)
	UsersRankedByXPFunc       func(ctx context.Context, limit int) ([]models.UserSummary, error)
	SearchUsersByUsernameFunc func(ctx context.Context, query string, limit int) ([]models.UserSummary, error)

	AddWorkoutFunc     func(ctx context.Context, w *models.Workout) (*models.Workout, error)
	WorkoutsByUserFunc func(ctx context.Context, userID string) ([]models.Workout, error)

	AddAchievementUnlockFunc     func(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (*models.AchievementUnlock, error)
	AchievementUnlocksByUserFunc func(ctx context.Context, userID string) ([]models.AchievementUnlock, error)

	CreateFriendRequestFunc func(ctx context.Context, userID, friendID string) error
	AcceptFriendRequestFunc func(ctx context.Context, requesterID, recipientID string) error
	DeleteFriendshipFunc    func(ctx context.Context, userID, friendID string) error
	FriendshipBetweenFunc   func(ctx context.Context, userID, friendID string) (*models.Friendship, error)
	FriendsOfFunc           func(ctx context.Context, userID string) ([]models.UserSummary, error)
	PendingRequestsForFunc  func(ctx context.Context, recipientID string) ([]models.UserSummary, error)
}

// emptyUnlocks is a stub for tests where the user has no achievements yet.
func emptyUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	return nil, nil
}

func (m *mockStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	return m.CreateUserFunc(ctx, u)
}
func (m *mockStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	return m.UserByIDFunc(ctx, id)
}
func (m *mockStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.UserByUsernameFunc(ctx, username)
}
func (m *mockStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.UserByEmailFunc(ctx, email)
}
func (m *mockStore) UpdateUser(ctx context.Context, id string, upd repository.UserUpdate) (*models.User, error) {
	return m.UpdateUserFunc(ctx, id, upd)
}
func (m *mockStore) UsersRankedByXP(ctx context.Context, limit int) ([]models.UserSummary, error) {
	return m.UsersRankedByXPFunc(ctx, limit)
}
func (m *mockStore) SearchUsersByUsername(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	return m.SearchUsersByUsernameFunc(ctx, query, limit)
}
func (m *mockStore) AddWorkout(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	return m.AddWorkoutFunc(ctx, w)
}
func (m *mockStore) WorkoutsByUser(ctx context.Context, userID string) ([]models.Workout, error) {
	return m.WorkoutsByUserFunc(ctx, userID)
}
func (m *mockStore) AddAchievementUnlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (*models.AchievementUnlock, error) {
	return m.AddAchievementUnlockFunc(ctx, userID, achievementID, unlockedAt)
}
func (m *mockStore) AchievementUnlocksByUser(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	return m.AchievementUnlocksByUserFunc(ctx, userID)
}
func (m *mockStore) CreateFriendRequest(ctx context.Context, userID, friendID string) error {
	return m.CreateFriendRequestFunc(ctx, userID, friendID)
}
func (m *mockStore) AcceptFriendRequest(ctx context.Context, requesterID, recipientID string) error {
	return m.AcceptFriendRequestFunc(ctx, requesterID, recipientID)
}
func (m *mockStore) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	return m.DeleteFriendshipFunc(ctx, userID, friendID)
}
func (m *mockStore) FriendshipBetween(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	return m.FriendshipBetweenFunc(ctx, userID, friendID)
}
func (m *mockStore) FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return m.FriendsOfFunc(ctx, userID)
}
func (m *mockStore) PendingRequestsFor(ctx context.Context, recipientID string) ([]models.UserSummary, error) {
	return m.PendingRequestsForFunc(ctx, recipientID)
}
