// Package repository defines the data-access contract for the fitness
// tracker and provides the two interchangeable backends that satisfy it:
// a PostgreSQL store and an embedded SQLite store. The service layer is
// written against the Store interface and never learns which one backs it.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kmalkov/fitness-leveling/internal/models"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateFriendship is returned when a friendship or pending
	// request already exists between the two users.
	ErrDuplicateFriendship = errors.New("friendship already exists")
)

// UserUpdate describes a partial update of a user record. Nil fields are
// left untouched. LastWorkoutDate is only ever advanced, never cleared.
type UserUpdate struct {
	Name            *string
	PasswordHash    []byte
	XP              *int
	Level           *int
	Streak          *int
	LastWorkoutDate *time.Time
	TotalWorkouts   *int
	Profile         *models.Profile
	Visibility      *models.Visibility
	Settings        *models.Settings
}

// Store is the minimal capability set the controller needs from a backend.
// Both implementations guarantee username and email uniqueness and the
// at-most-one-unlock-per-achievement invariant.
type Store interface {
	// CreateUser persists a new user. Fails with ErrDuplicateUsername or
	// ErrDuplicateEmail on a uniqueness collision.
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	// UserByID fetches a user by identifier. Fails with ErrNotFound.
	UserByID(ctx context.Context, id string) (*models.User, error)
	// UserByUsername fetches a user by login name. Fails with ErrNotFound.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByEmail fetches a user by email. Fails with ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser applies a partial update and returns the fresh record.
	// Fails with ErrNotFound when the user does not exist.
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error)
	// UsersRankedByXP lists up to limit user summaries, descending XP.
	UsersRankedByXP(ctx context.Context, limit int) ([]models.UserSummary, error)
	// SearchUsersByUsername lists summaries whose username contains the
	// query, case-insensitively.
	SearchUsersByUsername(ctx context.Context, query string, limit int) ([]models.UserSummary, error)

	// AddWorkout persists a new workout record.
	AddWorkout(ctx context.Context, w *models.Workout) (*models.Workout, error)
	// WorkoutsByUser lists a user's workouts, newest first.
	WorkoutsByUser(ctx context.Context, userID string) ([]models.Workout, error)

	// AddAchievementUnlock records an unlock idempotently: when the pair
	// already exists the stored record is returned and nothing is written.
	AddAchievementUnlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (*models.AchievementUnlock, error)
	// AchievementUnlocksByUser lists a user's unlocks in unlock order.
	AchievementUnlocksByUser(ctx context.Context, userID string) ([]models.AchievementUnlock, error)

	// CreateFriendRequest stores a pending request from userID to friendID.
	// Fails with ErrDuplicateFriendship when a relationship already exists
	// in either direction.
	CreateFriendRequest(ctx context.Context, userID, friendID string) error
	// AcceptFriendRequest marks the pending request from requesterID to
	// recipientID as accepted. Fails with ErrNotFound when no such pending
	// request exists.
	AcceptFriendRequest(ctx context.Context, requesterID, recipientID string) error
	// DeleteFriendship removes any relationship between the two users,
	// pending or accepted. Fails with ErrNotFound when none exists.
	DeleteFriendship(ctx context.Context, userID, friendID string) error
	// FriendshipBetween returns the relationship between two users in
	// either direction. Fails with ErrNotFound.
	FriendshipBetween(ctx context.Context, userID, friendID string) (*models.Friendship, error)
	// FriendsOf lists summaries of the user's accepted friends.
	FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error)
	// PendingRequestsFor lists summaries of users whose requests to
	// recipientID are still pending.
	PendingRequestsFor(ctx context.Context, recipientID string) ([]models.UserSummary, error)
}
