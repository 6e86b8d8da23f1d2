// Package service implements the business logic of the fitness tracker:
// registration and login, workout submission through the progression
// engine, profile visibility rules, friendships, and data export.
// Persistence is delegated to a repository.Store, so the same controller
// runs unchanged against PostgreSQL and SQLite.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kmalkov/fitness-leveling/internal/auth"
	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/progression"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when a login or password check fails.
	// It deliberately does not distinguish "no such user" from "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when a viewer may not see the requested profile.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfFriendship is returned when a user tries to befriend themselves.
	ErrSelfFriendship = errors.New("cannot send a friend request to yourself")
)

// Service implements the application operations on top of a Store.
type Service struct {
	// store performs the data-layer operations.
	store repository.Store
	// tokens issues and verifies session tokens.
	tokens *auth.TokenManager
	// validate checks struct tags on request inputs.
	validate *validator.Validate
	// now supplies the current time; overridable in tests.
	now func() time.Time
}

// New constructs a Service using the provided store and token manager.
func New(store repository.Store, tokens *auth.TokenManager) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
		now:      time.Now,
	}
}

// VerifyToken checks a session token and returns the user id it carries.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

// loadBadges fills the user's badge list from the achievement unlock
// records. Badges live only in that table, so every path that reads or
// feeds the unlocked set goes through here.
func (s *Service) loadBadges(ctx context.Context, u *models.User) (*models.User, error) {
	unlocks, err := s.store.AchievementUnlocksByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	badges := make([]string, 0, len(unlocks))
	for _, unlock := range unlocks {
		badges = append(badges, unlock.AchievementID)
	}
	u.Badges = badges
	return u, nil
}

// snapshotOf extracts the progression-relevant state from a user record.
func snapshotOf(u *models.User) progression.Snapshot {
	return progression.Snapshot{
		XP:              u.XP,
		Level:           u.Level,
		Streak:          u.Streak,
		TotalWorkouts:   u.TotalWorkouts,
		LastWorkoutDate: u.LastWorkoutDate,
		Unlocked:        u.Badges,
	}
}

// validationError converts a validator error into a typed service error.
func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
