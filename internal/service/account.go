package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kmalkov/fitness-leveling/internal/auth"
	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/progression"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register creates a new user account. New accounts start at level 1 with
// zero XP, default settings, and a public profile. Fails with the
// repository duplicate errors when the username or email is taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		XP:           0,
		Level:        1,
		Streak:       0,
		Visibility:   models.VisibilityPublic,
		Settings:     models.DefaultSettings(),
		CreatedAt:    s.now().UTC(),
	}

	return s.store.CreateUser(ctx, u)
}

// LoginResult carries the issued session token and the user it belongs to.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates by username (or email) and password and issues a
// session token. The streak decay check runs here: if the user's last
// workout was before yesterday, the streak is reset to zero and persisted
// before returning.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) && strings.Contains(username, "@") {
		u, err = s.store.UserByEmail(ctx, username)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	u, err = s.applyStreakDecay(ctx, u)
	if err != nil {
		return nil, err
	}
	u, err = s.loadBadges(ctx, u)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

// SessionView is the current-user snapshot returned on session load. The
// level band bounds and normalized progress are derived, never stored.
type SessionView struct {
	User       *models.User `json:"user"`
	LevelFloor int          `json:"level_floor"`
	LevelCeil  int          `json:"level_ceil"`
	Progress   float64      `json:"progress"`
}

// Session returns the authenticated user's snapshot, running the streak
// decay check first so a stale streak never reaches the client.
func (s *Service) Session(ctx context.Context, userID string) (*SessionView, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u, err = s.applyStreakDecay(ctx, u)
	if err != nil {
		return nil, err
	}
	u, err = s.loadBadges(ctx, u)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		User:       u,
		LevelFloor: progression.LevelFloor(u.Level),
		LevelCeil:  progression.LevelCeil(u.Level),
		Progress:   progression.Progress(u.XP),
	}, nil
}

// UpdatePassword changes the user's password after verifying the current
// one. Fails with ErrInvalidCredentials when the current password is wrong.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, newPassword string) error {
	if len(newPassword) < 6 || len(newPassword) > 72 {
		return validationError(errors.New("new password must be between 6 and 72 characters"))
	}

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateUser(ctx, userID, repository.UserUpdate{PasswordHash: hash})
	return err
}

// applyStreakDecay runs the decay rule against the user and persists the
// zeroed streak when it fires. Returns the possibly refreshed record.
func (s *Service) applyStreakDecay(ctx context.Context, u *models.User) (*models.User, error) {
	snap, changed := progression.DecayStreak(snapshotOf(u), s.now())
	if !changed {
		return u, nil
	}
	streak := snap.Streak
	return s.store.UpdateUser(ctx, u.ID, repository.UserUpdate{Streak: &streak})
}
