package service

import (
	"context"
	"errors"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

// ProfileUpdateInput describes a partial profile change. Nil fields are
// left untouched.
type ProfileUpdateInput struct {
	Name       *string            `json:"name"`
	Profile    *models.Profile    `json:"profile"`
	Visibility *models.Visibility `json:"profile_visibility"`
}

// ProfileView is the representation of a user shown to a viewer. Email and
// the progression stats are stripped when the owner's settings hide them
// from non-owners.
type ProfileView struct {
	ID            string            `json:"id"`
	Username      string            `json:"username"`
	Name          string            `json:"name"`
	Email         string            `json:"email,omitempty"`
	XP            int               `json:"xp"`
	Level         int               `json:"level"`
	Streak        int               `json:"streak"`
	TotalWorkouts int               `json:"total_workouts"`
	Badges        []string          `json:"badges"`
	Profile       models.Profile    `json:"profile"`
	Visibility    models.Visibility `json:"profile_visibility"`
	StatsHidden   bool              `json:"stats_hidden,omitempty"`
}

// GetProfile returns the target user's profile as seen by the viewer.
//
// Visibility rules: the owner always sees their own profile; "private"
// admits nobody else; "friends" admits accepted friends; "public" admits
// everyone. Within an admitted view, the email is included only when the
// owner shares it, and the progression stats are zeroed when the owner
// hides them.
func (s *Service) GetProfile(ctx context.Context, viewerID, targetID string) (*ProfileView, error) {
	u, err := s.store.UserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	owner := viewerID == targetID
	if !owner {
		switch u.Visibility {
		case models.VisibilityPrivate:
			return nil, ErrForbidden
		case models.VisibilityFriends:
			f, err := s.store.FriendshipBetween(ctx, viewerID, targetID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrForbidden
			}
			if err != nil {
				return nil, err
			}
			if f.Status != models.FriendshipAccepted {
				return nil, ErrForbidden
			}
		}
	}

	u, err = s.loadBadges(ctx, u)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.Name,
		Email:         u.Email,
		XP:            u.XP,
		Level:         u.Level,
		Streak:        u.Streak,
		TotalWorkouts: u.TotalWorkouts,
		Badges:        u.Badges,
		Profile:       u.Profile,
		Visibility:    u.Visibility,
	}
	if !owner {
		if !u.Settings.ShowEmailPublic {
			view.Email = ""
		}
		if !u.Settings.ShowStatsPublic {
			view.XP, view.Level, view.Streak, view.TotalWorkouts = 0, 0, 0, 0
			view.Badges = nil
			view.StatsHidden = true
		}
	}
	return view, nil
}

// UpdateProfile applies a partial profile change for the user and returns
// the refreshed record.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput) (*models.User, error) {
	if in.Visibility != nil && !in.Visibility.Valid() {
		return nil, validationError(errors.New("unknown profile visibility"))
	}
	if in.Name != nil && (*in.Name == "" || len(*in.Name) > 100) {
		return nil, validationError(errors.New("name must be between 1 and 100 characters"))
	}

	upd := repository.UserUpdate{
		Name:       in.Name,
		Profile:    in.Profile,
		Visibility: in.Visibility,
	}
	return s.store.UpdateUser(ctx, userID, upd)
}

// UpdateSettings replaces the user's preference set. Enumerated fields
// that arrive empty fall back to their defaults.
func (s *Service) UpdateSettings(ctx context.Context, userID string, settings models.Settings) (*models.User, error) {
	settings.Normalize()
	return s.store.UpdateUser(ctx, userID, repository.UserUpdate{Settings: &settings})
}
