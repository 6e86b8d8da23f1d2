package service

import (
	"context"

	"github.com/kmalkov/fitness-leveling/internal/models"
)

// Export assembles the user's full data snapshot: account and profile,
// complete workout history, achievement unlocks, and the accepted friend
// list. The document is built on demand and never persisted.
func (s *Service) Export(ctx context.Context, userID string) (*models.ExportSnapshot, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	workouts, err := s.store.WorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.store.AchievementUnlocksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.store.FriendsOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ExportSnapshot{
		User: models.ExportUser{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Email:    u.Email,
			XP:       u.XP,
			Level:    u.Level,
			Streak:   u.Streak,
			Profile:  u.Profile,
		},
		Workouts:     workouts,
		Achievements: unlocks,
		Friends:      friends,
		ExportedAt:   s.now().UTC(),
	}, nil
}
