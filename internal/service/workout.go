package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/progression"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

// WorkoutInput is the payload for logging a workout.
type WorkoutInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Type      string `json:"type" validate:"required,max=50"`
	Duration  int    `json:"duration" validate:"required,gt=0"`
	Intensity string `json:"intensity" validate:"required,oneof=low medium high"`
}

// WorkoutResult reports one accepted submission: the stored workout, the
// events the client should announce, and the user's refreshed state.
type WorkoutResult struct {
	Workout *models.Workout     `json:"workout"`
	Events  []progression.Event `json:"events"`
	User    *models.User        `json:"user"`
}

// LogWorkout runs a submission through the progression engine and persists
// the outcome. Persistence is stepwise: the workout row first, then the
// user's progression fields, then one unlock row per newly earned
// achievement. Unlock writes are idempotent at the store level, so a
// re-derived unlock never fails the submission.
func (s *Service) LogWorkout(ctx context.Context, userID string, in WorkoutInput) (*WorkoutResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The unlocked set must be loaded before the engine runs, otherwise an
	// already-earned achievement would re-announce and re-award its bonus.
	u, err = s.loadBadges(ctx, u)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snap, events, err := progression.ApplyWorkout(snapshotOf(u), in.Duration, models.Intensity(in.Intensity), now)
	if err != nil {
		return nil, validationError(err)
	}

	// The first event is always the workout's own XP award.
	workoutXP := events[0].XP

	w := &models.Workout{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Type:      in.Type,
		Duration:  in.Duration,
		Intensity: models.Intensity(in.Intensity),
		XP:        workoutXP,
		CreatedAt: now.UTC(),
	}
	w, err = s.store.AddWorkout(ctx, w)
	if err != nil {
		return nil, err
	}

	upd := repository.UserUpdate{
		XP:              &snap.XP,
		Level:           &snap.Level,
		Streak:          &snap.Streak,
		TotalWorkouts:   &snap.TotalWorkouts,
		LastWorkoutDate: snap.LastWorkoutDate,
	}
	u, err = s.store.UpdateUser(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		if ev.Kind != progression.EventAchievementUnlocked {
			continue
		}
		if _, err := s.store.AddAchievementUnlock(ctx, userID, ev.AchievementID, now.UTC()); err != nil {
			return nil, err
		}
	}
	u.Badges = snap.Unlocked

	return &WorkoutResult{Workout: w, Events: events, User: u}, nil
}

// Workouts lists the user's workout history, newest first.
func (s *Service) Workouts(ctx context.Context, userID string) ([]models.Workout, error) {
	return s.store.WorkoutsByUser(ctx, userID)
}

// AchievementView pairs an unlock record with its display name and the
// full catalog entry, so clients can render locked and unlocked states.
type AchievementView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	BonusXP    int        `json:"bonus_xp"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// Achievements returns the full catalog annotated with the user's unlock
// state, in catalog order.
func (s *Service) Achievements(ctx context.Context, userID string) ([]AchievementView, error) {
	unlocks, err := s.store.AchievementUnlocksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.AchievementUnlock, len(unlocks))
	for _, u := range unlocks {
		byID[u.AchievementID] = u
	}

	views := make([]AchievementView, 0, len(progression.Achievements))
	for _, a := range progression.Achievements {
		v := AchievementView{ID: a.ID, Name: a.Name, BonusXP: a.BonusXP}
		if rec, ok := byID[a.ID]; ok {
			v.Unlocked = true
			ts := rec.UnlockedAt.UTC()
			v.UnlockedAt = &ts
		}
		views = append(views, v)
	}
	return views, nil
}
