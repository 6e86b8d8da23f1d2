package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/progression"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

func TestLogWorkout_FirstWorkout(t *testing.T) {
	now := fixedDate(2024, time.March, 10)
	user := &models.User{ID: "u1", XP: 0, Level: 1}

	var (
		storedWorkout *models.Workout
		gotUpd        *repository.UserUpdate
		unlockIDs     []string
	)
	store := &mockStore{
		UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		AddWorkoutFunc: func(ctx context.Context, w *models.Workout) (*models.Workout, error) {
			storedWorkout = w
			return w, nil
		},
		UpdateUserFunc: func(ctx context.Context, id string, upd repository.UserUpdate) (*models.User, error) {
			gotUpd = &upd
			fresh := *user
			fresh.XP, fresh.Level = *upd.XP, *upd.Level
			fresh.Streak, fresh.TotalWorkouts = *upd.Streak, *upd.TotalWorkouts
			fresh.LastWorkoutDate = upd.LastWorkoutDate
			return &fresh, nil
		},
		AddAchievementUnlockFunc: func(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (*models.AchievementUnlock, error) {
			unlockIDs = append(unlockIDs, achievementID)
			return &models.AchievementUnlock{UserID: userID, AchievementID: achievementID, UnlockedAt: unlockedAt}, nil
		},
		AchievementUnlocksByUserFunc: emptyUnlocks,
	}
	svc := newTestService(store, now)

	res, err := svc.LogWorkout(context.Background(), "u1", WorkoutInput{
		Name: "Morning run", Type: "cardio", Duration: 20, Intensity: "high",
	})
	require.NoError(t, err)

	// 20 minutes at high intensity is 40 XP, plus the 50 XP first-workout bonus.
	require.NotNil(t, storedWorkout)
	assert.Equal(t, 40, storedWorkout.XP)
	assert.Equal(t, "Morning run", storedWorkout.Name)

	require.NotNil(t, gotUpd)
	assert.Equal(t, 90, *gotUpd.XP)
	assert.Equal(t, 1, *gotUpd.Level)
	assert.Equal(t, 1, *gotUpd.Streak)
	assert.Equal(t, 1, *gotUpd.TotalWorkouts)
	require.NotNil(t, gotUpd.LastWorkoutDate)
	wantDate := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, gotUpd.LastWorkoutDate.Equal(wantDate), "last workout date advances to today")

	assert.Equal(t, []string{"first-workout"}, unlockIDs)
	assert.Equal(t, []string{"first-workout"}, res.User.Badges)

	kinds := make([]progression.EventKind, 0, len(res.Events))
	for _, ev := range res.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []progression.EventKind{
		progression.EventXPAwarded,
		progression.EventAchievementUnlocked,
	}, kinds)
}

func TestLogWorkout_Validation(t *testing.T) {
	svc := newTestService(&mockStore{}, time.Now())

	tests := []struct {
		name string
		in   WorkoutInput
	}{
		{"zero duration", WorkoutInput{Name: "w", Type: "cardio", Duration: 0, Intensity: "low"}},
		{"negative duration", WorkoutInput{Name: "w", Type: "cardio", Duration: -5, Intensity: "low"}},
		{"bad intensity", WorkoutInput{Name: "w", Type: "cardio", Duration: 30, Intensity: "extreme"}},
		{"missing name", WorkoutInput{Type: "cardio", Duration: 30, Intensity: "low"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LogWorkout(context.Background(), "u1", tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogWorkout_LevelUpEvent(t *testing.T) {
	now := fixedDate(2024, time.March, 10)
	today := fixedDate(2024, time.March, 10)
	user := &models.User{
		ID: "u1", XP: 95, Level: 1, Streak: 1, TotalWorkouts: 3,
		LastWorkoutDate: &today,
	}
	store := &mockStore{
		UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
		AchievementUnlocksByUserFunc: func(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
			// first-workout is already unlocked, so it must not re-announce.
			return []models.AchievementUnlock{
				{UserID: userID, AchievementID: "first-workout"},
			}, nil
		},
		AddWorkoutFunc: func(ctx context.Context, w *models.Workout) (*models.Workout, error) {
			return w, nil
		},
		UpdateUserFunc: func(ctx context.Context, id string, upd repository.UserUpdate) (*models.User, error) {
			fresh := *user
			fresh.XP, fresh.Level = *upd.XP, *upd.Level
			return &fresh, nil
		},
	}
	svc := newTestService(store, now)

	res, err := svc.LogWorkout(context.Background(), "u1", WorkoutInput{
		Name: "Stretch", Type: "mobility", Duration: 10, Intensity: "low",
	})
	require.NoError(t, err)

	assert.Equal(t, 105, res.User.XP)
	assert.Equal(t, 2, res.User.Level)
	require.Len(t, res.Events, 2)
	assert.Equal(t, progression.EventXPAwarded, res.Events[0].Kind)
	assert.Equal(t, progression.EventLevelUp, res.Events[1].Kind)
	assert.Equal(t, 2, res.Events[1].Level)
}

func TestAchievements_CatalogAnnotation(t *testing.T) {
	unlockedAt := fixedDate(2024, time.March, 1)
	store := &mockStore{
		AchievementUnlocksByUserFunc: func(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
			return []models.AchievementUnlock{
				{UserID: "u1", AchievementID: "first-workout", UnlockedAt: unlockedAt},
			}, nil
		},
	}
	svc := newTestService(store, time.Now())

	views, err := svc.Achievements(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, len(progression.Achievements))

	assert.Equal(t, "first-workout", views[0].ID)
	assert.Equal(t, "First Steps", views[0].Name)
	assert.True(t, views[0].Unlocked)
	require.NotNil(t, views[0].UnlockedAt)
	assert.True(t, views[0].UnlockedAt.Equal(unlockedAt))

	for _, v := range views[1:] {
		assert.False(t, v.Unlocked, "achievement %s should be locked", v.ID)
		assert.Nil(t, v.UnlockedAt)
	}
}
