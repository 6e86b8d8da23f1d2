package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/repository"
)

// errDB stands in for an infrastructure failure from the store.
var errDB = errors.New("connection refused")

func targetUser(visibility models.Visibility, settings models.Settings) *models.User {
	return &models.User{
		ID: "target", Username: "bob", Name: "Bob", Email: "bob@example.com",
		XP: 450, Level: 3, Streak: 5, TotalWorkouts: 12,
		Visibility: visibility,
		Settings:   settings,
	}
}

// targetUnlocks backs the badge list of targetUser.
func targetUnlocks(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	return []models.AchievementUnlock{
		{UserID: userID, AchievementID: "first-workout"},
		{UserID: userID, AchievementID: "workouts-10"},
	}, nil
}

func TestGetProfile_OwnerSeesEverything(t *testing.T) {
	settings := models.DefaultSettings()
	settings.ShowEmailPublic = false
	settings.ShowStatsPublic = false
	store := &mockStore{
		UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return targetUser(models.VisibilityPrivate, settings), nil
		},
		AchievementUnlocksByUserFunc: targetUnlocks,
	}
	svc := newTestService(store, time.Now())

	view, err := svc.GetProfile(context.Background(), "target", "target")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", view.Email)
	assert.Equal(t, 450, view.XP)
	assert.Equal(t, []string{"first-workout", "workouts-10"}, view.Badges)
	assert.False(t, view.StatsHidden)
}

func TestGetProfile_PrivateBlocksOthers(t *testing.T) {
	store := &mockStore{
		UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return targetUser(models.VisibilityPrivate, models.DefaultSettings()), nil
		},
	}
	svc := newTestService(store, time.Now())

	_, err := svc.GetProfile(context.Background(), "viewer", "target")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetProfile_FriendsOnly(t *testing.T) {
	tests := []struct {
		name       string
		friendship *models.Friendship
		fErr       error
		wantErr    error
	}{
		{
			name:       "accepted friend allowed",
			friendship: &models.Friendship{UserID: "viewer", FriendID: "target", Status: models.FriendshipAccepted},
		},
		{
			name:       "pending request not enough",
			friendship: &models.Friendship{UserID: "viewer", FriendID: "target", Status: models.FriendshipPending},
			wantErr:    ErrForbidden,
		},
		{
			name:    "no relationship",
			fErr:    repository.ErrNotFound,
			wantErr: ErrForbidden,
		},
		{
			name:    "store failure surfaces",
			fErr:    errDB,
			wantErr: errDB,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{
				UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
					return targetUser(models.VisibilityFriends, models.DefaultSettings()), nil
				},
				FriendshipBetweenFunc: func(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
					return tt.friendship, tt.fErr
				},
				AchievementUnlocksByUserFunc: targetUnlocks,
			}
			svc := newTestService(store, time.Now())

			_, err := svc.GetProfile(context.Background(), "viewer", "target")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetProfile_SettingsStripFields(t *testing.T) {
	settings := models.DefaultSettings()
	settings.ShowEmailPublic = false
	settings.ShowStatsPublic = false
	store := &mockStore{
		UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return targetUser(models.VisibilityPublic, settings), nil
		},
		AchievementUnlocksByUserFunc: targetUnlocks,
	}
	svc := newTestService(store, time.Now())

	view, err := svc.GetProfile(context.Background(), "viewer", "target")
	require.NoError(t, err)
	assert.Empty(t, view.Email, "email hidden unless shared")
	assert.Zero(t, view.XP)
	assert.Zero(t, view.Level)
	assert.Nil(t, view.Badges)
	assert.True(t, view.StatsHidden)
	assert.Equal(t, "bob", view.Username, "identity fields always visible on an admitted view")
}

func TestGetProfile_SharedEmail(t *testing.T) {
	settings := models.DefaultSettings()
	settings.ShowEmailPublic = true
	store := &mockStore{
		UserByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return targetUser(models.VisibilityPublic, settings), nil
		},
		AchievementUnlocksByUserFunc: targetUnlocks,
	}
	svc := newTestService(store, time.Now())

	view, err := svc.GetProfile(context.Background(), "viewer", "target")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", view.Email)
	assert.Equal(t, 450, view.XP)
}

func TestUpdateProfile(t *testing.T) {
	var gotUpd *repository.UserUpdate
	store := &mockStore{
		UpdateUserFunc: func(ctx context.Context, id string, upd repository.UserUpdate) (*models.User, error) {
			gotUpd = &upd
			return &models.User{ID: id}, nil
		},
	}
	svc := newTestService(store, time.Now())

	t.Run("invalid visibility", func(t *testing.T) {
		bad := models.Visibility("everyone")
		_, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdateInput{Visibility: &bad})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty name", func(t *testing.T) {
		empty := ""
		_, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdateInput{Name: &empty})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("partial update", func(t *testing.T) {
		age := 30
		vis := models.VisibilityFriends
		_, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdateInput{
			Profile:    &models.Profile{Age: &age},
			Visibility: &vis,
		})
		require.NoError(t, err)
		require.NotNil(t, gotUpd)
		assert.Nil(t, gotUpd.Name)
		require.NotNil(t, gotUpd.Profile)
		assert.Equal(t, 30, *gotUpd.Profile.Age)
		assert.Equal(t, models.VisibilityFriends, *gotUpd.Visibility)
	})
}

func TestUpdateSettings_NormalizesEnums(t *testing.T) {
	var gotUpd *repository.UserUpdate
	store := &mockStore{
		UpdateUserFunc: func(ctx context.Context, id string, upd repository.UserUpdate) (*models.User, error) {
			gotUpd = &upd
			return &models.User{ID: id, Settings: *upd.Settings}, nil
		},
	}
	svc := newTestService(store, time.Now())

	_, err := svc.UpdateSettings(context.Background(), "u1", models.Settings{
		ShowStatsPublic: true,
		UnitsSystem:     "imperial",
	})
	require.NoError(t, err)
	require.NotNil(t, gotUpd)
	assert.Equal(t, "imperial", gotUpd.Settings.UnitsSystem)
	assert.Equal(t, "MM/DD/YYYY", gotUpd.Settings.DateFormat, "empty enum falls back to default")
	assert.Equal(t, "cardio", gotUpd.Settings.DefaultWorkoutType)
}
