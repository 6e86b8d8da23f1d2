package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kmalkov/fitness-leveling/internal/models"
)

// SQLiteStore implements Store against an embedded SQLite database. It is
// the client-local fallback backend; uniqueness is enforced by explicit
// unique indexes instead of server-side constraints.
type SQLiteStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore with the given database
// connection. db must be opened with the modernc.org/sqlite driver.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

// CreateUser inserts a new user row, mapping unique index violations to
// the matching typed error.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, name, xp, level, streak,
			last_workout_date, total_workouts, age, height, weight, fitness_goal, bio,
			profile_visibility, settings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Name, u.XP, u.Level, u.Streak,
		u.LastWorkoutDate, u.TotalWorkouts, u.Profile.Age, u.Profile.Height,
		u.Profile.Weight, u.Profile.FitnessGoal, u.Profile.Bio,
		string(u.Visibility), settings, u.CreatedAt)
	if err != nil {
		switch {
		case isSQLiteUnique(err, "users.username"):
			return nil, ErrDuplicateUsername
		case isSQLiteUnique(err, "users.email"):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// UserByID fetches a user by identifier.
func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UserByUsername fetches a user by login name.
func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// UserByEmail fetches a user by email address.
func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UpdateUser applies the non-nil fields of upd to the user row and returns
// the fresh record. SQLite has no UPDATE ... RETURNING on older builds, so
// the update and the re-read are separate statements.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.PasswordHash != nil {
		add("password_hash", upd.PasswordHash)
	}
	if upd.XP != nil {
		add("xp", *upd.XP)
	}
	if upd.Level != nil {
		add("level", *upd.Level)
	}
	if upd.Streak != nil {
		add("streak", *upd.Streak)
	}
	if upd.LastWorkoutDate != nil {
		add("last_workout_date", *upd.LastWorkoutDate)
	}
	if upd.TotalWorkouts != nil {
		add("total_workouts", *upd.TotalWorkouts)
	}
	if upd.Profile != nil {
		add("age", upd.Profile.Age)
		add("height", upd.Profile.Height)
		add("weight", upd.Profile.Weight)
		add("fitness_goal", upd.Profile.FitnessGoal)
		add("bio", upd.Profile.Bio)
	}
	if upd.Visibility != nil {
		add("profile_visibility", string(*upd.Visibility))
	}
	if upd.Settings != nil {
		settings, err := json.Marshal(upd.Settings)
		if err != nil {
			return nil, fmt.Errorf("marshal settings: %w", err)
		}
		add("settings", settings)
	}

	if len(set) > 0 {
		args = append(args, id)
		res, err := s.DB.ExecContext(ctx,
			`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("UpdateUser: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.UserByID(ctx, id)
}

// UsersRankedByXP lists up to limit user summaries ordered by descending XP.
func (s *SQLiteStore) UsersRankedByXP(ctx context.Context, limit int) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM users ORDER BY xp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("UsersRankedByXP: %w", err)
	}
	return scanSummaries(rows)
}

// SearchUsersByUsername lists summaries whose username contains the query.
// SQLite's LIKE is case-insensitive for ASCII, matching the Postgres ILIKE
// behavior closely enough for username search.
func (s *SQLiteStore) SearchUsersByUsername(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM users WHERE username LIKE '%' || ? || '%'
		ORDER BY username LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("SearchUsersByUsername: %w", err)
	}
	return scanSummaries(rows)
}

// AddWorkout inserts a new workout row.
func (s *SQLiteStore) AddWorkout(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO workouts (id, user_id, name, type, duration, intensity, xp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.UserID, w.Name, w.Type, w.Duration, string(w.Intensity), w.XP, w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("AddWorkout: %w", err)
	}
	return w, nil
}

// WorkoutsByUser lists the user's workouts, newest first.
func (s *SQLiteStore) WorkoutsByUser(ctx context.Context, userID string) ([]models.Workout, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, name, type, duration, intensity, xp, created_at
		FROM workouts WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("WorkoutsByUser: %w", err)
	}
	defer rows.Close()

	var workouts []models.Workout
	for rows.Next() {
		var w models.Workout
		var intensity string
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Type, &w.Duration, &intensity, &w.XP, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		w.Intensity = models.Intensity(intensity)
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// AddAchievementUnlock records an unlock with insert-or-ignore semantics.
func (s *SQLiteStore) AddAchievementUnlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (*models.AchievementUnlock, error) {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO achievements (user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID, unlockedAt)
	if err != nil {
		return nil, fmt.Errorf("AddAchievementUnlock: %w", err)
	}

	unlock := &models.AchievementUnlock{}
	err = s.DB.QueryRowContext(ctx, `
		SELECT user_id, achievement_id, unlocked_at FROM achievements
		WHERE user_id = ? AND achievement_id = ?
	`, userID, achievementID).Scan(&unlock.UserID, &unlock.AchievementID, &unlock.UnlockedAt)
	if err != nil {
		return nil, fmt.Errorf("AddAchievementUnlock: %w", err)
	}
	unlock.UnlockedAt = unlock.UnlockedAt.UTC()
	return unlock, nil
}

// AchievementUnlocksByUser lists the user's unlocks in unlock order.
func (s *SQLiteStore) AchievementUnlocksByUser(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT user_id, achievement_id, unlocked_at FROM achievements
		WHERE user_id = ? ORDER BY unlocked_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("AchievementUnlocksByUser: %w", err)
	}
	defer rows.Close()

	var unlocks []models.AchievementUnlock
	for rows.Next() {
		var u models.AchievementUnlock
		if err := rows.Scan(&u.UserID, &u.AchievementID, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		u.UnlockedAt = u.UnlockedAt.UTC()
		unlocks = append(unlocks, u)
	}
	return unlocks, rows.Err()
}

// CreateFriendRequest stores a pending request after checking both
// directions for an existing relationship.
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, userID, friendID string) error {
	if _, err := s.FriendshipBetween(ctx, userID, friendID); err == nil {
		return ErrDuplicateFriendship
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO friendships (user_id, friend_id, status, created_at)
		VALUES (?, ?, 'pending', ?)
	`, userID, friendID, time.Now().UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateFriendship
		}
		return fmt.Errorf("CreateFriendRequest: %w", err)
	}
	return nil
}

// AcceptFriendRequest flips the pending request to accepted.
func (s *SQLiteStore) AcceptFriendRequest(ctx context.Context, requesterID, recipientID string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE friendships SET status = 'accepted'
		WHERE user_id = ? AND friend_id = ? AND status = 'pending'
	`, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("AcceptFriendRequest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFriendship removes the relationship between the two users in
// whichever direction it was stored.
func (s *SQLiteStore) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM friendships
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
	`, userID, friendID, friendID, userID)
	if err != nil {
		return fmt.Errorf("DeleteFriendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FriendshipBetween returns the relationship between the two users in
// either direction.
func (s *SQLiteStore) FriendshipBetween(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	f := &models.Friendship{}
	var status string
	err := s.DB.QueryRowContext(ctx, `
		SELECT user_id, friend_id, status, created_at FROM friendships
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
	`, userID, friendID, friendID, userID).Scan(&f.UserID, &f.FriendID, &status, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("FriendshipBetween: %w", err)
	}
	f.Status = models.FriendshipStatus(status)
	return f, nil
}

// FriendsOf lists summaries of the user's accepted friends.
func (s *SQLiteStore) FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.name, u.xp, u.level, u.streak, u.total_workouts
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = ? OR f.friend_id = ?) AND f.status = 'accepted'
	`, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("FriendsOf: %w", err)
	}
	return scanSummaries(rows)
}

// PendingRequestsFor lists summaries of users with an unanswered request
// to the recipient.
func (s *SQLiteStore) PendingRequestsFor(ctx context.Context, recipientID string) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.name, u.xp, u.level, u.streak, u.total_workouts
		FROM friendships f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = ? AND f.status = 'pending'
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("PendingRequestsFor: %w", err)
	}
	return scanSummaries(rows)
}

// isSQLiteUnique reports whether err is a unique constraint violation on
// the named index target ("table.column").
func isSQLiteUnique(err error, target string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), target)
}
