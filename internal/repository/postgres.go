package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/kmalkov/fitness-leveling/internal/models"
)

// userColumns is the column list shared by every user query so that
// scanUser stays in sync with a single definition.
const userColumns = `id, username, email, password_hash, name, xp, level, streak,
	last_workout_date, total_workouts, age, height, weight, fitness_goal, bio,
	profile_visibility, settings, created_at`

// summaryColumns is the reduced column list for leaderboard and friend rows.
const summaryColumns = `id, username, name, xp, level, streak, total_workouts`

// PostgresStore implements Store against a PostgreSQL database.
type PostgresStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresStore creates a new PostgresStore with the given database
// connection. db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// CreateUser inserts a new user row. Unique violations on the username or
// email index are mapped to the corresponding typed error.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, name, xp, level, streak,
			last_workout_date, total_workouts, age, height, weight, fitness_goal, bio,
			profile_visibility, settings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Name, u.XP, u.Level, u.Streak,
		u.LastWorkoutDate, u.TotalWorkouts, u.Profile.Age, u.Profile.Height,
		u.Profile.Weight, u.Profile.FitnessGoal, u.Profile.Bio,
		string(u.Visibility), settings, u.CreatedAt)
	if err != nil {
		return nil, mapUserConstraint(err)
	}
	return u, nil
}

// UserByID fetches a user by identifier.
func (s *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UserByUsername fetches a user by login name.
func (s *PostgresStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// UserByEmail fetches a user by email address.
func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateUser applies the non-nil fields of upd to the user row and returns
// the fresh record.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
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

	if len(set) == 0 {
		return s.UserByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(set, ", "), len(args))

	return scanUser(s.DB.QueryRowContext(ctx, query, args...))
}

// UsersRankedByXP lists up to limit user summaries ordered by descending XP.
func (s *PostgresStore) UsersRankedByXP(ctx context.Context, limit int) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM users ORDER BY xp DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("UsersRankedByXP: %w", err)
	}
	return scanSummaries(rows)
}

// SearchUsersByUsername lists summaries whose username contains the query,
// case-insensitively, ordered by username.
func (s *PostgresStore) SearchUsersByUsername(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM users WHERE username ILIKE '%' || $1 || '%'
		ORDER BY username LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("SearchUsersByUsername: %w", err)
	}
	return scanSummaries(rows)
}

// AddWorkout inserts a new workout row.
func (s *PostgresStore) AddWorkout(ctx context.Context, w *models.Workout) (*models.Workout, error) {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO workouts (id, user_id, name, type, duration, intensity, xp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, w.ID, w.UserID, w.Name, w.Type, w.Duration, string(w.Intensity), w.XP, w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("AddWorkout: %w", err)
	}
	return w, nil
}

// WorkoutsByUser lists the user's workouts, newest first.
func (s *PostgresStore) WorkoutsByUser(ctx context.Context, userID string) ([]models.Workout, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, name, type, duration, intensity, xp, created_at
		FROM workouts WHERE user_id = $1 ORDER BY created_at DESC
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

// AddAchievementUnlock records an unlock with insert-or-ignore semantics:
// the stored record is returned whether or not this call created it.
func (s *PostgresStore) AddAchievementUnlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (*models.AchievementUnlock, error) {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO achievements (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID, unlockedAt)
	if err != nil {
		return nil, fmt.Errorf("AddAchievementUnlock: %w", err)
	}

	unlock := &models.AchievementUnlock{}
	err = s.DB.QueryRowContext(ctx, `
		SELECT user_id, achievement_id, unlocked_at FROM achievements
		WHERE user_id = $1 AND achievement_id = $2
	`, userID, achievementID).Scan(&unlock.UserID, &unlock.AchievementID, &unlock.UnlockedAt)
	if err != nil {
		return nil, fmt.Errorf("AddAchievementUnlock: %w", err)
	}
	return unlock, nil
}

// AchievementUnlocksByUser lists the user's unlocks in unlock order.
func (s *PostgresStore) AchievementUnlocksByUser(ctx context.Context, userID string) ([]models.AchievementUnlock, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT user_id, achievement_id, unlocked_at FROM achievements
		WHERE user_id = $1 ORDER BY unlocked_at
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
		unlocks = append(unlocks, u)
	}
	return unlocks, rows.Err()
}

// CreateFriendRequest stores a pending request after checking that no
// relationship exists in either direction. The check-then-insert is safe
// under the single-session assumption; the primary key still guards the
// same-direction duplicate.
func (s *PostgresStore) CreateFriendRequest(ctx context.Context, userID, friendID string) error {
	if _, err := s.FriendshipBetween(ctx, userID, friendID); err == nil {
		return ErrDuplicateFriendship
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO friendships (user_id, friend_id, status, created_at)
		VALUES ($1, $2, 'pending', $3)
	`, userID, friendID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFriendship
		}
		return fmt.Errorf("CreateFriendRequest: %w", err)
	}
	return nil
}

// AcceptFriendRequest flips the pending request to accepted.
func (s *PostgresStore) AcceptFriendRequest(ctx context.Context, requesterID, recipientID string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE friendships SET status = 'accepted'
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
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
func (s *PostgresStore) DeleteFriendship(ctx context.Context, userID, friendID string) error {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
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
func (s *PostgresStore) FriendshipBetween(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	f := &models.Friendship{}
	var status string
	err := s.DB.QueryRowContext(ctx, `
		SELECT user_id, friend_id, status, created_at FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID).Scan(&f.UserID, &f.FriendID, &status, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("FriendshipBetween: %w", err)
	}
	f.Status = models.FriendshipStatus(status)
	return f, nil
}

// FriendsOf lists summaries of the user's accepted friends, regardless of
// who sent the original request.
func (s *PostgresStore) FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.name, u.xp, u.level, u.streak, u.total_workouts
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = 'accepted'
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("FriendsOf: %w", err)
	}
	return scanSummaries(rows)
}

// PendingRequestsFor lists summaries of users with an unanswered request
// to the recipient.
func (s *PostgresStore) PendingRequestsFor(ctx context.Context, recipientID string) ([]models.UserSummary, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.name, u.xp, u.level, u.streak, u.total_workouts
		FROM friendships f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = 'pending'
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("PendingRequestsFor: %w", err)
	}
	return scanSummaries(rows)
}

// scanUser reads a full user row from either a *sql.Row or *sql.Rows.
func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u           models.User
		lastWorkout sql.NullTime
		age         sql.NullInt64
		height      sql.NullFloat64
		weight      sql.NullFloat64
		goal        sql.NullString
		bio         sql.NullString
		visibility  string
		settings    []byte
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Name,
		&u.XP, &u.Level, &u.Streak, &lastWorkout, &u.TotalWorkouts,
		&age, &height, &weight, &goal, &bio, &visibility, &settings, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if lastWorkout.Valid {
		t := lastWorkout.Time.UTC()
		u.LastWorkoutDate = &t
	}
	if age.Valid {
		v := int(age.Int64)
		u.Profile.Age = &v
	}
	if height.Valid {
		u.Profile.Height = &height.Float64
	}
	if weight.Valid {
		u.Profile.Weight = &weight.Float64
	}
	if goal.Valid {
		u.Profile.FitnessGoal = &goal.String
	}
	if bio.Valid {
		u.Profile.Bio = &bio.String
	}
	u.Visibility = models.Visibility(visibility)

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &u.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	} else {
		u.Settings = models.DefaultSettings()
	}
	u.Settings.Normalize()

	return &u, nil
}

// scanSummaries drains rows of summaryColumns shape.
func scanSummaries(rows *sql.Rows) ([]models.UserSummary, error) {
	defer rows.Close()

	var sums []models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.Name, &s.XP, &s.Level, &s.Streak, &s.TotalWorkouts); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// mapUserConstraint converts a unique-violation error on the users table
// into the matching typed error.
func mapUserConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pqErr.Constraint, "username"):
			return ErrDuplicateUsername
		case strings.Contains(pqErr.Constraint, "email"):
			return ErrDuplicateEmail
		}
	}
	return fmt.Errorf("CreateUser: %w", err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}
