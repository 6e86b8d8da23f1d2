// Package models defines the core data structures for users, workouts,
// achievement unlocks, and friendships.
package models

import "time"

// Visibility controls who may view a user's profile.
type Visibility string

const (
	// VisibilityPublic makes the profile visible to everyone.
	VisibilityPublic Visibility = "public"
	// VisibilityFriends restricts the profile to accepted friends.
	VisibilityFriends Visibility = "friends"
	// VisibilityPrivate restricts the profile to its owner.
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the recognized visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

// Profile holds the optional descriptive attributes of a user.
// All fields may be absent; nil means "not set".
type Profile struct {
	// Age in years.
	Age *int `json:"age"`
	// Height in centimeters.
	Height *float64 `json:"height"`
	// Weight in kilograms.
	Weight *float64 `json:"weight"`
	// FitnessGoal is one of the goal tags ("weight-loss", "muscle-gain", ...).
	FitnessGoal *string `json:"fitness_goal"`
	// Bio is free-form text about the user.
	Bio *string `json:"bio"`
}

// Settings holds per-user preferences. DefaultSettings supplies the
// canonical defaults and Normalize applies them once at load time, so the
// rest of the code never deals with missing values.
type Settings struct {
	ShowEmailPublic     bool   `json:"show_email_public"`
	ShowStatsPublic     bool   `json:"show_stats_public"`
	EmailNotifications  bool   `json:"email_notifications"`
	WorkoutReminders    bool   `json:"workout_reminders"`
	FriendRequestAlerts bool   `json:"friend_request_alerts"`
	AchievementAlerts   bool   `json:"achievement_alerts"`
	UnitsSystem         string `json:"units_system"`
	DateFormat          string `json:"date_format"`
	CompactView         bool   `json:"compact_view"`
	DefaultWorkoutType  string `json:"default_workout_type"`
	StreakReminderTime  string `json:"streak_reminder_time"`
}

// DefaultSettings returns the settings applied to accounts that have never
// saved preferences.
func DefaultSettings() Settings {
	return Settings{
		ShowEmailPublic:     false,
		ShowStatsPublic:     true,
		EmailNotifications:  true,
		WorkoutReminders:    true,
		FriendRequestAlerts: true,
		AchievementAlerts:   true,
		UnitsSystem:         "metric",
		DateFormat:          "MM/DD/YYYY",
		CompactView:         false,
		DefaultWorkoutType:  "cardio",
		StreakReminderTime:  "never",
	}
}

// Normalize fills enumerated fields that are empty with their defaults.
// Boolean preferences keep whatever was stored.
func (s *Settings) Normalize() {
	def := DefaultSettings()
	if s.UnitsSystem == "" {
		s.UnitsSystem = def.UnitsSystem
	}
	if s.DateFormat == "" {
		s.DateFormat = def.DateFormat
	}
	if s.DefaultWorkoutType == "" {
		s.DefaultWorkoutType = def.DefaultWorkoutType
	}
	if s.StreakReminderTime == "" {
		s.StreakReminderTime = def.StreakReminderTime
	}
}

// User represents an application user together with their progression state.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the unique login name chosen by the user.
	Username string `json:"username"`
	// Email is the unique address used by the identity layer.
	Email string `json:"email"`
	// Name is the display name shown to other users.
	Name string `json:"name"`
	// PasswordHash is the bcrypt hash of the user's password.
	// It is never serialized.
	PasswordHash []byte `json:"-"`
	// XP is the accumulated experience. Non-negative, never decreases.
	XP int `json:"xp"`
	// Level is derived from XP; it is stored alongside XP but always
	// recomputed by the progression engine before persisting.
	Level int `json:"level"`
	// Streak is the consecutive-day workout count.
	Streak int `json:"streak"`
	// LastWorkoutDate is the calendar date of the most recent workout,
	// or nil if the user has never logged one.
	LastWorkoutDate *time.Time `json:"last_workout_date"`
	// TotalWorkouts counts every logged workout. Never decreases.
	TotalWorkouts int `json:"total_workouts"`
	// Badges lists unlocked achievement identifiers in unlock order.
	// Loaded from the achievement unlock records, never stored twice.
	Badges []string `json:"badges"`
	// Profile holds the optional descriptive attributes.
	Profile Profile `json:"profile"`
	// Visibility controls who may view the profile.
	Visibility Visibility `json:"profile_visibility"`
	// Settings holds per-user preferences with defaults applied at load.
	Settings Settings `json:"settings"`
	// CreatedAt is the account creation time in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// Intensity classifies workout effort and drives the XP multiplier.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Workout is a single logged training session. Workouts are created once
// and never mutated or deleted.
type Workout struct {
	// ID is the unique identifier for the workout.
	ID string `json:"id"`
	// UserID identifies the owning user.
	UserID string `json:"user_id"`
	// Name is the user-supplied title of the session.
	Name string `json:"name"`
	// Type is a free-form category tag ("cardio", "strength", ...).
	Type string `json:"type"`
	// Duration is the session length in minutes. Always positive.
	Duration int `json:"duration"`
	// Intensity is the declared effort level.
	Intensity Intensity `json:"intensity"`
	// XP is the experience awarded at creation time. Immutable.
	XP int `json:"xp"`
	// CreatedAt is the logging timestamp in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// AchievementUnlock records that a user earned an achievement.
// At most one record exists per (user, achievement) pair.
type AchievementUnlock struct {
	// UserID identifies the owning user.
	UserID string `json:"user_id"`
	// AchievementID is the identifier from the achievement table.
	AchievementID string `json:"achievement_id"`
	// UnlockedAt is the unlock timestamp in UTC.
	UnlockedAt time.Time `json:"unlocked_at"`
}

// FriendshipStatus tracks the friend-request state machine.
type FriendshipStatus string

const (
	// FriendshipPending means the request awaits the recipient's answer.
	FriendshipPending FriendshipStatus = "pending"
	// FriendshipAccepted means both users are friends.
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed relationship from the requesting user to the
// recipient. Rejection or removal deletes the row.
type Friendship struct {
	// UserID is the user who sent the request.
	UserID string `json:"user_id"`
	// FriendID is the user who received it.
	FriendID string `json:"friend_id"`
	// Status is pending until the recipient accepts.
	Status FriendshipStatus `json:"status"`
	// CreatedAt is the request time in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the reduced user representation used by the leaderboard,
// user search, and friend lists.
type UserSummary struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	Streak        int    `json:"streak"`
	TotalWorkouts int    `json:"total_workouts"`
}

// ExportUser is the profile subset included in an export snapshot.
type ExportUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	XP       int     `json:"xp"`
	Level    int     `json:"level"`
	Streak   int     `json:"streak"`
	Profile  Profile `json:"profile"`
}

// ExportSnapshot is the document produced by the data-export operation.
// It is assembled on demand and never persisted.
type ExportSnapshot struct {
	User         ExportUser          `json:"user"`
	Workouts     []Workout           `json:"workouts"`
	Achievements []AchievementUnlock `json:"achievements"`
	Friends      []UserSummary       `json:"friends"`
	ExportedAt   time.Time           `json:"exported_at"`
}
