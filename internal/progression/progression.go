// Package progression implements the rules that turn logged workouts into
// experience points, levels, streaks, and achievement unlocks. Everything in
// this package is pure computation: no I/O, deterministic given the current
// snapshot and the submission time.
package progression

import (
	"fmt"
	"math"
	"time"

	"github.com/kmalkov/fitness-leveling/internal/models"
)

// intensityMultipliers maps workout intensity to its XP multiplier.
var intensityMultipliers = map[models.Intensity]float64{
	models.IntensityLow:    1.0,
	models.IntensityMedium: 1.5,
	models.IntensityHigh:   2.0,
}

// WorkoutXP computes the experience awarded for a workout:
// floor(duration * multiplier), where the multiplier is 1.0 for low,
// 1.5 for medium, and 2.0 for high intensity.
// It fails only on structurally invalid input: a non-positive duration
// or an unrecognized intensity.
func WorkoutXP(duration int, intensity models.Intensity) (int, error) {
	if duration <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %d", duration)
	}
	mult, ok := intensityMultipliers[intensity]
	if !ok {
		return 0, fmt.Errorf("unknown intensity %q", intensity)
	}
	return int(math.Floor(float64(duration) * mult)), nil
}

// Level derives the level for the given XP: floor(sqrt(xp/100)) + 1.
// Monotonic non-decreasing in xp; Level(0) == 1.
func Level(xp int) int {
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// LevelFloor returns the lowest XP that still maps to the given level.
func LevelFloor(level int) int {
	return 100 * (level - 1) * (level - 1)
}

// LevelCeil returns the XP at which the next level begins.
func LevelCeil(level int) int {
	return 100 * level * level
}

// Progress returns the normalized progress toward the next level for the
// given XP, clamped to [0, 1].
func Progress(xp int) float64 {
	level := Level(xp)
	floor, ceil := LevelFloor(level), LevelCeil(level)
	p := float64(xp-floor) / float64(ceil-floor)
	return math.Min(math.Max(p, 0), 1)
}

// Snapshot is the slice of user state the engine reads and rewrites.
type Snapshot struct {
	// XP is the accumulated experience.
	XP int
	// Level is the derived tier; kept consistent with XP by the engine.
	Level int
	// Streak is the consecutive-day workout count.
	Streak int
	// TotalWorkouts counts every logged workout.
	TotalWorkouts int
	// LastWorkoutDate is the calendar date of the most recent workout,
	// nil if none was ever logged.
	LastWorkoutDate *time.Time
	// Unlocked lists achievement ids in unlock order.
	Unlocked []string
}

// EventKind discriminates the events emitted while applying a workout.
type EventKind string

const (
	// EventXPAwarded reports experience gained from the workout itself.
	EventXPAwarded EventKind = "xp_awarded"
	// EventLevelUp reports that the user reached a new level.
	EventLevelUp EventKind = "level_up"
	// EventAchievementUnlocked reports a newly earned achievement.
	EventAchievementUnlocked EventKind = "achievement_unlocked"
)

// Event is a single announcement produced by ApplyWorkout. Level-up and
// achievement-unlock events interleave in the order they occur, because a
// bonus award may itself push the user over a level threshold.
type Event struct {
	Kind EventKind
	// XP is the amount awarded (EventXPAwarded and EventAchievementUnlocked).
	XP int
	// Level is the level reached (EventLevelUp only).
	Level int
	// AchievementID identifies the unlock (EventAchievementUnlocked only).
	AchievementID string
}

// Achievement pairs an identifier with its unlock predicate and bonus XP.
// All predicates are monotonic: once true for a user they stay true as far
// as unlocking is concerned, since unlocks are never revoked.
type Achievement struct {
	ID      string
	Name    string
	BonusXP int
	// Earned reports whether the snapshot satisfies the predicate.
	Earned func(Snapshot) bool
}

// Achievements is the fixed table evaluated after every accepted workout.
// Declaration order determines announcement order only; final state does
// not depend on it.
var Achievements = []Achievement{
	{ID: "first-workout", Name: "First Steps", BonusXP: 50,
		Earned: func(s Snapshot) bool { return s.TotalWorkouts >= 1 }},
	{ID: "streak-3", Name: "On Fire", BonusXP: 100,
		Earned: func(s Snapshot) bool { return s.Streak >= 3 }},
	{ID: "streak-7", Name: "Week Warrior", BonusXP: 250,
		Earned: func(s Snapshot) bool { return s.Streak >= 7 }},
	{ID: "streak-30", Name: "Month Master", BonusXP: 1000,
		Earned: func(s Snapshot) bool { return s.Streak >= 30 }},
	{ID: "workouts-10", Name: "Dedicated", BonusXP: 200,
		Earned: func(s Snapshot) bool { return s.TotalWorkouts >= 10 }},
	{ID: "workouts-50", Name: "Fitness Fanatic", BonusXP: 500,
		Earned: func(s Snapshot) bool { return s.TotalWorkouts >= 50 }},
	{ID: "workouts-100", Name: "Century Club", BonusXP: 1500,
		Earned: func(s Snapshot) bool { return s.TotalWorkouts >= 100 }},
	{ID: "level-5", Name: "Rising Star", BonusXP: 300,
		Earned: func(s Snapshot) bool { return s.Level >= 5 }},
	{ID: "level-10", Name: "Elite Athlete", BonusXP: 750,
		Earned: func(s Snapshot) bool { return s.Level >= 10 }},
}

// AchievementName returns the display name for an achievement id,
// falling back to the id itself when unknown.
func AchievementName(id string) string {
	for _, a := range Achievements {
		if a.ID == id {
			return a.Name
		}
	}
	return id
}

// ApplyWorkout applies one accepted workout submission to the snapshot and
// returns the new state together with the events to announce. The order of
// operations mirrors the submission flow: workout count, streak, workout XP,
// then achievement evaluation with immediate bonus awards.
func ApplyWorkout(s Snapshot, duration int, intensity models.Intensity, now time.Time) (Snapshot, []Event, error) {
	xp, err := WorkoutXP(duration, intensity)
	if err != nil {
		return s, nil, err
	}

	var events []Event

	s.TotalWorkouts++
	s = updateStreak(s, now)

	events = append(events, Event{Kind: EventXPAwarded, XP: xp})
	s, events = addXP(s, xp, events)

	// Achievement evaluation runs after streak and XP updates. Bonus XP is
	// applied immediately, so an unlock can trigger a level-up of its own.
	for _, a := range Achievements {
		if !a.Earned(s) || unlocked(s, a.ID) {
			continue
		}
		s.Unlocked = append(s.Unlocked, a.ID)
		events = append(events, Event{Kind: EventAchievementUnlocked, AchievementID: a.ID, XP: a.BonusXP})
		s, events = addXP(s, a.BonusXP, events)
	}

	return s, events, nil
}

// DecayStreak implements the session-load check: if the last recorded
// workout happened before yesterday, the streak silently resets to zero.
// It reports whether the snapshot changed.
func DecayStreak(s Snapshot, now time.Time) (Snapshot, bool) {
	if s.LastWorkoutDate == nil {
		return s, false
	}
	last := *s.LastWorkoutDate
	if sameDay(last, now) || sameDay(last, now.AddDate(0, 0, -1)) {
		return s, false
	}
	if s.Streak == 0 {
		return s, false
	}
	s.Streak = 0
	return s, true
}

// updateStreak applies the streak transition table for one submission:
// no prior workout -> 1; yesterday -> +1; today -> unchanged; older -> 1.
// The last workout date always advances to today's calendar date.
func updateStreak(s Snapshot, now time.Time) Snapshot {
	switch {
	case s.LastWorkoutDate == nil:
		s.Streak = 1
	case sameDay(*s.LastWorkoutDate, now.AddDate(0, 0, -1)):
		s.Streak++
	case sameDay(*s.LastWorkoutDate, now):
		// Second workout the same day: streak stays as is.
	default:
		s.Streak = 1
	}
	today := truncateToDay(now)
	s.LastWorkoutDate = &today
	return s
}

// addXP adds the amount, recomputes the level, and appends a level-up event
// when a threshold was crossed.
func addXP(s Snapshot, amount int, events []Event) (Snapshot, []Event) {
	s.XP += amount
	if lvl := Level(s.XP); lvl > s.Level {
		s.Level = lvl
		events = append(events, Event{Kind: EventLevelUp, Level: lvl})
	}
	return s, events
}

func unlocked(s Snapshot, id string) bool {
	for _, u := range s.Unlocked {
		if u == id {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
