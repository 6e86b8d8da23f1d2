package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kmalkov/fitness-leveling/internal/middleware"
	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/service"
)

// WorkoutService defines the workout operations required by WorkoutHandler.
type WorkoutService interface {
	// LogWorkout submits a workout and returns the progression outcome.
	LogWorkout(ctx context.Context, userID string, in service.WorkoutInput) (*service.WorkoutResult, error)
	// Workouts lists the user's workout history, newest first.
	Workouts(ctx context.Context, userID string) ([]models.Workout, error)
	// Achievements returns the catalog annotated with unlock state.
	Achievements(ctx context.Context, userID string) ([]service.AchievementView, error)
}

// WorkoutHandler handles workout submission, workout history, and the
// achievement catalog.
type WorkoutHandler struct {
	// Workouts performs the underlying workout operations.
	Workouts WorkoutService
}

// Create handles POST /api/workouts.
// It runs the submission through the progression engine and responds with
// the stored workout, the announcement events, and the refreshed user.
func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req service.WorkoutInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.Workouts.LogWorkout(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List handles GET /api/workouts.
func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	workouts, err := h.Workouts.Workouts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

// Achievements handles GET /api/achievements.
func (h *WorkoutHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	views, err := h.Workouts.Achievements(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
