package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kmalkov/fitness-leveling/internal/middleware"
	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/service"
)

// ProfileService defines the profile operations required by ProfileHandler.
type ProfileService interface {
	// GetProfile returns the target's profile as seen by the viewer.
	GetProfile(ctx context.Context, viewerID, targetID string) (*service.ProfileView, error)
	// UpdateProfile applies a partial profile change.
	UpdateProfile(ctx context.Context, userID string, in service.ProfileUpdateInput) (*models.User, error)
	// UpdateSettings replaces the user's preference set.
	UpdateSettings(ctx context.Context, userID string, settings models.Settings) (*models.User, error)
	// Export assembles the user's full data snapshot.
	Export(ctx context.Context, userID string) (*models.ExportSnapshot, error)
}

// ProfileHandler handles profile viewing and editing, settings, and export.
type ProfileHandler struct {
	// Profiles performs the underlying profile operations.
	Profiles ProfileService
}

// Me handles GET /api/profile, the authenticated user's own profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	view, err := h.Profiles.GetProfile(r.Context(), userID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /api/profile/{userID}, another user's profile subject
// to that user's visibility and privacy settings.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserIDFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")

	view, err := h.Profiles.GetProfile(r.Context(), viewerID, targetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req service.ProfileUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.Profiles.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateSettings handles PUT /api/profile/settings.
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req models.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.Profiles.UpdateSettings(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Export handles GET /api/export. The snapshot is offered as a download.
func (h *ProfileHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	snap, err := h.Profiles.Export(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="fitness-export.json"`)
	writeJSON(w, http.StatusOK, snap)
}
