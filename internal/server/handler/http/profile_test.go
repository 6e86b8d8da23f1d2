package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/service"
)

// fakeProfileService implements ProfileService for testing.
type fakeProfileService struct {
	view        *service.ProfileView
	viewErr     error
	updated     *models.User
	updateErr   error
	settingsErr error
	snapshot    *models.ExportSnapshot
	exportErr   error

	gotViewer string
	gotTarget string
}

func (f *fakeProfileService) GetProfile(ctx context.Context, viewerID, targetID string) (*service.ProfileView, error) {
	f.gotViewer, f.gotTarget = viewerID, targetID
	return f.view, f.viewErr
}

func (f *fakeProfileService) UpdateProfile(ctx context.Context, userID string, in service.ProfileUpdateInput) (*models.User, error) {
	return f.updated, f.updateErr
}

func (f *fakeProfileService) UpdateSettings(ctx context.Context, userID string, settings models.Settings) (*models.User, error) {
	return f.updated, f.settingsErr
}

func (f *fakeProfileService) Export(ctx context.Context, userID string) (*models.ExportSnapshot, error) {
	return f.snapshot, f.exportErr
}

func TestProfileHandler_Me(t *testing.T) {
	fake := &fakeProfileService{view: &service.ProfileView{ID: "u1", Username: "alice", Email: "alice@example.com"}}
	h := &ProfileHandler{Profiles: fake}

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("GET", "/api/profile", nil), "u1")
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if fake.gotViewer != "u1" || fake.gotTarget != "u1" {
		t.Errorf("expected viewer and target 'u1', got %q and %q", fake.gotViewer, fake.gotTarget)
	}
}

func TestProfileHandler_Get(t *testing.T) {
	t.Run("forbidden", func(t *testing.T) {
		h := &ProfileHandler{Profiles: &fakeProfileService{viewErr: service.ErrForbidden}}
		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("GET", "/api/profile/u2", nil), "u1")
		req = withURLParam(req, "userID", "u2")
		h.Get(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
	})

	t.Run("visible", func(t *testing.T) {
		fake := &fakeProfileService{view: &service.ProfileView{ID: "u2", Username: "bob"}}
		h := &ProfileHandler{Profiles: fake}
		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("GET", "/api/profile/u2", nil), "u1")
		req = withURLParam(req, "userID", "u2")
		h.Get(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if fake.gotViewer != "u1" || fake.gotTarget != "u2" {
			t.Errorf("expected viewer 'u1' and target 'u2', got %q and %q", fake.gotViewer, fake.gotTarget)
		}
	})
}

func TestProfileHandler_Update(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeProfileService
		expectedCode int
	}{
		{
			name:         "invalid JSON",
			body:         `{{`,
			service:      &fakeProfileService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "validation failure",
			body:         `{"profile_visibility":"everyone"}`,
			service:      &fakeProfileService{updateErr: service.ErrValidation},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "success",
			body:         `{"name":"Alice B","profile":{"age":30}}`,
			service:      &fakeProfileService{updated: &models.User{ID: "u1", Name: "Alice B"}},
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := authed(httptest.NewRequest("PUT", "/api/profile", bytes.NewBufferString(tt.body)), "u1")
			h := &ProfileHandler{Profiles: tt.service}
			h.Update(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}

func TestProfileHandler_UpdateSettings(t *testing.T) {
	h := &ProfileHandler{Profiles: &fakeProfileService{updated: &models.User{ID: "u1"}}}

	rec := httptest.NewRecorder()
	body := `{"units_system":"imperial","show_stats_public":true}`
	req := authed(httptest.NewRequest("PUT", "/api/profile/settings", bytes.NewBufferString(body)), "u1")
	h.UpdateSettings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestProfileHandler_Export(t *testing.T) {
	snap := &models.ExportSnapshot{
		User:       models.ExportUser{ID: "u1", Username: "alice"},
		Workouts:   []models.Workout{{ID: "w1"}},
		ExportedAt: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
	h := &ProfileHandler{Profiles: &fakeProfileService{snapshot: snap}}

	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest("GET", "/api/export", nil), "u1")
	h.Export(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
	var got models.ExportSnapshot
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.User.Username != "alice" || len(got.Workouts) != 1 {
		t.Errorf("unexpected export snapshot: %+v", got)
	}
}
