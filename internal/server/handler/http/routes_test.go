package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kmalkov/fitness-leveling/internal/models"
	"github.com/kmalkov/fitness-leveling/internal/service"
)

// stubVerifier accepts the token "good" for user "u1" and rejects the rest.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (string, error) {
	if token == "good" {
		return "u1", nil
	}
	return "", errors.New("invalid token")
}

func newTestRouter() http.Handler {
	return NewRouter(
		&AccountHandler{Account: &fakeAccountService{
			sessionView: &service.SessionView{User: &models.User{ID: "u1"}},
		}},
		&WorkoutHandler{Workouts: &fakeWorkoutService{}},
		&ProfileHandler{Profiles: &fakeProfileService{view: &service.ProfileView{ID: "u1"}}},
		&SocialHandler{Social: &fakeSocialService{}},
		stubVerifier{},
		zap.NewNop(),
	)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	protected := []struct {
		method string
		path   string
	}{
		{"GET", "/api/session"},
		{"GET", "/api/workouts"},
		{"GET", "/api/achievements"},
		{"GET", "/api/leaderboard"},
		{"GET", "/api/profile"},
		{"GET", "/api/friends"},
		{"GET", "/api/export"},
	}
	for _, tt := range protected {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 without token, got %d", rec.Code)
			}
		})
	}
}

func TestRouter_TokenAdmitsProtectedRoute(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/session", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rec.Code)
	}
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/register", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.ContentLength = 10
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for non-JSON body, got %d", rec.Code)
	}
}
