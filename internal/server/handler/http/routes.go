package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kmalkov/fitness-leveling/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// fitness tracker API. It applies JSON content-type enforcement and
// request logging globally, and bearer-token authentication to every
// route except registration and login.
//
// Parameters:
//
//	accounts  - handler for registration, login, session, password
//	workouts  - handler for workout submission and achievements
//	profiles  - handler for profile viewing, settings, export
//	social    - handler for leaderboard, search, friendships
//	verifier  - token verifier backing the auth middleware
//	logger    - structured logger for request logging middleware
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON bodies
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. TokenAuth(verifier)                  — protected group only
func NewRouter(
	accounts *AccountHandler,
	workouts *WorkoutHandler,
	profiles *ProfileHandler,
	social *SocialHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", accounts.Register)
		r.Post("/login", accounts.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(verifier))

			r.Get("/session", accounts.Session)
			r.Put("/password", accounts.UpdatePassword)

			r.Post("/workouts", workouts.Create)
			r.Get("/workouts", workouts.List)
			r.Get("/achievements", workouts.Achievements)

			r.Get("/profile", profiles.Me)
			r.Put("/profile", profiles.Update)
			r.Put("/profile/settings", profiles.UpdateSettings)
			r.Get("/profile/{userID}", profiles.Get)
			r.Get("/export", profiles.Export)

			r.Get("/leaderboard", social.Leaderboard)
			r.Get("/users", social.Search)
			r.Get("/friends", social.Friends)
			r.Post("/friends", social.SendRequest)
			r.Get("/friends/requests", social.PendingRequests)
			r.Post("/friends/{id}/accept", social.Accept)
			r.Delete("/friends/{id}", social.Remove)
		})
	})

	return r
}
