// Package main initializes and starts the fitness tracker API server,
// setting up configuration, logging, the selected database backend,
// the repository, services, and HTTP handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/kmalkov/fitness-leveling/internal/auth"
	"github.com/kmalkov/fitness-leveling/internal/config"
	"github.com/kmalkov/fitness-leveling/internal/db"
	"github.com/kmalkov/fitness-leveling/internal/logger"
	"github.com/kmalkov/fitness-leveling/internal/repository"
	"github.com/kmalkov/fitness-leveling/internal/server/handler/http"
	"github.com/kmalkov/fitness-leveling/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	zapLogger, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if options.JWTSecret == "" {
		zapLogger.Fatal("jwt secret is required (-j flag or JWT_SECRET)")
	}

	ctx := context.Background()

	// Open the selected storage backend. PostgreSQL is the primary store;
	// the embedded SQLite database covers single-machine deployments.
	var store repository.Store
	switch options.Backend {
	case "postgres":
		postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		// Zero out stale streaks for users who never log back in.
		db.StartStreakDecayer(ctx, postgresDB, time.Hour, zapLogger)
		store = repository.NewPostgresStore(postgresDB)
	case "sqlite":
		sqliteDB, err := db.InitSQLite(ctx, options.SQLitePath)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		db.StartStreakDecayer(ctx, sqliteDB, time.Hour, zapLogger)
		store = repository.NewSQLiteStore(sqliteDB)
	default:
		zapLogger.Fatal("unknown storage backend", zap.String("backend", options.Backend))
	}

	// Initialize the token manager and the business-logic service.
	tokens := auth.NewTokenManager([]byte(options.JWTSecret), options.TokenTTL)
	svc := service.New(store, tokens)

	// Create HTTP handlers for the API surface.
	accounts := &http.AccountHandler{Account: svc}
	workouts := &http.WorkoutHandler{Workouts: svc}
	profiles := &http.ProfileHandler{Profiles: svc}
	social := &http.SocialHandler{Social: svc}

	// Build the router with middleware and routes.
	router := http.NewRouter(accounts, workouts, profiles, social, tokens, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Port),
		zap.String("backend", options.Backend),
	)
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
