// Package db opens and prepares the storage backends: a PostgreSQL
// database migrated with goose, or an embedded SQLite database with its
// schema applied inline.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/kmalkov/fitness-leveling/internal/db/migrations"
)

// sqliteSchema mirrors the Postgres schema with explicit unique indexes,
// since the embedded store has no server-side constraints to lean on.
// Declared column types matter: the driver maps DATE/TIMESTAMP columns
// back to time.Time.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash BLOB NOT NULL,
    name TEXT NOT NULL,
    xp INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    streak INTEGER NOT NULL DEFAULT 0,
    last_workout_date DATE,
    total_workouts INTEGER NOT NULL DEFAULT 0,
    age INTEGER,
    height REAL,
    weight REAL,
    fitness_goal TEXT,
    bio TEXT,
    profile_visibility TEXT NOT NULL DEFAULT 'public',
    settings TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);

CREATE TABLE IF NOT EXISTS workouts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    duration INTEGER NOT NULL,
    intensity TEXT NOT NULL,
    xp INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS workouts_user_id_idx ON workouts (user_id);
CREATE INDEX IF NOT EXISTS workouts_created_at_idx ON workouts (created_at);

CREATE TABLE IF NOT EXISTS achievements (
    user_id TEXT NOT NULL,
    achievement_id TEXT NOT NULL,
    unlocked_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS achievements_achievement_id_idx ON achievements (achievement_id);

CREATE TABLE IF NOT EXISTS friendships (
    user_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, friend_id)
);

CREATE INDEX IF NOT EXISTS friendships_friend_id_idx ON friendships (friend_id);
`

// InitPostgres opens a PostgreSQL connection, verifies it, and brings the
// schema up to date with the embedded goose migrations.
func InitPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// InitSQLite opens (or creates) the embedded database at path and applies
// the schema. Use ":memory:" for an ephemeral store.
func InitSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// The driver opens one connection per database handle; more would make
	// ":memory:" databases diverge.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
