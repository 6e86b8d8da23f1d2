package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStreakDecayer periodically zeroes streaks of users whose last
// workout predates yesterday, the same rule the session-load check applies.
// It keeps leaderboard streaks honest for users who never log back in.
func StartStreakDecayer(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				yesterday := time.Now().UTC().AddDate(0, 0, -1)
				cutoff := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
				res, err := db.ExecContext(ctx, `
                    UPDATE users SET streak = 0
                     WHERE streak > 0
                       AND last_workout_date < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to decay stale streaks", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("decayed stale streaks", zap.Int64("users", rows))
				}
			}
		}
	}()
}
