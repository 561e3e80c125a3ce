package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's generated workouts.
type DataStats struct {
	TotalWorkouts     int64             `json:"total_workouts"`
	TotalExerciseRows int64             `json:"total_exercise_rows"`
	CatalogSize       int64             `json:"catalog_size"`
	EarliestWorkout   *time.Time        `json:"earliest_workout"`
	LatestWorkout     *time.Time        `json:"latest_workout"`
	WorkoutsByStatus  []WorkoutStatStat `json:"workouts_by_status"`
}

// WorkoutStatStat holds summary stats for a single workout status.
type WorkoutStatStat struct {
	Status        string `json:"status"`
	Count         int64  `json:"count"`
	TotalDuration int64  `json:"total_duration_minutes"`
}

// GetDataStats returns aggregate statistics for a user's workouts.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.EarliestWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_exercises we
		 JOIN workouts w ON w.id = we.workout_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalExerciseRows)
	if err != nil {
		return nil, fmt.Errorf("counting exercise rows: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises`,
	).Scan(&stats.CatalogSize)
	if err != nil {
		return nil, fmt.Errorf("counting catalog: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total_duration_minutes), 0)
		 FROM workouts
		 WHERE user_id = $1
		 GROUP BY status
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutStatStat
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalDuration); err != nil {
			return nil, fmt.Errorf("scanning status stat: %w", err)
		}
		stats.WorkoutsByStatus = append(stats.WorkoutsByStatus, s)
	}
	return stats, rows.Err()
}
