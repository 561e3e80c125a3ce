package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
)

// InsertWorkoutExercises batch-inserts exercise link rows for a workout
// in a single statement, keeping order_index assignment atomic from the
// caller's point of view.
func (db *DB) InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO workout_exercises (id, workout_id, exercise_id, order_index,
		sets, reps, rest_seconds, weight, notes, rationale) VALUES `
	args := make([]any, 0, len(rows)*10)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		args = append(args, r.ID, r.WorkoutID, r.ExerciseID, r.OrderIndex,
			r.Sets, r.Reps, r.RestSeconds, r.Weight, r.Notes, r.Rationale)
	}

	query += strings.Join(valueStrings, ",")

	_, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting workout exercises: %w", err)
	}
	return nil
}

// QueryWorkoutExercises retrieves a workout's exercise links in
// execution order.
func (db *DB) QueryWorkoutExercises(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutExerciseRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, exercise_id, order_index, sets, reps, rest_seconds, weight, notes, rationale
		 FROM workout_exercises
		 WHERE workout_id = $1
		 ORDER BY order_index ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutExerciseRow
	for rows.Next() {
		var r models.WorkoutExerciseRow
		if err := rows.Scan(&r.ID, &r.WorkoutID, &r.ExerciseID, &r.OrderIndex,
			&r.Sets, &r.Reps, &r.RestSeconds, &r.Weight, &r.Notes, &r.Rationale); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
