package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
)

// InsertWorkout inserts a workout row.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, total_duration_minutes, muscle_groups_targeted,
		 joint_groups_affected, equipment_needed, workout_data, raw_model_response,
		 muscle_focus, workout_focus, exercise_count, special_instructions, status,
		 rating, target_date, attempts, generation_ms, prompt_tokens, completion_tokens)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		row.ID, row.UserID, row.Name, row.TotalDurationMinutes, row.MuscleGroupsTargeted,
		row.JointGroupsAffected, row.EquipmentNeeded, row.WorkoutData, row.RawModelResponse,
		row.MuscleFocus, row.WorkoutFocus, row.ExerciseCount, row.SpecialInstructions, row.Status,
		row.Rating, row.TargetDate, row.Attempts, row.GenerationMs, row.PromptTokens, row.CompletionTokens)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout and, via cascade, its exercise links.
// Also used as the compensating action when link insertion fails.
func (db *DB) DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`,
		workoutID, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWorkoutSummary writes back the derived summary fields after the
// exercise links exist. Failure here is non-fatal to generation.
func (db *DB) UpdateWorkoutSummary(ctx context.Context, workoutID uuid.UUID, durationMinutes int, musclesTargeted, jointsAffected, equipment string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workouts
		 SET total_duration_minutes = $2, muscle_groups_targeted = $3,
		     joint_groups_affected = $4, equipment_needed = $5
		 WHERE id = $1`,
		workoutID, durationMinutes, musclesTargeted, jointsAffected, equipment)
	if err != nil {
		return fmt.Errorf("updating workout summary: %w", err)
	}
	return nil
}

// UpdateWorkoutStatus updates status, rating, and target date. Nil
// pointers leave the stored value unchanged.
func (db *DB) UpdateWorkoutStatus(ctx context.Context, workoutID uuid.UUID, userID int, status *string, rating *int, targetDate *time.Time) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts
		 SET status = COALESCE($3, status),
		     rating = COALESCE($4, rating),
		     target_date = COALESCE($5, target_date)
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID, status, rating, targetDate)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryWorkouts retrieves a user's workouts, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, userID int, limit int) ([]models.WorkoutRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, total_duration_minutes, muscle_groups_targeted,
		 joint_groups_affected, equipment_needed, workout_data, raw_model_response,
		 muscle_focus, workout_focus, exercise_count, special_instructions, status,
		 rating, target_date, attempts, generation_ms, prompt_tokens, completion_tokens, created_at
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// WorkoutDetail is a workout with its ordered exercise links.
type WorkoutDetail struct {
	models.WorkoutRow
	Exercises []models.WorkoutExerciseRow `json:"exercises"`
}

// GetWorkout retrieves a single workout with its exercise links in
// order-index order. Returns ErrNotFound if the workout does not exist
// or belongs to another user.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, total_duration_minutes, muscle_groups_targeted,
		 joint_groups_affected, equipment_needed, workout_data, raw_model_response,
		 muscle_focus, workout_focus, exercise_count, special_instructions, status,
		 rating, target_date, attempts, generation_ms, prompt_tokens, completion_tokens, created_at
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &WorkoutDetail{WorkoutRow: w}

	links, err := db.QueryWorkoutExercises(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	detail.Exercises = links

	return detail, nil
}

// pgx row scanner shared by QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (models.WorkoutRow, error) {
	var w models.WorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.TotalDurationMinutes, &w.MuscleGroupsTargeted,
		&w.JointGroupsAffected, &w.EquipmentNeeded, &w.WorkoutData, &w.RawModelResponse,
		&w.MuscleFocus, &w.WorkoutFocus, &w.ExerciseCount, &w.SpecialInstructions, &w.Status,
		&w.Rating, &w.TargetDate, &w.Attempts, &w.GenerationMs, &w.PromptTokens, &w.CompletionTokens, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return w, err
	}
	if err != nil {
		return w, fmt.Errorf("scanning workout: %w", err)
	}
	return w, nil
}
