package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
)

// GetExerciseBySearchKey looks up a catalog entry by its normalized
// search key. Returns ErrNotFound when no entry exists.
func (db *DB) GetExerciseBySearchKey(ctx context.Context, searchKey string) (*models.ExerciseRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, search_key, primary_muscles, secondary_muscles, equipment, created_at
		 FROM exercises
		 WHERE search_key = $1`,
		searchKey)

	var e models.ExerciseRow
	err := row.Scan(&e.ID, &e.Name, &e.SearchKey, &e.PrimaryMuscles, &e.SecondaryMuscles, &e.Equipment, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// InsertExercise adds a new catalog entry. Returns ErrDuplicate on a
// search_key uniqueness conflict so the caller can re-query the winner.
func (db *DB) InsertExercise(ctx context.Context, row models.ExerciseRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, search_key, primary_muscles, secondary_muscles, equipment)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		row.ID, row.Name, row.SearchKey, row.PrimaryMuscles, row.SecondaryMuscles, row.Equipment)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	return nil
}

// ListExercises returns the catalog ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.ExerciseRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, search_key, primary_muscles, secondary_muscles, equipment, created_at
		 FROM exercises
		 ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseRow
	for rows.Next() {
		var e models.ExerciseRow
		if err := rows.Scan(&e.ID, &e.Name, &e.SearchKey, &e.PrimaryMuscles, &e.SecondaryMuscles, &e.Equipment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
