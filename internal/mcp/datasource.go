package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryWorkouts(ctx context.Context, userID int, limit int) ([]models.WorkoutRow, error)
	GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*storage.WorkoutDetail, error)
	UpdateWorkoutStatus(ctx context.Context, workoutID uuid.UUID, userID int, status *string, rating *int, targetDate *time.Time) error
	ListExercises(ctx context.Context) ([]models.ExerciseRow, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Generator runs the workout generation pipeline. *generate.Service
// satisfies it locally; HTTPClient delegates to the remote server.
type Generator interface {
	Generate(ctx context.Context, principal models.Principal, req models.GenerationRequest) (*generate.Result, error)
}

// Compile-time checks for the local wiring.
var (
	_ DataSource = (*storage.DB)(nil)
	_ Generator  = (*generate.Service)(nil)
)
