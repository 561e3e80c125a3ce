package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
)

// splitList parses a comma-separated tool argument into a clean slice.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- Tool definitions ---

var toolGenerateWorkout = mcp.NewTool("generate_workout",
	mcp.WithDescription("Generate a personalized workout plan. Runs the full pipeline: prompt construction, model call, validation, exercise catalog resolution, and persistence. Returns the saved workout."),
	mcp.WithString("muscle_focus", mcp.Required(), mcp.Description("Comma-separated muscle groups to target, 1-4 entries (e.g. 'chest, triceps')")),
	mcp.WithString("workout_focus", mcp.Required(), mcp.Description("Comma-separated training goals, 1-3 entries (e.g. 'hypertrophy' or 'strength, power')")),
	mcp.WithNumber("exercise_count", mcp.Required(), mcp.Description("Number of exercises, 1-10")),
	mcp.WithString("special_instructions", mcp.Description("Free-form constraints (e.g. 'no jumping, apartment-friendly')")),
	mcp.WithString("excluded_exercises", mcp.Description("Comma-separated exercise names to avoid")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List the caller's workouts, most recent first. Returns summaries including status, duration, targeted muscles, and equipment."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 50.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with its full exercise list: sets, reps, rest times, and per-exercise rationale."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolUpdateWorkout = mcp.NewTool("update_workout",
	mcp.WithDescription("Update a workout's status, rating, or target date. Omitted fields are left unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
	mcp.WithString("status", mcp.Description("New status"), mcp.Enum("new", "target", "missed", "completed")),
	mcp.WithNumber("rating", mcp.Description("Rating 1-5")),
	mcp.WithString("target_date", mcp.Description("Scheduled date (YYYY-MM-DD)")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the shared exercise catalog with muscle groups and equipment."),
)

var toolGetWorkoutStats = mcp.NewTool("get_workout_stats",
	mcp.WithDescription("Aggregate statistics for the caller: workout counts by status, exercise totals, and catalog size."),
)

// --- Tool handlers ---

func (h *handlers) generateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muscles, err := req.RequireString("muscle_focus")
	if err != nil {
		return mcp.NewToolResultError("muscle_focus parameter is required"), nil
	}
	focuses, err := req.RequireString("workout_focus")
	if err != nil {
		return mcp.NewToolResultError("workout_focus parameter is required"), nil
	}
	count, err := req.RequireInt("exercise_count")
	if err != nil {
		return mcp.NewToolResultError("exercise_count parameter is required"), nil
	}

	genReq := models.GenerationRequest{
		MuscleFocus:         splitList(muscles),
		WorkoutFocus:        splitList(focuses),
		ExerciseCount:       count,
		SpecialInstructions: req.GetString("special_instructions", ""),
		ExcludeExercises:    splitList(req.GetString("excluded_exercises", "")),
	}

	principal := PrincipalFromContext(ctx)
	result, err := h.gen.Generate(ctx, principal, genReq)
	if err != nil {
		h.log.Error("mcp generate_workout", "user_id", principal.UserID, "error", err)
		switch {
		case errors.Is(err, generate.ErrInvalidRequest):
			return mcp.NewToolResultError("invalid request: " + err.Error()), nil
		case errors.Is(err, generate.ErrQuotaExceeded):
			return mcp.NewToolResultError("daily generation quota exceeded, try again tomorrow"), nil
		default:
			return mcp.NewToolResultError("generation failed: " + err.Error()), nil
		}
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	principal := PrincipalFromContext(ctx)

	workouts, err := h.ds.QueryWorkouts(ctx, principal.UserID, limit)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID"), nil
	}

	principal := PrincipalFromContext(ctx)
	detail, err := h.ds.GetWorkout(ctx, workoutID, principal.UserID)
	if err != nil {
		h.log.Error("mcp get_workout", "workout_id", workoutID, "error", err)
		return mcp.NewToolResultError("workout not found"), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) updateWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID"), nil
	}

	var status *string
	if s := req.GetString("status", ""); s != "" {
		if !models.ValidStatus(s) {
			return mcp.NewToolResultError("invalid status: " + s), nil
		}
		status = &s
	}
	var rating *int
	if n := req.GetInt("rating", 0); n != 0 {
		if n < 1 || n > 5 {
			return mcp.NewToolResultError("rating must be 1-5"), nil
		}
		rating = &n
	}
	var targetDate *time.Time
	if d := req.GetString("target_date", ""); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return mcp.NewToolResultError("invalid target_date, want YYYY-MM-DD"), nil
		}
		targetDate = &t
	}
	if status == nil && rating == nil && targetDate == nil {
		return mcp.NewToolResultError("nothing to update"), nil
	}

	principal := PrincipalFromContext(ctx)
	if err := h.ds.UpdateWorkoutStatus(ctx, workoutID, principal.UserID, status, rating, targetDate); err != nil {
		h.log.Error("mcp update_workout", "workout_id", workoutID, "error", err)
		return mcp.NewToolResultError("update failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]string{"status": "updated"})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	principal := PrincipalFromContext(ctx)
	stats, err := h.ds.GetDataStats(ctx, principal.UserID)
	if err != nil {
		h.log.Error("mcp get_workout_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
