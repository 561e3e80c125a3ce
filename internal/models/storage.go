package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout status values. A generated workout starts as "new"; the owner
// can schedule it ("target"), complete it, or let it lapse ("missed").
const (
	StatusNew       = "new"
	StatusTarget    = "target"
	StatusMissed    = "missed"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is a known workout status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusTarget, StatusMissed, StatusCompleted:
		return true
	}
	return false
}

// ExerciseRow is a row in the exercises catalog table. The catalog is
// append-only and shared across users; rows are deduplicated by
// SearchKey, never deleted by the generation pipeline.
type ExerciseRow struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	SearchKey        string    `json:"search_key"`
	PrimaryMuscles   []string  `json:"primary_muscles"`
	SecondaryMuscles []string  `json:"secondary_muscles"`
	Equipment        string    `json:"equipment"`
	CreatedAt        time.Time `json:"created_at"`
}

// WorkoutRow is a row ready for insertion into the workouts table.
// WorkoutData holds the denormalized snapshot of the generated plan,
// kept for display/audit stability independent of the catalog.
type WorkoutRow struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               int        `json:"user_id"`
	Name                 string     `json:"name"`
	TotalDurationMinutes int        `json:"total_duration_minutes"`
	MuscleGroupsTargeted string     `json:"muscle_groups_targeted"`
	JointGroupsAffected  string     `json:"joint_groups_affected"`
	EquipmentNeeded      string     `json:"equipment_needed"`
	WorkoutData          []byte     `json:"-"`
	RawModelResponse     string     `json:"-"`
	MuscleFocus          []string   `json:"muscle_focus"`
	WorkoutFocus         []string   `json:"workout_focus"`
	ExerciseCount        int        `json:"exercise_count"`
	SpecialInstructions  string     `json:"special_instructions"`
	Status               string     `json:"status"`
	Rating               *int       `json:"rating,omitempty"`
	TargetDate           *time.Time `json:"target_date,omitempty"`
	Attempts             int        `json:"attempts"`
	GenerationMs         int64      `json:"generation_ms"`
	PromptTokens         int        `json:"prompt_tokens"`
	CompletionTokens     int        `json:"completion_tokens"`
	CreatedAt            time.Time  `json:"created_at"`
}

// WorkoutExerciseRow is a row for the workout_exercises join table.
// ExerciseID is nil when catalog resolution degraded to a placeholder;
// the denormalized snapshot on the workout still carries the full data.
type WorkoutExerciseRow struct {
	ID          uuid.UUID  `json:"id"`
	WorkoutID   uuid.UUID  `json:"workout_id"`
	ExerciseID  *uuid.UUID `json:"exercise_id,omitempty"`
	OrderIndex  int        `json:"order_index"`
	Sets        int        `json:"sets"`
	Reps        string     `json:"reps"`
	RestSeconds int        `json:"rest_seconds"`
	Weight      string     `json:"weight,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Rationale   string     `json:"rationale,omitempty"`
}

// Principal identifies the caller of the generation pipeline. It is an
// explicit value passed into the pipeline entry point, never read from
// ambient state, so quota enforcement stays testable.
type Principal struct {
	UserID      int    `json:"user_id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	Admin       bool   `json:"admin"`
}
