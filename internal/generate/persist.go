package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/catalog"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

// averageSetSeconds is the assumed working time of one set, used for
// the estimated-duration summary field.
const averageSetSeconds = 45

// maxRationaleLen caps the per-exercise rationale copied onto link rows.
const maxRationaleLen = 1000

// PersistStore is the persistence surface the coordinator needs.
// *storage.DB satisfies it.
type PersistStore interface {
	InsertWorkout(ctx context.Context, row models.WorkoutRow) error
	InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) error
	DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error
	UpdateWorkoutSummary(ctx context.Context, workoutID uuid.UUID, durationMinutes int, musclesTargeted, jointsAffected, equipment string) error
}

// Compile-time check: *storage.DB satisfies PersistStore.
var _ PersistStore = (*storage.DB)(nil)

// Coordinator writes a generated workout and its exercise links with
// all-or-nothing visibility: a workout row is never left behind without
// its links. Link failure triggers a compensating delete of the workout.
type Coordinator struct {
	store PersistStore
	log   *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(store PersistStore, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, log: log}
}

// muscleJoints maps muscle groups to the joints they load, for the
// denormalized joint display field.
var muscleJoints = map[string]string{
	"chest":      "shoulder, elbow",
	"back":       "shoulder, elbow",
	"lats":       "shoulder, elbow",
	"shoulders":  "shoulder",
	"biceps":     "elbow",
	"triceps":    "elbow",
	"forearms":   "wrist, elbow",
	"quads":      "knee, hip",
	"hamstrings": "knee, hip",
	"glutes":     "hip",
	"calves":     "ankle, knee",
	"core":       "spine, hip",
	"abs":        "spine, hip",
	"traps":      "shoulder, neck",
}

// Persist runs the coordinator state machine for one generated plan.
// resolutions must be index-aligned with outcome.Plan.Exercises so
// order indexes reflect the validated model response.
func (c *Coordinator) Persist(ctx context.Context, principal models.Principal, req models.GenerationRequest, outcome *ModelOutcome, resolutions []catalog.Resolution) (*models.WorkoutRow, error) {
	plan := outcome.Plan
	if len(resolutions) != len(plan.Exercises) {
		return nil, fmt.Errorf("%w: %d resolutions for %d exercises", ErrPersistence, len(resolutions), len(plan.Exercises))
	}

	// Draft: denormalized display fields come from the resolved catalog
	// rows, not the model's unvalidated claims.
	muscles := targetedMuscles(resolutions, req.MuscleFocus)
	equipment := uniqueEquipment(resolutions)
	joints := affectedJoints(muscles)
	duration := estimateDurationMinutes(plan.Exercises)

	snapshot, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling snapshot: %v", ErrPersistence, err)
	}

	row := models.WorkoutRow{
		ID:                   uuid.New(),
		UserID:               principal.UserID,
		Name:                 workoutName(plan, req),
		TotalDurationMinutes: duration,
		MuscleGroupsTargeted: strings.Join(muscles, ", "),
		JointGroupsAffected:  joints,
		EquipmentNeeded:      strings.Join(equipment, ", "),
		WorkoutData:          snapshot,
		RawModelResponse:     strings.Join(outcome.RawResponses, "\n---\n"),
		MuscleFocus:          req.MuscleFocus,
		WorkoutFocus:         req.WorkoutFocus,
		ExerciseCount:        req.ExerciseCount,
		SpecialInstructions:  req.SpecialInstructions,
		Status:               models.StatusNew,
		Attempts:             outcome.Attempts,
		GenerationMs:         outcome.Elapsed.Milliseconds(),
		PromptTokens:         outcome.Usage.PromptTokens,
		CompletionTokens:     outcome.Usage.CompletionTokens,
	}

	// WorkoutInserted
	if err := c.store.InsertWorkout(ctx, row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// ExercisesLinking: one batch, order_index = position in the
	// validated response.
	links := make([]models.WorkoutExerciseRow, len(plan.Exercises))
	for i, ex := range plan.Exercises {
		var exerciseID *uuid.UUID
		if !resolutions[i].Placeholder {
			id := resolutions[i].Exercise.ID
			exerciseID = &id
		}
		links[i] = models.WorkoutExerciseRow{
			ID:          uuid.New(),
			WorkoutID:   row.ID,
			ExerciseID:  exerciseID,
			OrderIndex:  i,
			Sets:        ex.Sets,
			Reps:        ex.Reps.String(),
			RestSeconds: ex.RestTimeSeconds,
			Rationale:   truncate(ex.Rationale, maxRationaleLen),
		}
	}

	if err := c.store.InsertWorkoutExercises(ctx, links); err != nil {
		// Compensating action: the workout row must not stay visible
		// without its exercises.
		if delErr := c.store.DeleteWorkout(ctx, row.ID, principal.UserID); delErr != nil {
			c.log.Error("rollback of workout failed", "workout_id", row.ID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: linking exercises: %v", ErrPersistence, err)
	}

	// SummaryRecompute: best effort, the workout stays usable with its
	// draft estimates if this write fails.
	if err := c.store.UpdateWorkoutSummary(ctx, row.ID, duration, row.MuscleGroupsTargeted, joints, row.EquipmentNeeded); err != nil {
		c.log.Warn("summary recompute failed", "workout_id", row.ID, "error", err)
	}

	return &row, nil
}

func workoutName(plan *models.GeneratedPlan, req models.GenerationRequest) string {
	if strings.TrimSpace(plan.Name) != "" {
		return plan.Name
	}
	return fmt.Sprintf("%s %s workout",
		strings.Join(req.MuscleFocus, " & "), req.WorkoutFocus[0])
}

// targetedMuscles collects unique primary muscles from the catalog rows
// in first-seen order, falling back to the requested focus when the
// catalog has no muscle data.
func targetedMuscles(resolutions []catalog.Resolution, fallback []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, res := range resolutions {
		for _, m := range res.Exercise.PrimaryMuscles {
			m = strings.ToLower(strings.TrimSpace(m))
			if m != "" && !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func uniqueEquipment(resolutions []catalog.Resolution) []string {
	seen := make(map[string]bool)
	var out []string
	for _, res := range resolutions {
		e := strings.ToLower(strings.TrimSpace(res.Exercise.Equipment))
		if e != "" && e != "none" && !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func affectedJoints(muscles []string) string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range muscles {
		for _, j := range strings.Split(muscleJoints[strings.ToLower(m)], ", ") {
			if j != "" && !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	}
	return strings.Join(out, ", ")
}

// estimateDurationMinutes derives total time from set work plus rest:
// sets × averageSetSeconds + Σ(sets × restSeconds), rounded up.
func estimateDurationMinutes(exercises []models.ProposedExercise) int {
	seconds := 0
	for _, ex := range exercises {
		seconds += ex.Sets*averageSetSeconds + ex.Sets*ex.RestTimeSeconds
	}
	return (seconds + 59) / 60
}

// truncate caps s at n bytes without splitting a multi-byte rune, so
// the result is always valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
