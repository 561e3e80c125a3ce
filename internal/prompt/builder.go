package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/meltforce/repforge/internal/models"
)

// AttemptKind selects the prompt variant. A retry re-asserts the output
// contract after the model returned something unparseable.
type AttemptKind int

const (
	AttemptFirst AttemptKind = iota
	AttemptRetry
)

// focusGuidance maps the primary workout focus to coaching instructions
// embedded in the prompt. Unknown focuses fall back to balancedGuidance.
var focusGuidance = map[string]string{
	"hypertrophy": "Prioritize moderate loads in the 8-12 rep range with controlled tempo and 60-90 second rests to maximize muscle growth.",
	"strength":    "Prioritize heavy compound lifts in the 3-6 rep range with full recovery rests of 2-4 minutes.",
	"endurance":   "Prioritize higher rep ranges (15-20+) with short rests under 45 seconds to build muscular endurance.",
	"power":       "Prioritize explosive movements with low reps (1-5), full rests, and an emphasis on bar speed.",
	"cardio":      "Bias exercise selection toward conditioning movements and circuits that keep heart rate elevated.",
	"mobility":    "Include controlled full-range movements and emphasize positions that load muscles at length.",
	"toning":      "Use moderate loads, 10-15 rep ranges, and minimal rest to combine muscular work with conditioning.",
}

const balancedGuidance = "Use a balanced approach mixing compound and isolation work across moderate rep ranges."

const retrySuffix = "\n\nIMPORTANT: your previous response could not be parsed. " +
	"Respond with a single JSON object matching the schema exactly. " +
	"No prose, no markdown fences, no commentary before or after the JSON."

// Build renders the generation prompt for a validated request. It is a
// pure function: no I/O, no side effects. The request must already have
// passed Validate so free text is sanitized.
func Build(req models.GenerationRequest, kind AttemptKind) string {
	primary := req.WorkoutFocus[0]
	guidance, ok := focusGuidance[strings.ToLower(primary)]
	if !ok {
		guidance = balancedGuidance
	}

	minPerMuscle := int(math.Ceil(float64(req.ExerciseCount) * 0.6))

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert strength and conditioning coach. Design a workout with exactly %d exercises.\n\n", req.ExerciseCount)
	fmt.Fprintf(&b, "Muscle groups to target: %s.\n", strings.Join(req.MuscleFocus, ", "))
	fmt.Fprintf(&b, "Include at least %d exercises per targeted muscle group where the count allows.\n", minPerMuscle)
	fmt.Fprintf(&b, "Training focus (in priority order): %s.\n", strings.Join(req.WorkoutFocus, ", "))
	fmt.Fprintf(&b, "Coaching guidance: %s\n", guidance)

	if len(req.ExcludeExercises) > 0 {
		fmt.Fprintf(&b, "Do not include any of these exercises: %s.\n", strings.Join(req.ExcludeExercises, ", "))
	}
	if req.SpecialInstructions != "" {
		fmt.Fprintf(&b, "Additional instructions from the athlete: %s\n", req.SpecialInstructions)
	}

	b.WriteString(`
Respond with a single JSON object, no other text:
{
  "name": "workout name",
  "exercises": [
    {
      "name": "exercise name",
      "sets": 3,
      "reps": "8-12",
      "rest_time_seconds": 90,
      "rationale": "why this exercise, one sentence",
      "primary_muscles": ["chest"],
      "secondary_muscles": ["triceps"],
      "equipment": "barbell",
      "movement_type": "compound"
    }
  ]
}
"reps" may be a number or a range string. "movement_type" is "compound" or "isolation".`)

	if kind == AttemptRetry {
		b.WriteString(retrySuffix)
	}

	return b.String()
}
