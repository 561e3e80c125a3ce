package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meltforce/repforge/internal/models"
)

// Validate checks a raw model response against the expected plan shape.
// Validation is per-field: a response may mix minimal and enhanced
// exercise shapes. Hard failures (not JSON, non-object top level, empty
// exercise list, missing required fields) return an error and trigger
// the orchestrator's retry. Soft issues, including any drift of the
// exercise count from the requested count, come back as warnings; a
// usable workout beats forcing another model round-trip.
func Validate(raw string, requestedCount int) (*models.GeneratedPlan, []string, error) {
	cleaned := stripFences(raw)
	if !strings.HasPrefix(strings.TrimSpace(cleaned), "{") {
		return nil, nil, fmt.Errorf("top-level response is not a JSON object")
	}

	var plan models.GeneratedPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, nil, fmt.Errorf("parsing response: %w", err)
	}

	if len(plan.Exercises) == 0 {
		return nil, nil, fmt.Errorf("response contains no exercises")
	}

	var warnings []string
	for i := range plan.Exercises {
		ex := &plan.Exercises[i]
		if strings.TrimSpace(ex.Name) == "" {
			return nil, nil, fmt.Errorf("exercise %d: missing name", i)
		}
		if ex.Sets < 1 {
			return nil, nil, fmt.Errorf("exercise %d (%s): sets must be positive, got %d", i, ex.Name, ex.Sets)
		}
		if !ex.Reps.Valid() {
			return nil, nil, fmt.Errorf("exercise %d (%s): missing reps", i, ex.Name)
		}
		if ex.RestTimeSeconds < 0 {
			return nil, nil, fmt.Errorf("exercise %d (%s): rest time must be non-negative, got %d", i, ex.Name, ex.RestTimeSeconds)
		}
		if mt := strings.ToLower(strings.TrimSpace(ex.MovementType)); mt != "" && mt != "compound" && mt != "isolation" {
			warnings = append(warnings, fmt.Sprintf("exercise %d (%s): unknown movement type %q dropped", i, ex.Name, ex.MovementType))
			ex.MovementType = ""
		} else {
			ex.MovementType = strings.ToLower(strings.TrimSpace(ex.MovementType))
		}
	}

	if len(plan.Exercises) != requestedCount {
		warnings = append(warnings, fmt.Sprintf("model returned %d exercises, requested %d", len(plan.Exercises), requestedCount))
	}

	return &plan, warnings, nil
}

// stripFences removes a markdown code fence wrapper if the model added
// one despite the JSON-only instruction.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
