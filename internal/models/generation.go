package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// MaxSpecialInstructions is the length cap applied to user-supplied
// special instructions before they reach the prompt builder.
const MaxSpecialInstructions = 140

// GenerationRequest is the client's request to generate a workout.
type GenerationRequest struct {
	MuscleFocus         []string `json:"muscle_focus"`
	WorkoutFocus        []string `json:"workout_focus"`
	ExerciseCount       int      `json:"exercise_count"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
	ExcludeExercises    []string `json:"exclude_exercises,omitempty"`
}

// Validate checks ranges and sanitizes free-text fields in place.
// It must pass before any model call is made.
func (r *GenerationRequest) Validate() error {
	if len(r.MuscleFocus) == 0 {
		return fmt.Errorf("at least one muscle group is required")
	}
	if len(r.MuscleFocus) > 4 {
		return fmt.Errorf("at most 4 muscle groups are allowed, got %d", len(r.MuscleFocus))
	}
	if len(r.WorkoutFocus) == 0 {
		return fmt.Errorf("at least one workout focus is required")
	}
	if len(r.WorkoutFocus) > 3 {
		return fmt.Errorf("at most 3 workout focuses are allowed, got %d", len(r.WorkoutFocus))
	}
	if r.ExerciseCount < 1 || r.ExerciseCount > 10 {
		return fmt.Errorf("exercise count must be between 1 and 10, got %d", r.ExerciseCount)
	}
	r.SpecialInstructions = SanitizeInstructions(r.SpecialInstructions)
	return nil
}

// SanitizeInstructions strips control characters, collapses whitespace,
// and enforces the length cap. The prompt builder relies on this having
// run so user text cannot break the prompt's structural delimiters.
func SanitizeInstructions(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(out); len(runes) > MaxSpecialInstructions {
		out = string(runes[:MaxSpecialInstructions])
	}
	return out
}

// FlexReps holds a rep prescription that may be a positive integer or
// free text ("8-12", "to failure"). The model is allowed to answer
// either; the string form is preserved verbatim for storage.
type FlexReps struct {
	Count int    // set when the model answered with a number
	Text  string // set when the model answered with text
}

// UnmarshalJSON accepts a JSON number or string.
func (f *FlexReps) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Count = n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Text = strings.TrimSpace(s)
		return nil
	}
	return fmt.Errorf("reps must be a number or string, got %s", data)
}

// MarshalJSON emits the original form.
func (f FlexReps) MarshalJSON() ([]byte, error) {
	if f.Text != "" {
		return json.Marshal(f.Text)
	}
	return json.Marshal(f.Count)
}

// String returns the storage form of the prescription.
func (f FlexReps) String() string {
	if f.Text != "" {
		return f.Text
	}
	return fmt.Sprintf("%d", f.Count)
}

// Valid reports whether the prescription is usable: a positive count or
// non-empty text.
func (f FlexReps) Valid() bool {
	return f.Count > 0 || f.Text != ""
}

// ProposedExercise is one exercise as proposed by the model. The minimal
// shape carries name/sets/reps/rest/rationale; the enhanced shape adds
// muscle, equipment, and movement-type detail. A single response may mix
// both shapes, so every enhanced field is optional.
type ProposedExercise struct {
	Name             string   `json:"name"`
	Sets             int      `json:"sets"`
	Reps             FlexReps `json:"reps"`
	RestTimeSeconds  int      `json:"rest_time_seconds"`
	Rationale        string   `json:"rationale,omitempty"`
	PrimaryMuscles   []string `json:"primary_muscles,omitempty"`
	SecondaryMuscles []string `json:"secondary_muscles,omitempty"`
	Equipment        string   `json:"equipment,omitempty"`
	MovementType     string   `json:"movement_type,omitempty"`
}

// GeneratedPlan is a validated model response.
type GeneratedPlan struct {
	Name      string             `json:"name,omitempty"`
	Exercises []ProposedExercise `json:"exercises"`
}

// TokenUsage is the provider's token accounting for one or more calls.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Add accumulates usage across attempts.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
}
