package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestGenerationRequestValidate verifies the range checks the pipeline
// relies on before spending a model call.
func TestGenerationRequestValidate(t *testing.T) {
	valid := func() GenerationRequest {
		return GenerationRequest{
			MuscleFocus:   []string{"chest"},
			WorkoutFocus:  []string{"hypertrophy"},
			ExerciseCount: 5,
		}
	}

	if req := valid(); req.Validate() != nil {
		t.Fatalf("valid request rejected: %v", req.Validate())
	}

	cases := []struct {
		name   string
		mutate func(*GenerationRequest)
	}{
		{"no muscles", func(r *GenerationRequest) { r.MuscleFocus = nil }},
		{"too many muscles", func(r *GenerationRequest) { r.MuscleFocus = []string{"a", "b", "c", "d", "e"} }},
		{"no focus", func(r *GenerationRequest) { r.WorkoutFocus = nil }},
		{"too many focuses", func(r *GenerationRequest) { r.WorkoutFocus = []string{"a", "b", "c", "d"} }},
		{"count zero", func(r *GenerationRequest) { r.ExerciseCount = 0 }},
		{"count too high", func(r *GenerationRequest) { r.ExerciseCount = 11 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			if req.Validate() == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestSanitizeInstructions verifies control characters are stripped,
// whitespace collapsed, and the length cap applied on rune boundaries.
func TestSanitizeInstructions(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"no jumping", "no jumping"},
		{"  lots\t of \n whitespace ", "lots of whitespace"},
		{"line\x00break\x1battack", "line break attack"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeInstructions(tc.in); got != tc.want {
			t.Errorf("SanitizeInstructions(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := strings.Repeat("日", 200)
	got := SanitizeInstructions(long)
	if runes := []rune(got); len(runes) != MaxSpecialInstructions {
		t.Errorf("truncated length = %d runes, want %d", len(runes), MaxSpecialInstructions)
	}
}

// TestFlexRepsUnmarshal verifies both shapes the model may answer with.
func TestFlexRepsUnmarshal(t *testing.T) {
	var f FlexReps
	if err := json.Unmarshal([]byte(`12`), &f); err != nil {
		t.Fatalf("number: %v", err)
	}
	if f.Count != 12 || f.String() != "12" {
		t.Errorf("number reps = %+v", f)
	}

	if err := json.Unmarshal([]byte(`"8-12"`), &f); err != nil {
		t.Fatalf("string: %v", err)
	}
	if f.Text != "8-12" || f.String() != "8-12" {
		t.Errorf("text reps = %+v", f)
	}

	if err := json.Unmarshal([]byte(`[8,12]`), &f); err == nil {
		t.Error("array should be rejected")
	}
}

// TestFlexRepsValid verifies the validity rule used by the response
// validator.
func TestFlexRepsValid(t *testing.T) {
	if (FlexReps{}).Valid() {
		t.Error("zero value should be invalid")
	}
	if !(FlexReps{Count: 8}).Valid() {
		t.Error("positive count should be valid")
	}
	if !(FlexReps{Text: "to failure"}).Valid() {
		t.Error("text should be valid")
	}
}

// TestValidStatus covers the workout status vocabulary.
func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusNew, StatusTarget, StatusMissed, StatusCompleted} {
		if !ValidStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	if ValidStatus("archived") {
		t.Error("unknown status should be invalid")
	}
}
