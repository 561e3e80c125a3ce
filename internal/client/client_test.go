package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
)

// TestGenerateSuccess verifies the request body and result decoding.
func TestGenerateSuccess(t *testing.T) {
	workoutID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workouts/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("X-API-Key = %q, want secret", r.Header.Get("X-API-Key"))
		}
		var req models.GenerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.MuscleFocus) != 2 {
			t.Errorf("muscle focus = %v", req.MuscleFocus)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "workout_id": workoutID, "attempts": 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	result, err := c.Generate(models.GenerationRequest{
		MuscleFocus:   []string{"chest", "triceps"},
		WorkoutFocus:  []string{"hypertrophy"},
		ExerciseCount: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.WorkoutID != workoutID {
		t.Errorf("result = %+v", result)
	}
}

// TestGenerateFailureKeepsDiagnostics verifies a non-200 reply carrying
// a failed result body surfaces both the error and the diagnostics.
func TestGenerateFailureKeepsDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false, "attempts": 2, "error": "no parseable response",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	result, err := c.Generate(models.GenerationRequest{MuscleFocus: []string{"back"}, WorkoutFocus: []string{"strength"}, ExerciseCount: 3})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if result == nil || result.Attempts != 2 {
		t.Errorf("diagnostics not preserved: %+v", result)
	}
}

// TestListWorkouts verifies the limit parameter and decoding.
func TestListWorkouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "10" {
			t.Errorf("limit = %q, want 10", r.URL.Query().Get("limit"))
		}
		json.NewEncoder(w).Encode([]models.WorkoutRow{{Name: "Push Day"}, {Name: "Leg Day"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	workouts, err := c.ListWorkouts(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workouts) != 2 {
		t.Errorf("workouts = %d, want 2", len(workouts))
	}
}
