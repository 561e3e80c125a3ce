package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	principal := principalFromContext(r)
	result, err := s.gen.Generate(r.Context(), principal, req)
	if err != nil {
		status := generateErrorStatus(err)
		if result != nil {
			// Model/persistence failures still carry diagnostics.
			writeJSON(w, status, result)
			return
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// generateErrorStatus maps pipeline error classes onto HTTP statuses.
func generateErrorStatus(err error) int {
	switch {
	case errors.Is(err, generate.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, generate.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		// Model transport, model output, persistence: server-side.
		return http.StatusInternalServerError
	}
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r)

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), principal.UserID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	principal := principalFromContext(r)
	detail, err := s.db.GetWorkout(r.Context(), workoutID, principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// workoutUpdate is the PATCH body: every field optional, absent fields
// left untouched.
type workoutUpdate struct {
	Status     *string    `json:"status"`
	Rating     *int       `json:"rating"`
	TargetDate *time.Time `json:"target_date"`
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	var upd workoutUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if upd.Status == nil && upd.Rating == nil && upd.TargetDate == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nothing to update"})
		return
	}
	if upd.Status != nil && !models.ValidStatus(*upd.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status: " + *upd.Status})
		return
	}
	if upd.Rating != nil && (*upd.Rating < 1 || *upd.Rating > 5) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be 1-5"})
		return
	}

	principal := principalFromContext(r)
	if err := s.db.UpdateWorkoutStatus(r.Context(), workoutID, principal.UserID, upd.Status, upd.Rating, upd.TargetDate); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	principal := principalFromContext(r)
	if err := s.db.DeleteWorkout(r.Context(), workoutID, principal.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r)
	stats, err := s.db.GetDataStats(r.Context(), principal.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principalFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
