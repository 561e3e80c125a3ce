package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/catalog"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/quota"
)

// Result is the pipeline's answer to the caller, with diagnostics for
// observability. On failure Success is false and Err carries the error
// class; RawResponses are still populated for diagnosis.
type Result struct {
	Success      bool               `json:"success"`
	WorkoutID    uuid.UUID          `json:"workout_id,omitempty"`
	Workout      *models.WorkoutRow `json:"workout,omitempty"`
	Error        string             `json:"error,omitempty"`
	Attempts     int                `json:"attempts"`
	ElapsedMs    int64              `json:"elapsed_ms"`
	Usage        models.TokenUsage  `json:"token_usage"`
	RawResponses []string           `json:"-"`
}

// Service is the generation pipeline entry point: quota gate, model
// orchestration, catalog resolution, persistence. One sequential flow
// per call; only the per-exercise catalog resolutions run concurrently.
type Service struct {
	gate     *quota.Gate
	orch     *Orchestrator
	resolver *catalog.Resolver
	coord    *Coordinator
	log      *slog.Logger
}

// NewService creates a Service.
func NewService(gate *quota.Gate, orch *Orchestrator, resolver *catalog.Resolver, coord *Coordinator, log *slog.Logger) *Service {
	return &Service{gate: gate, orch: orch, resolver: resolver, coord: coord, log: log}
}

// Generate runs the full pipeline for one request. The whole pipeline
// is safe to retry end-to-end: no step leaves a user-visible side
// effect behind on failure.
func (s *Service) Generate(ctx context.Context, principal models.Principal, req models.GenerationRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if !s.gate.CheckAndConsume(ctx, principal) {
		return nil, ErrQuotaExceeded
	}

	outcome, err := s.orch.Run(ctx, req)
	if err != nil {
		result := &Result{
			Attempts:     outcome.Attempts,
			ElapsedMs:    outcome.Elapsed.Milliseconds(),
			Usage:        outcome.Usage,
			RawResponses: outcome.RawResponses,
			Error:        err.Error(),
		}
		return result, err
	}

	resolutions, err := s.resolveAll(ctx, outcome.Plan.Exercises)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	row, err := s.coord.Persist(ctx, principal, req, outcome, resolutions)
	if err != nil {
		return nil, err
	}

	s.log.Info("workout generated",
		"workout_id", row.ID,
		"user_id", principal.UserID,
		"exercises", len(outcome.Plan.Exercises),
		"attempts", outcome.Attempts,
		"elapsed_ms", outcome.Elapsed.Milliseconds(),
	)

	return &Result{
		Success:      true,
		WorkoutID:    row.ID,
		Workout:      row,
		Attempts:     outcome.Attempts,
		ElapsedMs:    outcome.Elapsed.Milliseconds(),
		Usage:        outcome.Usage,
		RawResponses: outcome.RawResponses,
	}, nil
}

// resolveAll resolves every proposed exercise against the catalog
// concurrently. Results stay index-aligned with the input so order
// indexes survive the concurrency.
func (s *Service) resolveAll(ctx context.Context, exercises []models.ProposedExercise) ([]catalog.Resolution, error) {
	resolutions := make([]catalog.Resolution, len(exercises))
	errs := make([]error, len(exercises))

	var wg sync.WaitGroup
	for i, ex := range exercises {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolutions[i], errs[i] = s.resolver.Resolve(ctx, ex)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("resolving exercise %d: %w", i, err)
		}
	}
	return resolutions, nil
}
