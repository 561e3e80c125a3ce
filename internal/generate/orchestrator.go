package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/repforge/internal/llm"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/prompt"
)

// ModelOutcome carries everything a model conversation produced,
// including diagnostics that get persisted alongside the workout.
type ModelOutcome struct {
	Plan         *models.GeneratedPlan
	Attempts     int
	RawResponses []string
	Usage        models.TokenUsage
	Warnings     []string
	Elapsed      time.Duration
}

// rawLogBytes caps how much of a rejected model response is logged.
const rawLogBytes = 2000

// Orchestrator drives the model conversation: first attempt, then
// exactly one retry with a stricter prompt when the output is
// parseable-but-invalid. Transport failures are surfaced immediately —
// retries are reserved for bad output, not bad networks.
type Orchestrator struct {
	client      llm.Client
	temperature float64
	log         *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(client llm.Client, temperature float64, log *slog.Logger) *Orchestrator {
	return &Orchestrator{client: client, temperature: temperature, log: log}
}

// Run executes the generation conversation for a validated request. It
// persists nothing; the returned outcome carries diagnostics even on
// failure so both raw responses survive for later inspection.
func (o *Orchestrator) Run(ctx context.Context, req models.GenerationRequest) (*ModelOutcome, error) {
	outcome := &ModelOutcome{}
	start := time.Now()
	defer func() { outcome.Elapsed = time.Since(start) }()

	maxTokens := llm.MaxTokensFor(req.ExerciseCount)

	for _, kind := range []prompt.AttemptKind{prompt.AttemptFirst, prompt.AttemptRetry} {
		outcome.Attempts++

		completion, err := o.client.Complete(ctx, llm.CompletionRequest{
			Prompt:      prompt.Build(req, kind),
			Temperature: o.temperature,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrModelTransport, err)
		}

		outcome.RawResponses = append(outcome.RawResponses, completion.Text)
		outcome.Usage.Add(completion.Usage)

		plan, warnings, err := Validate(completion.Text, req.ExerciseCount)
		if err != nil {
			o.log.Warn("model output failed validation",
				"attempt", outcome.Attempts, "error", err)
			continue
		}

		for _, w := range warnings {
			o.log.Warn("generation warning", "warning", w)
		}
		outcome.Plan = plan
		outcome.Warnings = warnings
		return outcome, nil
	}

	// Raw responses are excluded from the JSON result, so the log is
	// where remote callers can still find what the model said.
	for i, raw := range outcome.RawResponses {
		o.log.Warn("rejected model response",
			"attempt", i+1, "raw", truncate(raw, rawLogBytes))
	}

	return outcome, fmt.Errorf("%w after %d attempts", ErrModelOutput, outcome.Attempts)
}
