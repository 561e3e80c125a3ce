package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

// Store is the catalog persistence surface the resolver needs.
// *storage.DB satisfies it.
type Store interface {
	GetExerciseBySearchKey(ctx context.Context, searchKey string) (*models.ExerciseRow, error)
	InsertExercise(ctx context.Context, row models.ExerciseRow) error
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Resolution is the outcome of resolving one proposed exercise against
// the catalog. Placeholder is set when the catalog could not be written
// and a non-persisted record was synthesized so generation can continue.
type Resolution struct {
	Exercise    models.ExerciseRow
	Created     bool
	Placeholder bool
}

// Resolver deduplicates model-proposed exercise names against the
// shared catalog, creating canonical entries when no match exists.
type Resolver struct {
	store Store
	log   *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(store Store, log *slog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolve maps a proposed exercise to a catalog row, inserting one if
// needed. A uniqueness conflict means a concurrent resolver won the
// insert race; the winner's row is returned rather than an error. Any
// other insert failure degrades to a placeholder so a catalog outage
// cannot sink the whole generation.
func (r *Resolver) Resolve(ctx context.Context, proposed models.ProposedExercise) (Resolution, error) {
	key := SearchKey(proposed.Name)
	if key == "" {
		return Resolution{}, fmt.Errorf("exercise name %q normalizes to empty search key", proposed.Name)
	}

	existing, err := r.store.GetExerciseBySearchKey(ctx, key)
	if err == nil {
		return Resolution{Exercise: *existing}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		// A broken lookup gets the same availability treatment as a
		// broken insert: fall through and let the insert attempt decide.
		r.log.Warn("catalog lookup failed", "exercise", proposed.Name, "error", err)
	}

	row := models.ExerciseRow{
		ID:               uuid.New(),
		Name:             proposed.Name,
		SearchKey:        key,
		PrimaryMuscles:   proposed.PrimaryMuscles,
		SecondaryMuscles: proposed.SecondaryMuscles,
		Equipment:        InferEquipment(proposed.Name, proposed.Equipment),
	}
	if row.PrimaryMuscles == nil {
		row.PrimaryMuscles = []string{}
	}
	if row.SecondaryMuscles == nil {
		row.SecondaryMuscles = []string{}
	}

	err = r.store.InsertExercise(ctx, row)
	if err == nil {
		return Resolution{Exercise: row, Created: true}, nil
	}

	if errors.Is(err, storage.ErrDuplicate) {
		// Lost the race to a concurrent resolver; the winner's row is
		// authoritative.
		winner, qerr := r.store.GetExerciseBySearchKey(ctx, key)
		if qerr != nil {
			return Resolution{}, fmt.Errorf("re-querying exercise %q after conflict: %w", key, qerr)
		}
		return Resolution{Exercise: *winner}, nil
	}

	r.log.Warn("catalog insert failed, using placeholder",
		"exercise", proposed.Name, "error", err)
	return Resolution{Exercise: row, Placeholder: true}, nil
}
