package generate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/catalog"
	"github.com/meltforce/repforge/internal/models"
)

// fakePersistStore records coordinator calls in memory. Failures are
// injected per step to drive the rollback paths.
type fakePersistStore struct {
	mu       sync.Mutex
	workouts map[uuid.UUID]models.WorkoutRow
	links    map[uuid.UUID][]models.WorkoutExerciseRow

	failWorkout bool
	failLinks   bool
	failSummary bool
	summaryRan  bool
}

func newFakePersistStore() *fakePersistStore {
	return &fakePersistStore{
		workouts: make(map[uuid.UUID]models.WorkoutRow),
		links:    make(map[uuid.UUID][]models.WorkoutExerciseRow),
	}
}

func (f *fakePersistStore) InsertWorkout(_ context.Context, row models.WorkoutRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWorkout {
		return errors.New("workout insert failed")
	}
	f.workouts[row.ID] = row
	return nil
}

func (f *fakePersistStore) InsertWorkoutExercises(_ context.Context, rows []models.WorkoutExerciseRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLinks {
		return errors.New("link insert failed")
	}
	if len(rows) > 0 {
		f.links[rows[0].WorkoutID] = rows
	}
	return nil
}

func (f *fakePersistStore) DeleteWorkout(_ context.Context, workoutID uuid.UUID, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.workouts, workoutID)
	delete(f.links, workoutID)
	return nil
}

func (f *fakePersistStore) UpdateWorkoutSummary(_ context.Context, workoutID uuid.UUID, durationMinutes int, muscles, joints, equipment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryRan = true
	if f.failSummary {
		return errors.New("summary update failed")
	}
	w, ok := f.workouts[workoutID]
	if !ok {
		return errors.New("workout not found")
	}
	w.TotalDurationMinutes = durationMinutes
	w.MuscleGroupsTargeted = muscles
	w.JointGroupsAffected = joints
	w.EquipmentNeeded = equipment
	f.workouts[workoutID] = w
	return nil
}

func resolutionsFor(plan *models.GeneratedPlan) []catalog.Resolution {
	out := make([]catalog.Resolution, len(plan.Exercises))
	for i, ex := range plan.Exercises {
		out[i] = catalog.Resolution{
			Exercise: models.ExerciseRow{
				ID:             uuid.New(),
				Name:           ex.Name,
				SearchKey:      catalog.SearchKey(ex.Name),
				PrimaryMuscles: ex.PrimaryMuscles,
				Equipment:      ex.Equipment,
			},
		}
	}
	return out
}

func planOf(names ...string) *models.GeneratedPlan {
	plan := &models.GeneratedPlan{Name: "Test Plan"}
	for _, n := range names {
		plan.Exercises = append(plan.Exercises, models.ProposedExercise{
			Name:            n,
			Sets:            3,
			Reps:            models.FlexReps{Text: "8-12"},
			RestTimeSeconds: 60,
			Rationale:       "because",
			PrimaryMuscles:  []string{"chest"},
			Equipment:       "barbell",
		})
	}
	return plan
}

func outcomeOf(plan *models.GeneratedPlan) *ModelOutcome {
	return &ModelOutcome{
		Plan:         plan,
		Attempts:     1,
		RawResponses: []string{"{}"},
		Usage:        models.TokenUsage{PromptTokens: 100, CompletionTokens: 60},
		Elapsed:      1200 * time.Millisecond,
	}
}

var testPrincipal = models.Principal{UserID: 3, Login: "bob@example.com"}

// TestPersistSuccess verifies the happy path: workout row plus linked
// exercises with contiguous order indexes, and diagnostics on the row.
func TestPersistSuccess(t *testing.T) {
	store := newFakePersistStore()
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press", "Incline Press", "Cable Fly", "Dips")

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), resolutionsFor(plan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.workouts) != 1 {
		t.Fatalf("workouts = %d, want 1", len(store.workouts))
	}
	links := store.links[row.ID]
	if len(links) != 4 {
		t.Fatalf("links = %d, want 4", len(links))
	}
	for i, link := range links {
		if link.OrderIndex != i {
			t.Errorf("link %d order index = %d", i, link.OrderIndex)
		}
		if link.ExerciseID == nil {
			t.Errorf("link %d missing exercise reference", i)
		}
		if link.Reps != "8-12" {
			t.Errorf("link %d reps = %q", i, link.Reps)
		}
	}
	if row.Attempts != 1 || row.PromptTokens != 100 || row.GenerationMs != 1200 {
		t.Errorf("diagnostics not carried: %+v", row)
	}
	if row.Status != models.StatusNew {
		t.Errorf("status = %q, want new", row.Status)
	}
}

// TestPersistOrderPreserved verifies order indexes reflect the plan's
// exercise order even when resolutions arrive shuffled by concurrency.
func TestPersistOrderPreserved(t *testing.T) {
	store := newFakePersistStore()
	c := NewCoordinator(store, slog.Default())
	plan := planOf("A", "B", "C")
	res := resolutionsFor(plan)

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	links := store.links[row.ID]
	for i, want := range []uuid.UUID{res[0].Exercise.ID, res[1].Exercise.ID, res[2].Exercise.ID} {
		if *links[i].ExerciseID != want {
			t.Errorf("link %d references %s, want %s", i, links[i].ExerciseID, want)
		}
	}
}

// TestPersistRollbackOnLinkFailure verifies the compensating delete:
// after a link batch failure no workout row remains readable.
func TestPersistRollbackOnLinkFailure(t *testing.T) {
	store := newFakePersistStore()
	store.failLinks = true
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press")

	_, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), resolutionsFor(plan))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if len(store.workouts) != 0 {
		t.Error("workout row must be rolled back after link failure")
	}
}

// TestPersistWorkoutInsertFailure verifies failure before linking
// aborts without anything to roll back.
func TestPersistWorkoutInsertFailure(t *testing.T) {
	store := newFakePersistStore()
	store.failWorkout = true
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press")

	_, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), resolutionsFor(plan))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if len(store.workouts) != 0 || len(store.links) != 0 {
		t.Error("nothing should be persisted after workout insert failure")
	}
}

// TestPersistSummaryFailureNonFatal verifies summary recompute failure
// leaves the workout persisted and the call successful.
func TestPersistSummaryFailureNonFatal(t *testing.T) {
	store := newFakePersistStore()
	store.failSummary = true
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press", "Dips")

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), resolutionsFor(plan))
	if err != nil {
		t.Fatalf("summary failure must be non-fatal: %v", err)
	}
	if !store.summaryRan {
		t.Error("summary recompute should have been attempted")
	}
	if _, ok := store.workouts[row.ID]; !ok {
		t.Error("workout must remain persisted")
	}
}

// TestPersistPlaceholderLink verifies placeholder resolutions produce
// link rows without a catalog reference.
func TestPersistPlaceholderLink(t *testing.T) {
	store := newFakePersistStore()
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press", "Mystery Move")
	res := resolutionsFor(plan)
	res[1].Placeholder = true

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	links := store.links[row.ID]
	if links[0].ExerciseID == nil {
		t.Error("resolved exercise should keep its catalog reference")
	}
	if links[1].ExerciseID != nil {
		t.Error("placeholder link must not reference the catalog")
	}
	if links[1].OrderIndex != 1 {
		t.Error("placeholder must not disturb order indexes")
	}
}

// TestPersistRationaleTruncated verifies the 1000-char rationale cap.
func TestPersistRationaleTruncated(t *testing.T) {
	store := newFakePersistStore()
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press")
	long := make([]byte, 1500)
	for i := range long {
		long[i] = 'x'
	}
	plan.Exercises[0].Rationale = string(long)

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), resolutionsFor(plan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(store.links[row.ID][0].Rationale); got != 1000 {
		t.Errorf("rationale length = %d, want 1000", got)
	}
}

// TestPersistRationaleTruncatedMultiByte: the cap must not split a
// multi-byte rune; Postgres rejects invalid UTF-8.
func TestPersistRationaleTruncatedMultiByte(t *testing.T) {
	store := newFakePersistStore()
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press")
	// The 1000th byte lands inside the two-byte "é".
	plan.Exercises[0].Rationale = strings.Repeat("x", 999) + strings.Repeat("é", 300)

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), resolutionsFor(plan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.links[row.ID][0].Rationale
	if !utf8.ValidString(got) {
		t.Errorf("truncated rationale is not valid UTF-8: last bytes %q", got[len(got)-3:])
	}
	if len(got) > 1000 {
		t.Errorf("rationale length = %d, want <= 1000", len(got))
	}
	if got != strings.Repeat("x", 999) {
		t.Errorf("rationale = %q..., want the 999 x's with the split rune dropped", got[:20])
	}
}

// TestEstimateDuration verifies the duration formula:
// sets×averageSetSeconds + Σ(sets×rest), rounded up to minutes.
func TestEstimateDuration(t *testing.T) {
	exercises := []models.ProposedExercise{
		{Sets: 3, RestTimeSeconds: 60},  // 3*45 + 3*60 = 315s
		{Sets: 4, RestTimeSeconds: 90},  // 4*45 + 4*90 = 540s
	}
	// 855s -> 15 minutes
	if got := estimateDurationMinutes(exercises); got != 15 {
		t.Errorf("duration = %d, want 15", got)
	}
}

// TestDenormalizedFieldsFromCatalog verifies display fields come from
// the resolved catalog rows, not the raw request.
func TestDenormalizedFieldsFromCatalog(t *testing.T) {
	store := newFakePersistStore()
	c := NewCoordinator(store, slog.Default())
	plan := planOf("Bench Press", "Row")
	res := resolutionsFor(plan)
	res[0].Exercise.PrimaryMuscles = []string{"chest"}
	res[0].Exercise.Equipment = "barbell"
	res[1].Exercise.PrimaryMuscles = []string{"back"}
	res[1].Exercise.Equipment = "cable"

	row, err := c.Persist(context.Background(), testPrincipal, testRequest(), outcomeOf(plan), res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.MuscleGroupsTargeted != "chest, back" {
		t.Errorf("muscles = %q, want %q", row.MuscleGroupsTargeted, "chest, back")
	}
	if row.EquipmentNeeded != "barbell, cable" {
		t.Errorf("equipment = %q, want %q", row.EquipmentNeeded, "barbell, cable")
	}
	if row.JointGroupsAffected == "" {
		t.Error("joint groups should derive from targeted muscles")
	}
}
