package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/repforge/internal/client"
	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepForge server URL (e.g. https://repforge.tail1234.ts.net)")
	apiKey := flag.String("api-key", "", "API key, if the server requires one")
	muscles := flag.String("muscles", "", "comma-separated muscle groups (e.g. 'chest,triceps')")
	focus := flag.String("focus", "hypertrophy", "comma-separated training goals")
	count := flag.Int("count", 5, "number of exercises")
	instructions := flag.String("instructions", "", "special instructions for the plan")
	exclude := flag.String("exclude", "", "comma-separated exercises to avoid")
	history := flag.Int("history", 0, "print the last N local generations and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repforge-gen", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Open local history database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	hist, err := client.OpenHistoryDB(filepath.Join(homeDir, ".repforge"))
	if err != nil {
		log.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer hist.Close()

	if *history > 0 {
		printHistory(hist, *history)
		return
	}

	if *muscles == "" {
		fmt.Fprintf(os.Stderr, "Usage: repforge-gen -server <URL> -muscles <groups> [-focus goals] [-count N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Error: -server is required\n")
		os.Exit(1)
	}

	req := models.GenerationRequest{
		MuscleFocus:         splitArg(*muscles),
		WorkoutFocus:        splitArg(*focus),
		ExerciseCount:       *count,
		SpecialInstructions: *instructions,
		ExcludeExercises:    splitArg(*exclude),
	}

	c := client.NewClient(*serverURL, *apiKey)
	result, err := c.Generate(req)

	entry := client.HistoryEntry{
		MuscleFocus:   req.MuscleFocus,
		WorkoutFocus:  req.WorkoutFocus,
		ExerciseCount: req.ExerciseCount,
	}
	if result != nil {
		entry.Success = result.Success
		entry.Attempts = result.Attempts
		entry.ElapsedMs = result.ElapsedMs
		entry.Error = result.Error
		if result.Success {
			entry.WorkoutID = result.WorkoutID.String()
		}
	} else if err != nil {
		entry.Error = err.Error()
	}
	if recErr := hist.Record(entry); recErr != nil {
		log.Warn("failed to record history", "error", recErr)
	}

	if err != nil {
		log.Error("generation failed", "error", err)
		os.Exit(1)
	}

	printResult(result)
}

func splitArg(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printResult(result *generate.Result) {
	fmt.Println()
	fmt.Println("=== Workout Generated ===")
	fmt.Printf("  ID:        %s\n", result.WorkoutID)
	fmt.Printf("  Attempts:  %d\n", result.Attempts)
	fmt.Printf("  Elapsed:   %dms\n", result.ElapsedMs)
	fmt.Printf("  Tokens:    %d prompt / %d completion\n", result.Usage.PromptTokens, result.Usage.CompletionTokens)

	w := result.Workout
	if w == nil {
		return
	}
	fmt.Println()
	fmt.Printf("  %s (~%d min)\n", w.Name, w.TotalDurationMinutes)
	fmt.Printf("  Muscles:   %s\n", w.MuscleGroupsTargeted)
	fmt.Printf("  Equipment: %s\n", w.EquipmentNeeded)
	fmt.Println()
}

func printHistory(hist *client.HistoryDB, n int) {
	entries, err := hist.Recent(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No local generation history.")
		return
	}

	fmt.Println("=== Recent Generations ===")
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.Error
		}
		fmt.Printf("  %s  %s / %s  x%d  (%d attempts, %dms)  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"),
			strings.Join(e.MuscleFocus, "+"),
			strings.Join(e.WorkoutFocus, "+"),
			e.ExerciseCount,
			e.Attempts,
			e.ElapsedMs,
			status,
		)
	}
}
