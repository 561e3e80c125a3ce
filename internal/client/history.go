package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// HistoryDB keeps a local log of generation requests and their
// outcomes, so past parameters can be reviewed or replayed offline.
type HistoryDB struct {
	db *sql.DB
}

// HistoryEntry is one recorded generation attempt.
type HistoryEntry struct {
	ID            int64
	WorkoutID     string
	MuscleFocus   []string
	WorkoutFocus  []string
	ExerciseCount int
	Success       bool
	Error         string
	Attempts      int
	ElapsedMs     int64
	CreatedAt     time.Time
}

// OpenHistoryDB opens (or creates) the SQLite history database at
// dir/history.db.
func OpenHistoryDB(dir string) (*HistoryDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_id     TEXT,
		muscle_focus   TEXT NOT NULL,
		workout_focus  TEXT NOT NULL,
		exercise_count INTEGER NOT NULL,
		success        INTEGER NOT NULL,
		error          TEXT,
		attempts       INTEGER NOT NULL,
		elapsed_ms     INTEGER NOT NULL,
		created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &HistoryDB{db: db}, nil
}

// Record appends one generation outcome.
func (h *HistoryDB) Record(e HistoryEntry) error {
	_, err := h.db.Exec(
		`INSERT INTO generations (workout_id, muscle_focus, workout_focus, exercise_count, success, error, attempts, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.WorkoutID,
		strings.Join(e.MuscleFocus, ","),
		strings.Join(e.WorkoutFocus, ","),
		e.ExerciseCount,
		e.Success,
		e.Error,
		e.Attempts,
		e.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	return nil
}

// Recent returns the last n entries, newest first.
func (h *HistoryDB) Recent(n int) ([]HistoryEntry, error) {
	rows, err := h.db.Query(
		`SELECT id, workout_id, muscle_focus, workout_focus, exercise_count, success, error, attempts, elapsed_ms, created_at
		 FROM generations ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var muscles, focuses string
		if err := rows.Scan(&e.ID, &e.WorkoutID, &muscles, &focuses, &e.ExerciseCount,
			&e.Success, &e.Error, &e.Attempts, &e.ElapsedMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.MuscleFocus = splitCSV(muscles)
		e.WorkoutFocus = splitCSV(focuses)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the history database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
