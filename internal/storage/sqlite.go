// Package storage provides SQLite-based persistence for finished runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/snakelab/internal/sim"
)

// Labels for runs not played by a single AI strategy.
const (
	// StrategyHuman labels runs steered from the keyboard.
	StrategyHuman = "human"
	// StrategyMixed labels AI runs whose strategy changed mid-game.
	StrategyMixed = "mixed"
)

// Run statuses beyond the engine's terminal ones.
const (
	StatusStalled   = "stalled"
	StatusAbandoned = "abandoned"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// Run is one finished game.
type Run struct {
	ID         string
	Strategy   string
	Width      int
	Height     int
	Seed       int64
	Score      int
	Length     int
	Ticks      int64
	Status     string
	FinalScore int
	Duration   time.Duration
	CreatedAt  time.Time
}

// RunFromResult converts a headless result into a Run ready to save.
// Games cut off by the tick cap are filed as "stalled".
func RunFromResult(res sim.Result) Run {
	status := string(res.Status)
	if res.Stalled {
		status = StatusStalled
	}
	return Run{
		Strategy:   string(res.Strategy),
		Width:      res.Width,
		Height:     res.Height,
		Seed:       res.Seed,
		Score:      res.Score,
		Length:     res.Length,
		Ticks:      int64(res.Ticks),
		Status:     status,
		FinalScore: res.FinalScore,
		Duration:   res.Duration,
	}
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			strategy TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			length INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			final_score INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(strategy, final_score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run and returns its ID. Runs without an ID get
// a fresh UUID.
func (s *Store) SaveRun(run Run) (string, error) {
	if run.Strategy == "" {
		return "", errors.New("storage: run has no strategy")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs
		 (id, strategy, width, height, seed, score, length, ticks, status, final_score, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Strategy,
		run.Width,
		run.Height,
		run.Seed,
		run.Score,
		run.Length,
		run.Ticks,
		run.Status,
		run.FinalScore,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	return run.ID, nil
}

const runColumns = `id, strategy, width, height, seed, score, length, ticks, status, final_score, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var durationMs int64
	var createdAt any
	if err := row.Scan(
		&r.ID,
		&r.Strategy,
		&r.Width,
		&r.Height,
		&r.Seed,
		&r.Score,
		&r.Length,
		&r.Ticks,
		&r.Status,
		&r.FinalScore,
		&durationMs,
		&createdAt,
	); err != nil {
		return Run{}, err
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// TopRuns retrieves the best runs by final score. An empty strategy matches
// every strategy.
func (s *Store) TopRuns(strategy string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	if strategy == "" {
		return s.queryRuns(
			`SELECT `+runColumns+`
			 FROM runs
			 ORDER BY final_score DESC, score DESC
			 LIMIT ?`,
			limit,
		)
	}
	return s.queryRuns(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE strategy = ?
		 ORDER BY final_score DESC, score DESC
		 LIMIT ?`,
		strategy, limit,
	)
}

// RecentRuns retrieves the latest runs across all strategies.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
}

// RunByID retrieves a run by its ID. It returns nil when no run matches.
func (s *Store) RunByID(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

// HighScore returns the highest score for the given strategy.
// Returns 0 if no runs exist.
func (s *Store) HighScore(strategy string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE strategy = ?",
		strategy,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearRuns deletes all runs for the given strategy, or every run when
// strategy is empty. It returns the number of deleted rows.
func (s *Store) ClearRuns(strategy string) (int64, error) {
	var res sql.Result
	var err error
	if strategy == "" {
		res, err = s.db.Exec("DELETE FROM runs")
	} else {
		res, err = s.db.Exec("DELETE FROM runs WHERE strategy = ?", strategy)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count cleared runs: %w", err)
	}
	return n, nil
}

// StrategyStats contains aggregated statistics for one strategy.
type StrategyStats struct {
	Strategy      string
	Runs          int
	Passed        int
	HighScore     int
	AvgScore      float64
	BestFinal     int
	AvgFinalScore float64
	AvgTicks      float64
	LastPlayed    time.Time
}

// AllStrategyStats retrieves statistics for every strategy with stored runs.
func (s *Store) AllStrategyStats() (map[string]*StrategyStats, error) {
	rows, err := s.db.Query(
		`SELECT strategy, COUNT(*),
		        SUM(CASE WHEN status = 'passed' THEN 1 ELSE 0 END),
		        MAX(score), AVG(score), MAX(final_score), AVG(final_score), AVG(ticks),
		        MAX(created_at)
		 FROM runs
		 GROUP BY strategy`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get strategy stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*StrategyStats)
	for rows.Next() {
		var st StrategyStats
		var lastPlayed any
		if err := rows.Scan(
			&st.Strategy,
			&st.Runs,
			&st.Passed,
			&st.HighScore,
			&st.AvgScore,
			&st.BestFinal,
			&st.AvgFinalScore,
			&st.AvgTicks,
			&lastPlayed,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Strategy] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// GetStrategyStats retrieves aggregated statistics for a single strategy.
// Strategies without runs yield zero stats.
func (s *Store) GetStrategyStats(strategy string) (*StrategyStats, error) {
	all, err := s.AllStrategyStats()
	if err != nil {
		return nil, err
	}
	if st, ok := all[strategy]; ok {
		return st, nil
	}
	return &StrategyStats{Strategy: strategy}, nil
}
