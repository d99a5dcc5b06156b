package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/refine-labs/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS eval_runs (
		run_id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS eval_results (
		run_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		task_type TEXT NOT NULL,
		baseline_score REAL NOT NULL,
		refined_score REAL NOT NULL,
		detail TEXT,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (run_id, task_id)
	);
	CREATE INDEX IF NOT EXISTS idx_eval_results_run ON eval_results(run_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateRun registers a new evaluation run.
func (s *SQLiteStore) CreateRun(ctx context.Context, runID, model string) error {
	query := `INSERT INTO eval_runs (run_id, model, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, runID, model, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert eval run: %w", err)
	}
	return nil
}

// SaveResult stores one task result for a run.
func (s *SQLiteStore) SaveResult(ctx context.Context, runID string, res domain.EvalResult) error {
	query := `
		INSERT INTO eval_results (run_id, task_id, task_type, baseline_score, refined_score, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, task_id) DO UPDATE SET
			task_type = excluded.task_type,
			baseline_score = excluded.baseline_score,
			refined_score = excluded.refined_score,
			detail = excluded.detail`

	_, err := s.db.ExecContext(ctx, query,
		runID, res.TaskID, string(res.TaskType),
		res.BaselineScore, res.RefinedScore, res.Detail, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert eval result: %w", err)
	}
	return nil
}

// GetReport reassembles the report for a run. A missing run returns
// (nil, nil).
func (s *SQLiteStore) GetReport(ctx context.Context, runID string) (*domain.Report, error) {
	var model string
	row := s.db.QueryRowContext(ctx, `SELECT model FROM eval_runs WHERE run_id = ?`, runID)
	if err := row.Scan(&model); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("scan eval run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, task_type, baseline_score, refined_score, detail
		FROM eval_results WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query eval results: %w", err)
	}
	defer rows.Close()

	report := &domain.Report{
		RunID:   runID,
		Model:   model,
		Results: make(map[string]domain.EvalResult),
	}
	for rows.Next() {
		var res domain.EvalResult
		var taskType string
		var detail sql.NullString
		if err := rows.Scan(&res.TaskID, &taskType, &res.BaselineScore, &res.RefinedScore, &detail); err != nil {
			return nil, fmt.Errorf("scan eval result row: %w", err)
		}
		res.TaskType = domain.TaskType(taskType)
		res.Detail = detail.String
		report.Results[res.TaskID] = res
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eval result rows: %w", err)
	}

	return report, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
