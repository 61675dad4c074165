package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/corpusgap/corpusgap/internal/quality"
)

// Run is one evaluation run over a question set.
type Run struct {
	ID           string
	QuestionFile string
	CreatedAt    time.Time
	TotalQueries int
	SuccessRate  float64
	AverageScore float64
}

// ResultStore persists evaluation runs and their per-question results
// in SQLite so gap analysis can compare runs over time.
type ResultStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// NewResultStore opens or creates a result store at path. An empty
// path creates an in-memory store.
func NewResultStore(path string) (*ResultStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &ResultStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *ResultStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		question_file TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL,
		total_queries INTEGER NOT NULL DEFAULT 0,
		success_rate  REAL NOT NULL DEFAULT 0,
		average_score REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS results (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		question   TEXT NOT NULL,
		role       TEXT NOT NULL,
		similarity REAL NOT NULL,
		score      REAL NOT NULL,
		status     TEXT NOT NULL,
		documents  TEXT NOT NULL DEFAULT '[]'
	);
	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginRun creates a new run record and returns it. Run IDs are
// random UUIDs.
func (s *ResultStore) BeginRun(ctx context.Context, questionFile string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	run := &Run{
		ID:           uuid.NewString(),
		QuestionFile: questionFile,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, question_file, created_at) VALUES (?, ?, ?)`,
		run.ID, run.QuestionFile, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// SaveResults appends evaluation results to a run.
func (s *ResultStore) SaveResults(ctx context.Context, runID string, results []quality.Result) error {
	if len(results) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, question, role, similarity, score, status, documents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range results {
		r := results[i].Normalized()
		docs, err := json.Marshal(r.Documents)
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, r.Question, r.Role, r.Similarity, r.Score, string(r.Status), string(docs)); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
	}

	return tx.Commit()
}

// FinishRun records the run's aggregate statistics.
func (s *ResultStore) FinishRun(ctx context.Context, runID string, totalQueries int, successRate, averageScore float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET total_queries = ?, success_rate = ?, average_score = ?
		WHERE id = ?`, totalQueries, successRate, averageScore, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *ResultStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, question_file, created_at, total_queries, success_rate, average_score
		FROM runs WHERE id = ?`, runID)

	var run Run
	err := row.Scan(&run.ID, &run.QuestionFile, &run.CreatedAt, &run.TotalQueries, &run.SuccessRate, &run.AverageScore)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}

// LatestRun retrieves the most recent run, or nil when none exist.
func (s *ResultStore) LatestRun(ctx context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, question_file, created_at, total_queries, success_rate, average_score
		FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)

	var run Run
	err := row.Scan(&run.ID, &run.QuestionFile, &run.CreatedAt, &run.TotalQueries, &run.SuccessRate, &run.AverageScore)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first, up to limit.
func (s *ResultStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_file, created_at, total_queries, success_rate, average_score
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.QuestionFile, &run.CreatedAt, &run.TotalQueries, &run.SuccessRate, &run.AverageScore); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetResults retrieves all results of a run in insertion order.
func (s *ResultStore) GetResults(ctx context.Context, runID string) ([]quality.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT question, role, similarity, score, status, documents
		FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []quality.Result
	for rows.Next() {
		var r quality.Result
		var status, docs string
		if err := rows.Scan(&r.Question, &r.Role, &r.Similarity, &r.Score, &status, &docs); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Status = quality.Status(status)
		if err := json.Unmarshal([]byte(docs), &r.Documents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the database.
func (s *ResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
