package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a run history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "initialize history schema").
			WithContext("path", dbPath).
			Build()
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		version TEXT NOT NULL DEFAULT '',
		revision TEXT NOT NULL DEFAULT '',
		inputs_hash TEXT NOT NULL DEFAULT '',
		documents INTEGER NOT NULL DEFAULT 0,
		nav_findings INTEGER NOT NULL DEFAULT 0,
		prose_findings INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		manifest BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = "SELECT id, started_at, duration_ms, status, version, revision, inputs_hash, documents, nav_findings, prose_findings, error, manifest FROM runs"

// Record adds a run to the history.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, status, version, revision, inputs_hash, documents, nav_findings, prose_findings, error, manifest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(), run.Status,
		run.Version, run.Revision, run.InputsHash,
		run.Documents, run.NavFindings, run.ProseFindings, run.Error, run.Manifest,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "insert run").
			WithContext("run_id", run.ID).
			Build()
	}
	return nil
}

// Get retrieves a run by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOne(ctx, selectColumns+" WHERE id = ?", id)
}

// LastSuccess returns the newest run that did not fail.
func (s *SQLiteStore) LastSuccess(ctx context.Context) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOne(ctx, selectColumns+" WHERE status IN ('success', 'warning') ORDER BY seq DESC LIMIT 1")
}

// Recent returns the newest runs first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query runs").Build()
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "iterate runs").Build()
	}
	return runs, nil
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, args ...any) (Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		startedAt  int64
		durationMS int64
	)
	err := row.Scan(&run.ID, &startedAt, &durationMS, &run.Status, &run.Version, &run.Revision,
		&run.InputsHash, &run.Documents, &run.NavFindings, &run.ProseFindings, &run.Error, &run.Manifest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = time.UnixMilli(startedAt).UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
