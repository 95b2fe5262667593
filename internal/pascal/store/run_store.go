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

	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

// Run is a recorded evaluation
type Run struct {
	ID           string           `json:"id" yaml:"id"`
	Timestamp    time.Time        `json:"timestamp" yaml:"timestamp"`
	Source       string           `json:"source" yaml:"source"`
	Success      bool             `json:"success" yaml:"success"`
	Bindings     map[string]int32 `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	ErrorKind    string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorCode    string           `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Duration     time.Duration    `json:"duration" yaml:"duration"`
}

// Outcome selects runs by result
type Outcome int

const (
	OutcomeAny Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// RunFilter defines criteria for listing runs
type RunFilter struct {
	Outcome Outcome
	Since   time.Time
	Limit   int
	Offset  int
}

// Stats summarizes the recorded runs
type Stats struct {
	Total       int64            `json:"total" yaml:"total"`
	Succeeded   int64            `json:"succeeded" yaml:"succeeded"`
	Failed      int64            `json:"failed" yaml:"failed"`
	ByErrorKind map[string]int64 `json:"by_error_kind" yaml:"by_error_kind"`
	LastRun     time.Time        `json:"last_run,omitempty" yaml:"last_run,omitempty"`
}

// RunStore defines the interface for run persistence
type RunStore interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter RunFilter) ([]*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLiteRunStore implements RunStore using SQLite
type SQLiteRunStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteRunStore opens or creates the run database
func NewSQLiteRunStore(cfg SQLiteConfig) (*SQLiteRunStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, mdwerror.Wrap(err, "failed to create history directory").
			WithCode(mdwerror.CodeDatabaseError).
			WithDetail("path", dir)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to open history database").
			WithCode(mdwerror.CodeDatabaseError).
			WithDetail("path", cfg.Path)
	}

	store := &SQLiteRunStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, mdwerror.Wrap(err, "failed to initialize schema").
			WithCode(mdwerror.CodeDatabaseError).
			WithDetail("path", cfg.Path)
	}

	return store, nil
}

func (s *SQLiteRunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		success INTEGER NOT NULL,
		bindings TEXT,
		error_kind TEXT,
		error_code TEXT,
		error_message TEXT,
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_success ON runs(success);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save records a run. A missing timestamp is set to now.
func (s *SQLiteRunStore) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return mdwerror.New("run ID is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("store.Save")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	run.Timestamp = run.Timestamp.UTC()

	var bindingsJSON []byte
	if run.Bindings != nil {
		var err error
		if bindingsJSON, err = json.Marshal(run.Bindings); err != nil {
			return fmt.Errorf("failed to encode bindings: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, source, success, bindings, error_kind, error_code, error_message, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp, run.Source, run.Success, nullString(string(bindingsJSON)),
		nullString(run.ErrorKind), nullString(run.ErrorCode), nullString(run.ErrorMessage), int64(run.Duration))
	if err != nil {
		return mdwerror.Wrap(err, "failed to insert run").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Save").
			WithDetail("run_id", run.ID)
	}
	return nil
}

const selectRuns = `SELECT id, timestamp, source, success, bindings, error_kind, error_code, error_message, duration_ns FROM runs`

// Get returns the run with the given ID
func (s *SQLiteRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to load run").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Get").
			WithDetail("run_id", id)
	}
	return run, nil
}

// List returns runs matching filter, newest first
func (s *SQLiteRunStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns + ` WHERE 1=1`
	var args []interface{}

	switch filter.Outcome {
	case OutcomeSucceeded:
		query += " AND success = 1"
	case OutcomeFailed:
		query += " AND success = 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to query runs").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.List")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats returns aggregate counts over all runs
func (s *SQLiteRunStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByErrorKind: make(map[string]int64)}

	var succeeded sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(success) FROM runs`).Scan(&stats.Total, &succeeded); err != nil {
		return nil, mdwerror.Wrap(err, "failed to count runs").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Stats")
	}
	stats.Succeeded = succeeded.Int64
	stats.Failed = stats.Total - stats.Succeeded

	if err := s.countErrorKinds(ctx, stats.ByErrorKind); err != nil {
		return nil, err
	}

	var last sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM runs`).Scan(&last); err != nil {
		return nil, mdwerror.Wrap(err, "failed to read last run time").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Stats")
	}
	if last.Valid {
		stats.LastRun = parseTimestamp(last.String)
	}

	return stats, nil
}

func (s *SQLiteRunStore) countErrorKinds(ctx context.Context, byKind map[string]int64) error {
	rows, err := s.db.QueryContext(ctx, `SELECT error_kind, COUNT(*) FROM runs WHERE success = 0 GROUP BY error_kind`)
	if err != nil {
		return mdwerror.Wrap(err, "failed to group runs").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var kind sql.NullString
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return mdwerror.Wrap(err, "failed to scan error kinds").
				WithCode(mdwerror.CodeDatabaseError).
				WithOperation("store.Stats")
		}
		byKind[kind.String] = count
	}
	if err := rows.Err(); err != nil {
		return mdwerror.Wrap(err, "failed to group runs").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Stats")
	}
	return nil
}

// Prune removes runs older than the given duration
func (s *SQLiteRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, mdwerror.Wrap(err, "failed to prune runs").
			WithCode(mdwerror.CodeDatabaseError).
			WithOperation("store.Prune")
	}
	return result.RowsAffected()
}

// Ping checks that the database is reachable
func (s *SQLiteRunStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var bindings, errorKind, errorCode, errorMessage sql.NullString
	var durationNS int64

	if err := row.Scan(&run.ID, &run.Timestamp, &run.Source, &run.Success, &bindings,
		&errorKind, &errorCode, &errorMessage, &durationNS); err != nil {
		return nil, err
	}

	if bindings.Valid && bindings.String != "" {
		if err := json.Unmarshal([]byte(bindings.String), &run.Bindings); err != nil {
			return nil, fmt.Errorf("failed to decode bindings of run %s: %w", run.ID, err)
		}
	}
	run.ErrorKind = errorKind.String
	run.ErrorCode = errorCode.String
	run.ErrorMessage = errorMessage.String
	run.Duration = time.Duration(durationNS)
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// sqlite3 returns aggregate timestamps as text
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func notFound(id string) error {
	return mdwerror.Newf("run %s not found", id).
		WithCode(mdwerror.CodeNotFound).
		WithDetail("run_id", id)
}
