// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     store
// Description: SQLite-backed history of script runs
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
)

// RunStatus is the outcome of a run
type RunStatus string

const (
	RunStatusOK     RunStatus = "OK"
	RunStatusFailed RunStatus = "FAILED"
)

// Run is one recorded script execution
type Run struct {
	ID           string                 `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Source       string                 `json:"source"`
	SourceName   string                 `json:"source_name,omitempty"`
	Status       RunStatus              `json:"status"`
	ErrorKind    string                 `json:"error_kind,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Output       []byte                 `json:"output,omitempty"`
	Commands     int                    `json:"commands"`
	Timeouts     int                    `json:"timeouts"`
	Duration     time.Duration          `json:"duration"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// RunFilter defines criteria for listing runs
type RunFilter struct {
	Status     RunStatus
	SourceName string
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
	Offset     int
}

// Stats summarizes the recorded runs
type Stats struct {
	Total    int64
	Failed   int64
	Timeouts int64
	ByKind   map[string]int64
}

// RunStore defines the interface for run history persistence
type RunStore interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, idOrPrefix string) (*Run, error)
	List(ctx context.Context, filter RunFilter) ([]*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRunStore implements RunStore using SQLite
type SQLiteRunStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteRunConfig holds configuration for the SQLite store
type SQLiteRunConfig struct {
	Path string
}

// DefaultRunConfig returns default configuration
func DefaultRunConfig() SQLiteRunConfig {
	return SQLiteRunConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteRunStore creates a new SQLite-based run store
func NewSQLiteRunStore(cfg SQLiteRunConfig) (*SQLiteRunStore, error) {
	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, hmerror.Wrap(err, "failed to create history directory").
				WithCode(hmerror.CodeIOError).
				WithOperation("store.NewSQLiteRunStore").
				WithDetail("path", dir)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to open history database").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.NewSQLiteRunStore")
	}
	if cfg.Path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteRunStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, hmerror.Wrap(err, "failed to initialize history schema").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.NewSQLiteRunStore")
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteRunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		source_name TEXT,
		status TEXT NOT NULL,
		error_kind TEXT,
		error_message TEXT,
		output BLOB,
		commands INTEGER NOT NULL DEFAULT 0,
		timeouts INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		metadata TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	CREATE INDEX IF NOT EXISTS idx_runs_source_name ON runs(source_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run. Missing IDs and timestamps are filled in.
func (s *SQLiteRunStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = time.Now().Format("20060102150405.000000000")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	if run.Status == "" {
		run.Status = RunStatusOK
	}

	var metadataJSON []byte
	if run.Metadata != nil {
		metadataJSON, _ = json.Marshal(run.Metadata)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, source, source_name, status, error_kind, error_message,
			output, commands, timeouts, duration_ms, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp.UTC(), run.Source, run.SourceName, string(run.Status), run.ErrorKind,
		run.ErrorMessage, run.Output, run.Commands, run.Timeouts, run.Duration.Milliseconds(), metadataJSON)

	if err != nil {
		return hmerror.Wrap(err, "failed to insert run").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.Record").
			WithDetail("run_id", run.ID)
	}

	return nil
}

const runColumns = `id, timestamp, source, source_name, status, error_kind, error_message,
	output, commands, timeouts, duration_ms, metadata`

// Get returns the run with the given ID or unique ID prefix
func (s *SQLiteRunStore) Get(ctx context.Context, idOrPrefix string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idOrPrefix == "" {
		return nil, hmerror.New("run id must not be empty").
			WithCode(hmerror.CodeInvalidInput).
			WithOperation("store.Get")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		idOrPrefix, stripWildcards(idOrPrefix)+"%", idOrPrefix)
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to query run").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.Get")
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, hmerror.Newf("run %s not found", idOrPrefix).
			WithCode(hmerror.CodeNotFound).
			WithOperation("store.Get")
	case runs[0].ID == idOrPrefix || len(runs) == 1:
		return runs[0], nil
	default:
		return nil, hmerror.Newf("run id prefix %s is ambiguous", idOrPrefix).
			WithCode(hmerror.CodeInvalidInput).
			WithOperation("store.Get")
	}
}

// List retrieves runs based on filter criteria, newest first
func (s *SQLiteRunStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.SourceName != "" {
		query += " AND source_name = ?"
		args = append(args, filter.SourceName)
	}
	if !filter.StartTime.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to query runs").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.List")
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Stats returns aggregate counts over all runs
func (s *SQLiteRunStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByKind: make(map[string]int64)}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(timeouts), 0)
		FROM runs
	`, string(RunStatusFailed)).Scan(&stats.Total, &stats.Failed, &stats.Timeouts)
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to compute run stats").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.Stats")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT error_kind, COUNT(*) FROM runs WHERE error_kind != '' GROUP BY error_kind`)
	if err != nil {
		return nil, hmerror.Wrap(err, "failed to group runs by error kind").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, hmerror.Wrap(err, "failed to scan run stats").
				WithCode(hmerror.CodeDatabaseError).
				WithOperation("store.Stats")
		}
		stats.ByKind[kind] = count
	}

	return stats, rows.Err()
}

// Prune removes runs older than the given duration
func (s *SQLiteRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, hmerror.Wrap(err, "failed to prune runs").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.Prune")
	}

	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		var run Run
		var status string
		var sourceName, errorKind, errorMessage, metadataJSON sql.NullString
		var durationMS int64

		if err := rows.Scan(&run.ID, &run.Timestamp, &run.Source, &sourceName, &status,
			&errorKind, &errorMessage, &run.Output, &run.Commands, &run.Timeouts,
			&durationMS, &metadataJSON); err != nil {
			return nil, hmerror.Wrap(err, "failed to scan run").
				WithCode(hmerror.CodeDatabaseError).
				WithOperation("store.scanRuns")
		}

		run.Status = RunStatus(status)
		run.SourceName = sourceName.String
		run.ErrorKind = errorKind.String
		run.ErrorMessage = errorMessage.String
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if metadataJSON.Valid && metadataJSON.String != "" {
			json.Unmarshal([]byte(metadataJSON.String), &run.Metadata)
		}

		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, hmerror.Wrap(err, "failed to iterate runs").
			WithCode(hmerror.CodeDatabaseError).
			WithOperation("store.scanRuns")
	}
	return runs, nil
}

// stripWildcards drops LIKE wildcards from a user supplied ID prefix
func stripWildcards(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' || s[i] == '_' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
