// Package history keeps a SQLite log of past lines runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/lines/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// timeLayout is fixed-width so started_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DiagnosticRecord is a stored diagnostic.
type DiagnosticRecord struct {
	Kind string
	Path string
}

// RunRecord represents a single recorded run
type RunRecord struct {
	ID           int64
	RunID        string
	StartedAt    time.Time
	Duration     time.Duration
	Targets      []string
	Total        int64
	Failed       bool
	FilesCounted int64
	DirsExpanded int64
	Diagnostics  []DiagnosticRecord
}

// NewRunRecord converts a run result into a record.
func NewRunRecord(result models.RunResult) RunRecord {
	rec := RunRecord{
		RunID:        result.RunID,
		StartedAt:    result.StartedAt,
		Duration:     result.Duration,
		Targets:      result.Targets,
		Total:        result.Total,
		Failed:       result.Failed,
		FilesCounted: result.FilesCounted,
		DirsExpanded: result.DirsExpanded,
	}
	for _, d := range result.Diagnostics {
		rec.Diagnostics = append(rec.Diagnostics, DiagnosticRecord{Kind: string(d.Kind), Path: d.Path})
	}
	return rec
}

// Line renders the record for `lines --history`.
// Format: "<started_at> <run_id> total=<n> failed=<bool> targets=<a,b>"
func (r RunRecord) Line() string {
	return fmt.Sprintf("%s %s total=%d failed=%t targets=%s",
		r.StartedAt.Format(time.RFC3339), r.RunID, r.Total, r.Failed, strings.Join(r.Targets, ","))
}

// Store manages the SQLite database of run history
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a run and its diagnostics.
func (s *Store) Record(ctx context.Context, rec RunRecord) error {
	if rec.RunID == "" {
		return fmt.Errorf("record run: empty run id")
	}

	targets, err := json.Marshal(rec.Targets)
	if err != nil {
		return fmt.Errorf("marshal targets: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, started_at, duration_ms, targets, total, failed, files_counted, dirs_expanded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.Duration.Milliseconds(),
		string(targets),
		rec.Total,
		rec.Failed,
		rec.FilesCounted,
		rec.DirsExpanded,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	for i, d := range rec.Diagnostics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_diagnostics (run_id, seq, kind, path) VALUES (?, ?, ?, ?)`,
			rec.RunID, i, d.Kind, d.Path); err != nil {
			return fmt.Errorf("insert diagnostic for %s: %w", rec.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", rec.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first, with their diagnostics.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		id, run_id, started_at, duration_ms, targets, total, failed, files_counted, dirs_expanded
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			startedAt  string
			durationMS int64
			targets    string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &startedAt, &durationMS, &targets,
			&rec.Total, &rec.Failed, &rec.FilesCounted, &rec.DirsExpanded); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(targets), &rec.Targets); err != nil {
			return nil, fmt.Errorf("unmarshal targets: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range records {
		diags, err := s.diagnostics(ctx, records[i].RunID)
		if err != nil {
			return nil, err
		}
		records[i].Diagnostics = diags
	}
	return records, nil
}

func (s *Store) diagnostics(ctx context.Context, runID string) ([]DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, path FROM run_diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []DiagnosticRecord
	for rows.Next() {
		var d DiagnosticRecord
		if err := rows.Scan(&d.Kind, &d.Path); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
