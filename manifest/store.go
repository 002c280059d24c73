// CLAUDE:SUMMARY Async sqlite manifest of export runs: one row per processed leaf, batched writes, run summaries.
// Package manifest persists a diagnostic record of each export run to
// SQLite: one row per run, one row per processed leaf (path, kind,
// strategy, outcome). Writes are asynchronous and never backpressure the
// engine; a failing manifest is a diagnostics loss, not an export failure.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hazyhaar/arbex/export"
)

// Schema for the manifest tables. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS export_runs (
	run_id TEXT PRIMARY KEY,
	artifact TEXT,
	started_at INTEGER NOT NULL,
	finished_at INTEGER
);
CREATE TABLE IF NOT EXISTS export_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	path TEXT NOT NULL,
	kind TEXT NOT NULL,
	strategy TEXT NOT NULL,
	ok INTEGER NOT NULL,
	note TEXT,
	duration_us INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_export_entries_run ON export_entries(run_id);
`

// Open opens (or creates) the manifest database, applies the usual
// pragmas (WAL, busy timeout) and the schema. The caller's binary must
// blank-import modernc.org/sqlite.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("manifest: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("manifest: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest: apply schema: %w", err)
	}
	return db, nil
}

// Store implements export.Recorder over a manifest database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	ch     chan export.RecordEntry
	done   chan struct{}
	once   sync.Once
}

// NewStore creates a Store and starts its flush goroutine.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:     db,
		logger: logger,
		ch:     make(chan export.RecordEntry, 1024),
		done:   make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// LogRun records a completed (or failed) run. The run ID is minted by the
// engine, so the row lands after the fact; entries reference it by ID
// regardless of insertion order.
func (s *Store) LogRun(ctx context.Context, runID, artifact string, started, finished time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO export_runs (run_id, artifact, started_at, finished_at) VALUES (?,?,?,?)`,
		runID, artifact, started.UnixMilli(), finished.UnixMilli())
	if err != nil {
		return fmt.Errorf("manifest: log run: %w", err)
	}
	return nil
}

// Record queues an entry for async persistence. Non-blocking; drops with a
// warning when the buffer is full rather than stalling the engine.
func (s *Store) Record(_ context.Context, e export.RecordEntry) {
	select {
	case s.ch <- e:
	default:
		s.logger.Warn("manifest: buffer full, entry dropped", "path", e.Path)
	}
}

// Close drains the buffer and stops the flush goroutine. The database
// handle stays open; the caller owns it.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]export.RecordEntry, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []export.RecordEntry) {
	if len(batch) == 0 {
		return
	}
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Warn("manifest: begin tx failed", "error", err)
		return
	}
	stmt, err := tx.Prepare(`
		INSERT INTO export_entries (run_id, path, kind, strategy, ok, note, duration_us, created_at)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		s.logger.Warn("manifest: prepare failed", "error", err)
		tx.Rollback()
		return
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, e := range batch {
		ok := 0
		if e.OK {
			ok = 1
		}
		if _, err := stmt.Exec(e.RunID, e.Path, e.Kind, e.Strategy, ok, e.Note, e.Duration.Microseconds(), now); err != nil {
			s.logger.Warn("manifest: insert failed", "path", e.Path, "error", err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.logger.Warn("manifest: commit failed", "error", err)
	}
}

// Summary aggregates one run's outcomes, powering the "nothing exported"
// diagnosis after the fact.
type Summary struct {
	RunID        string
	Entries      int
	OK           int
	Placeholders int
	Notes        []string
}

// Summarize reads back a run's entries.
func (s *Store) Summarize(ctx context.Context, runID string) (*Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ok, note FROM export_entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("manifest: summarize: %w", err)
	}
	defer rows.Close()

	sum := &Summary{RunID: runID}
	for rows.Next() {
		var ok int
		var note sql.NullString
		if err := rows.Scan(&ok, &note); err != nil {
			return nil, fmt.Errorf("manifest: scan: %w", err)
		}
		sum.Entries++
		if ok == 1 {
			sum.OK++
		} else {
			sum.Placeholders++
			if note.Valid && note.String != "" {
				sum.Notes = append(sum.Notes, note.String)
			}
		}
	}
	return sum, rows.Err()
}
