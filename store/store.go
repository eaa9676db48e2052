package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lecturekit/lecturekit/logger"
)

// Store is a SQLite-backed checkpoint store.
type Store struct {
	db    *sql.DB
	log   *logger.Logger
	clock func() time.Time
}

// Open initializes the checkpoint store at path. An empty path returns an
// ephemeral store whose operations are all no-ops.
func Open(ctx context.Context, path string, log *logger.Logger) (*Store, error) {
	log = log.WithComponent("store")
	if path == "" {
		return &Store{log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, log: log, clock: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL UNIQUE,
    source_path TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS segments (
    run_id TEXT NOT NULL,
    seg_index INTEGER NOT NULL,
    transcript TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY(run_id, seg_index),
    FOREIGN KEY(run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ephemeral reports whether the store discards everything.
func (s *Store) Ephemeral() bool { return s.db == nil }

// BeginRun records a run for a source fingerprint. If a run with the same
// fingerprint already exists, its ID is returned so checkpointed segments
// can be reused; otherwise runID is registered and returned.
func (s *Store) BeginRun(ctx context.Context, runID, fingerprint, sourcePath string) (string, error) {
	if s.db == nil {
		return runID, nil
	}

	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM runs WHERE fingerprint = ?`, fingerprint).Scan(&existing)
	switch {
	case err == nil:
		s.log.Info("resuming checkpointed run", map[string]interface{}{
			logger.FieldRunID: existing,
		})
		return existing, nil
	case err != sql.ErrNoRows:
		return "", fmt.Errorf("look up run: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs(run_id, fingerprint, source_path, created_at) VALUES(?, ?, ?, ?)`,
		runID, fingerprint, sourcePath, s.clock().UTC())
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return runID, nil
}

// CompletedSegments returns the checkpointed transcripts of a run, keyed
// by segment index.
func (s *Store) CompletedSegments(ctx context.Context, runID string) (map[int]string, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seg_index, transcript FROM segments WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}
	defer rows.Close()

	done := make(map[int]string)
	for rows.Next() {
		var index int
		var text string
		if err := rows.Scan(&index, &text); err != nil {
			return nil, err
		}
		done[index] = text
	}
	return done, rows.Err()
}

// SaveSegment checkpoints one segment transcript.
func (s *Store) SaveSegment(ctx context.Context, runID string, index int, text string) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO segments(run_id, seg_index, transcript, created_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(run_id, seg_index) DO UPDATE SET transcript=excluded.transcript`,
		runID, index, text, s.clock().UTC())
	return err
}

// FinishRun removes a completed run and its segments.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	return err
}

// Prune keeps only the most recent keep runs.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if s.db == nil || keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id IN (
		SELECT run_id FROM runs ORDER BY created_at DESC LIMIT -1 OFFSET ?
	)`, keep)
	return err
}

// RunCheckpoint adapts the store to a per-run segment sink.
type RunCheckpoint struct {
	store *Store
	ctx   context.Context
	runID string
}

// ForRun returns a sink that checkpoints segments under runID.
func (s *Store) ForRun(ctx context.Context, runID string) *RunCheckpoint {
	return &RunCheckpoint{store: s, ctx: ctx, runID: runID}
}

// SaveSegment checkpoints one segment transcript for the bound run.
func (c *RunCheckpoint) SaveSegment(index int, text string) error {
	return c.store.SaveSegment(c.ctx, c.runID, index, text)
}
