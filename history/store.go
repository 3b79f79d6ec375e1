// Package history keeps a SQLite log of finished practice runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"drum-practice/practice"
)

//go:embed schema.sql
var schema string

// Run is one stored practice run
type Run struct {
	ID        uuid.UUID
	Source    string
	Port      string
	Tempo     int
	Started   time.Time
	Finished  time.Time
	Completed bool
	Hits      int
	Total     int
	Performed int
	Accuracy  float64
}

// Store provides SQLite-backed run history.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the history database at path, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record stores a finished run.
func (s *Store) Record(ctx context.Context, r practice.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if r.RunID == uuid.Nil {
		return fmt.Errorf("run id is required")
	}
	if r.Finished.IsZero() {
		r.Finished = time.Now().UTC()
	}
	if r.Started.IsZero() {
		r.Started = r.Finished
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO runs (
	id,
	source,
	port,
	tempo,
	started_at,
	finished_at,
	completed,
	hits,
	total,
	performed,
	accuracy
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		r.RunID.String(),
		r.Source,
		r.Port,
		r.Tempo,
		r.Started.UTC().UnixMilli(),
		r.Finished.UTC().UnixMilli(),
		r.Completed,
		r.Hits,
		r.Total,
		len(r.Performed),
		r.Accuracy,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent lists newest-first runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	source,
	port,
	tempo,
	started_at,
	finished_at,
	completed,
	hits,
	total,
	performed,
	accuracy
FROM runs
ORDER BY finished_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		var id string
		var startedAt, finishedAt int64
		if err := rows.Scan(
			&id,
			&run.Source,
			&run.Port,
			&run.Tempo,
			&startedAt,
			&finishedAt,
			&run.Completed,
			&run.Hits,
			&run.Total,
			&run.Performed,
			&run.Accuracy,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		run.Started = time.UnixMilli(startedAt).UTC()
		run.Finished = time.UnixMilli(finishedAt).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

var _ practice.Recorder = (*Store)(nil)
