// Package history persists Caesar recovery runs in SQLite so earlier results
// can be listed and looked up by run ID.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id       TEXT PRIMARY KEY,
    created_ns   INTEGER NOT NULL,
    source       TEXT NOT NULL,
    shift        INTEGER NOT NULL,
    score        INTEGER NOT NULL,
    text_length  INTEGER NOT NULL,
    dictionary   INTEGER NOT NULL,
    mode         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_ns);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source, created_ns);
`

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Run is one recorded recovery. The recovered plaintext is not stored.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Source     string
	Shift      int
	Score      int
	TextLength int
	Dictionary int
	Mode       string
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store is the SQLite-backed run log.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores run. A missing ID is filled with NewRunID and a zero
// CreatedAt with the current time; the stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return Run{}, fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	if strings.TrimSpace(run.Mode) == "" {
		run.Mode = "sequential"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_ns, source, shift, score, text_length, dictionary, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Source, run.Shift, run.Score, run.TextLength, run.Dictionary, run.Mode,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, created_ns, source, shift, score, text_length, dictionary, mode
		FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return run, err
}

// Recent returns up to limit runs, newest first. When source is not empty
// only runs over that source are returned.
func (s *Store) Recent(ctx context.Context, source string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT run_id, created_ns, source, shift, score, text_length, dictionary, mode FROM runs`
	args := []any{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY created_ns DESC, run_id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
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
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		createdNs int64
	)
	if err := row.Scan(&run.ID, &createdNs, &run.Source, &run.Shift, &run.Score, &run.TextLength, &run.Dictionary, &run.Mode); err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, createdNs).UTC()
	return run, nil
}
