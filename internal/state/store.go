package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultFileName is the history database file inside the global directory.
const DefaultFileName = "history.db"

// Run is one execution of a setup's run file.
type Run struct {
	ID        string
	Project   string
	Setup     string
	Env       string
	Args      []string
	StartedAt time.Time
	Duration  time.Duration
	ExitCode  int
}

// Store persists runs.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies migrations.
// Use ":memory:" for an in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := NewWithDB(db, logger)
	s.path = path
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection. Migrations are not applied.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores run, assigning an ID when it has none.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project, setup, env, args, started_at, duration_ms, exit_code) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Project, run.Setup, run.Env, strings.Join(run.Args, " "),
		run.StartedAt.UTC().UnixMilli(), run.Duration.Milliseconds(), run.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	s.logger.Debug("recorded run", "id", run.ID, "setup", run.Setup, "env", run.Env)
	return nil
}

// Recent returns the latest runs of project, newest first.
// An empty project returns runs of every project.
func (s *Store) Recent(ctx context.Context, project string, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project, setup, env, args, started_at, duration_ms, exit_code
		 FROM runs
		 WHERE ? = '' OR project = ?
		 ORDER BY started_at DESC
		 LIMIT ?`,
		project, project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var args string
		var startedAt, durationMS int64
		if err := rows.Scan(&run.ID, &run.Project, &run.Setup, &run.Env, &args, &startedAt, &durationMS, &run.ExitCode); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if args != "" {
			run.Args = strings.Split(args, " ")
		}
		run.StartedAt = time.UnixMilli(startedAt).UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
