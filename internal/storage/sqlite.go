package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db   *sql.DB
	log  logx.Logger
	lock *flock
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for sqlite driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log, lock: newFlock(path + ".lock")}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Lock(ctx context.Context) (func(), error) {
	return s.lock.acquire(ctx)
}

func (s *sqliteStore) Load(ctx context.Context) (task.Set, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, priority, status, created_at, completed_at FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := task.Set{}
	for rows.Next() {
		var (
			t         task.Task
			status    string
			created   string
			completed sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Description, &t.Priority, &status, &created, &completed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
		t.Status = task.Status(status)
		if t.Status != task.StatusPending && t.Status != task.StatusCompleted {
			return nil, fmt.Errorf("%w: unknown status %q for task %s", ErrCorrupted, status, t.ID)
		}
		t.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("%w: created_at of task %s: %v", ErrCorrupted, t.ID, err)
		}
		if completed.Valid {
			at, err := time.Parse(time.RFC3339Nano, completed.String)
			if err != nil {
				return nil, fmt.Errorf("%w: completed_at of task %s: %v", ErrCorrupted, t.ID, err)
			}
			t.CompletedAt = &at
		}
		set = append(set, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return set, nil
}

// Save replaces the stored set wholesale inside one transaction, matching
// the file driver's all-or-nothing contract.
func (s *sqliteStore) Save(ctx context.Context, set task.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	for _, t := range set {
		var completed any
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Format(time.RFC3339Nano)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks(id, description, priority, status, created_at, completed_at)
			 VALUES(?,?,?,?,?,?)`,
			t.ID, t.Description, t.Priority, string(t.Status),
			t.CreatedAt.Format(time.RFC3339Nano), completed,
		)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnwritable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	s.log.Debug("task table saved", logx.Int("tasks", len(set)))
	return nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	return nil
}
