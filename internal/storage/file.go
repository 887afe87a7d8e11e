package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

// fileStore keeps the whole task set in a single JSON document.
//
// Files:
//   - <path>       the task set (a JSON array)
//   - <path>.lock  flock sidecar for cross-process exclusion
//
// Saves go through write-temp-then-rename so a crash mid-write never
// leaves a truncated or mixed-version document behind.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	path string
	lock *flock
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	return &fileStore{
		log:  log,
		path: path,
		lock: newFlock(path + ".lock"),
	}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Lock(ctx context.Context) (func(), error) {
	return s.lock.acquire(ctx)
}

func (s *fileStore) Load(ctx context.Context) (task.Set, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		// First use: no file yet means an empty set, not an error.
		s.log.Debug("task file not found; starting empty", logx.String("path", s.path))
		return task.Set{}, nil
	}
	if err != nil {
		return nil, err
	}

	var set task.Set
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, s.path, err)
	}
	return set, nil
}

func (s *fileStore) Save(ctx context.Context, set task.Set) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(set)
}

func (s *fileStore) Clear(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(task.Set{})
}

func (s *fileStore) write(set task.Set) error {
	if set == nil {
		set = task.Set{}
	}
	b, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrUnwritable, err)
	}
	b = append(b, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	s.log.Debug("task file saved", logx.String("path", s.path), logx.Int("tasks", len(set)))
	return nil
}
