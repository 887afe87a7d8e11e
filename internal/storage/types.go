package storage

import (
	"errors"
	"time"
)

var (
	// ErrCorrupted marks a backing resource that exists but cannot be
	// parsed as a valid task set. Unreadable tasks are never dropped.
	ErrCorrupted = errors.New("task store corrupted")

	// ErrUnwritable marks a save that could not complete (permissions,
	// disk full). The on-disk state stays whatever it was before.
	ErrUnwritable = errors.New("task store unwritable")
)

// Config configures storage.
//
// Driver values:
//   - "file": single JSON document (default)
//   - "sqlite": SQLite database file
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}
