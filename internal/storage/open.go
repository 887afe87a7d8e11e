package storage

import (
	"context"
	"errors"
	"strings"

	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

// Store is the persistence API used by the scheduler core.
//
// Lock takes an exclusive cross-process lock; callers hold it for a full
// load-mutate-save cycle and release it via the returned func. Two
// concurrent invocations therefore serialize instead of clobbering each
// other's saves.
type Store interface {
	Lock(ctx context.Context) (release func(), err error)
	Load(ctx context.Context) (task.Set, error)
	Save(ctx context.Context, set task.Set) error
	Clear(ctx context.Context) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
