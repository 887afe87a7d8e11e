package storage

import (
	"context"
	"os"
	"time"
)

// flock is an exclusive advisory lock on a sidecar file. Both drivers use
// it to serialize whole load-mutate-save cycles across processes; the
// retry loop polls instead of blocking so the caller's context can cancel
// the wait.
type flock struct {
	path string
}

func newFlock(path string) *flock { return &flock{path: path} }

const lockRetryInterval = 50 * time.Millisecond

func (l *flock) acquire(ctx context.Context) (func(), error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	for {
		err := flockTake(f)
		if err == nil {
			break
		}
		if !flockWouldBlock(err) {
			_ = f.Close()
			return nil, err
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	release := func() {
		_ = flockDrop(f)
		_ = f.Close()
	}
	return release, nil
}
