// Package watch follows the backing task file and reports real content
// changes, so a long-running view can track mutations made by other
// invocations.
package watch

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "taskq/pkg/logx"
)

const debounceWindow = 200 * time.Millisecond

// Run watches path until ctx is done, calling onChange after each settled
// content change. Editors and atomic renames produce event bursts, so
// events are debounced and a content hash filters out writes that changed
// nothing. onChange also fires once at startup for the initial state.
func Run(ctx context.Context, path string, log logx.Logger, onChange func() error) error {
	if log.IsZero() {
		log = logx.Nop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: saves replace the file by
	// rename, which would drop a file-level watch.
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	lastHash := hashFile(path)
	if err := onChange(); err != nil {
		return err
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	fire := make(chan struct{}, 1)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			log.Debug("task file event", logx.String("op", ev.Op.String()))
			debounce()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", logx.Err(err))
		case <-fire:
			h := hashFile(path)
			if h == lastHash {
				log.Debug("task file unchanged; skipping")
				continue
			}
			lastHash = h
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}

// hashFile returns a stable 64-bit hash of the file content. Missing or
// unreadable files hash to 0.
func hashFile(path string) uint64 {
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
