//go:build !unix

package storage

import "os"

// No flock on this platform; fall back to the single-invocation
// assumption the original tool made.

func flockTake(f *os.File) error { _ = f; return nil }

func flockDrop(f *os.File) error { _ = f; return nil }

func flockWouldBlock(err error) bool { _ = err; return false }
