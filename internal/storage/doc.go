package storage

// Package storage persists the task set.
//
// It currently supports:
//   - Whole-set load/save/clear round trips (the scheduler always works
//     on the full set in memory)
//   - An exclusive cross-process lock held for a load-mutate-save cycle
