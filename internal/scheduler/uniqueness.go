package scheduler

import "taskq/internal/task"

// CheckPriorityFree is the admission gate for a proposed priority: it
// scans pending tasks only, so a priority freed by completion (or by
// clearing history) is immediately reusable. Pure; no ids or timestamps
// are minted before it passes.
func CheckPriorityFree(set task.Set, priority int) error {
	for _, t := range set {
		if t.Pending() && t.Priority == priority {
			return &PriorityConflictError{Priority: priority, Holder: t.Description}
		}
	}
	return nil
}
