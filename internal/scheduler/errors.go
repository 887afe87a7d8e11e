package scheduler

import "fmt"

// PriorityConflictError rejects an add whose priority is already held by a
// pending task. The set is left untouched.
type PriorityConflictError struct {
	Priority int
	Holder   string // description of the pending task holding the priority
}

func (e *PriorityConflictError) Error() string {
	return fmt.Sprintf("a pending task with priority %d already exists (%q)", e.Priority, e.Holder)
}

// NotFoundError rejects an execute for a priority with no pending task.
type NotFoundError struct {
	Priority int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no pending task found with priority %d", e.Priority)
}
