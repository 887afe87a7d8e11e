package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of a task. A task is created pending and moves to completed
// exactly once; there is no transition back.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

var ErrEmptyDescription = errors.New("task description must not be empty")

// Task is a unit of schedulable work. Priority is an integer ordering key
// (lower value runs earlier) and must be unique among pending tasks; that
// invariant is enforced at admission, not here.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// New mints a fresh pending task. Callers must run admission checks
// (description validation, priority uniqueness) BEFORE calling New so a
// rejected add never consumes an id.
func New(description string, priority int, now time.Time) Task {
	return Task{
		ID:          uuid.NewString(),
		Description: description,
		Priority:    priority,
		Status:      StatusPending,
		CreatedAt:   now,
	}
}

func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (t Task) Pending() bool { return t.Status == StatusPending }

// Complete transitions the task to completed. Completing an already
// completed task is a no-op; completed_at is set exactly once.
func (t *Task) Complete(now time.Time) {
	if t.Status == StatusCompleted {
		return
	}
	t.Status = StatusCompleted
	t.CompletedAt = &now
}
