package scheduler

import (
	"context"
	"fmt"
	"time"

	"taskq/internal/storage"
	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

// Service is the scheduler core. Every mutating operation is one
// exclusive load-mutate-save cycle against the store; there is no
// long-lived in-memory state between invocations.
type Service struct {
	store  storage.Store
	runner *Runner
	log    logx.Logger

	now func() time.Time
}

func New(store storage.Store, runner *Runner, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if runner == nil {
		runner = NewRunner(RunnerConfig{}, log)
	}
	return &Service{store: store, runner: runner, log: log, now: time.Now}
}

// Add admits a new pending task. Validation and the uniqueness check run
// before the id and created_at are minted, so a rejected add leaves no
// trace.
func (s *Service) Add(ctx context.Context, description string, priority int) (task.Task, error) {
	if err := task.ValidateDescription(description); err != nil {
		return task.Task{}, err
	}

	release, err := s.store.Lock(ctx)
	if err != nil {
		return task.Task{}, err
	}
	defer release()

	set, err := s.store.Load(ctx)
	if err != nil {
		return task.Task{}, err
	}
	if err := CheckPriorityFree(set, priority); err != nil {
		return task.Task{}, err
	}

	t := task.New(description, priority, s.now())
	set = append(set, t)
	if err := s.store.Save(ctx, set); err != nil {
		return task.Task{}, err
	}
	s.log.Info("task added",
		logx.String("id", t.ID),
		logx.Int("priority", t.Priority),
		logx.String("description", t.Description),
	)
	return t, nil
}

// ExecuteOne runs the unique pending task with the given priority.
func (s *Service) ExecuteOne(ctx context.Context, priority int) (task.Task, error) {
	release, err := s.store.Lock(ctx)
	if err != nil {
		return task.Task{}, err
	}
	defer release()

	set, err := s.store.Load(ctx)
	if err != nil {
		return task.Task{}, err
	}
	i, ok := set.FindPending(priority)
	if !ok {
		return task.Task{}, &NotFoundError{Priority: priority}
	}

	if err := s.runner.Execute(ctx, set[i]); err != nil {
		return task.Task{}, err
	}
	set[i].Complete(s.now())
	if err := s.store.Save(ctx, set); err != nil {
		return task.Task{}, err
	}
	s.log.Info("task completed",
		logx.String("id", set[i].ID),
		logx.Int("priority", set[i].Priority),
	)
	return set[i], nil
}

// RunReport summarizes a RunAll: how many tasks completed (and were
// persisted) before the run ended, and how many were pending at the start.
type RunReport struct {
	Executed int
	Total    int
}

// RunAll executes every pending task in ascending-priority order,
// persisting after each individual execution. An interruption after task
// k of n therefore leaves exactly tasks 1..k completed on disk. A failure
// partway through is returned together with the count already completed.
func (s *Service) RunAll(ctx context.Context) (RunReport, error) {
	release, err := s.store.Lock(ctx)
	if err != nil {
		return RunReport{}, err
	}
	defer release()

	set, err := s.store.Load(ctx)
	if err != nil {
		return RunReport{}, err
	}

	h := newPendingHeap(set.Pending())
	rep := RunReport{Total: h.Len()}
	if rep.Total == 0 {
		s.log.Info("no pending tasks to run")
		return rep, nil
	}

	for {
		next, ok := h.pop()
		if !ok {
			break
		}
		i, ok := set.FindID(next.ID)
		if !ok {
			return rep, fmt.Errorf("task %s vanished from set during run", next.ID)
		}
		if err := s.runner.Execute(ctx, set[i]); err != nil {
			return rep, err
		}
		set[i].Complete(s.now())
		if err := s.store.Save(ctx, set); err != nil {
			return rep, err
		}
		rep.Executed++
		s.log.Info("task completed",
			logx.String("id", set[i].ID),
			logx.Int("priority", set[i].Priority),
		)
	}

	s.log.Info("run finished", logx.Int("executed", rep.Executed))
	return rep, nil
}

// View returns all tasks ordered by (priority, created_at). Read-only; no
// lock and no save.
func (s *Service) View(ctx context.Context) (task.Set, error) {
	set, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

// ClearHistory discards every task, pending and completed, and persists
// the empty set. This is a full reset, not an undo.
func (s *Service) ClearHistory(ctx context.Context) error {
	release, err := s.store.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("task history cleared")
	return nil
}
