package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskq/internal/storage"
	"taskq/internal/task"
	logx "taskq/pkg/logx"
)

// memStore implements storage.Store in memory and records every saved
// snapshot so tests can inspect the incremental persistence sequence.
type memStore struct {
	mu    sync.Mutex
	set   task.Set
	saves []task.Set

	failSaveAt int // 1-based save counter to fail on; 0 = never
}

var _ storage.Store = (*memStore)(nil)

func (m *memStore) Lock(ctx context.Context) (func(), error) { return func() {}, nil }
func (m *memStore) Close() error                             { return nil }

func (m *memStore) Load(ctx context.Context) (task.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone(), nil
}

func (m *memStore) Save(ctx context.Context, set task.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveAt > 0 && len(m.saves)+1 == m.failSaveAt {
		return fmt.Errorf("%w: injected failure", storage.ErrUnwritable)
	}
	cp := set.Clone()
	m.set = cp
	m.saves = append(m.saves, cp.Clone())
	return nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = task.Set{}
	m.saves = append(m.saves, task.Set{})
	return nil
}

func newTestService(st storage.Store) *Service {
	return New(st, NewRunner(RunnerConfig{}, logx.Nop()), logx.Nop())
}

func mustAdd(t *testing.T, svc *Service, desc string, priority int) task.Task {
	t.Helper()
	tk, err := svc.Add(context.Background(), desc, priority)
	if err != nil {
		t.Fatalf("Add(%q, %d): %v", desc, priority, err)
	}
	return tk
}

func completedPriorities(set task.Set) []int {
	var out []int
	for _, tk := range set {
		if tk.Status == task.StatusCompleted {
			out = append(out, tk.Priority)
		}
	}
	return out
}

func TestAddRejectsDuplicatePendingPriority(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "first", 4)
	before := st.set.Clone()

	_, err := svc.Add(ctx, "second", 4)
	var conflict *PriorityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected PriorityConflictError, got %v", err)
	}
	if conflict.Priority != 4 || conflict.Holder != "first" {
		t.Fatalf("conflict details wrong: %+v", conflict)
	}
	// The set is unchanged in size and content.
	if len(st.set) != len(before) || st.set[0].ID != before[0].ID {
		t.Fatalf("rejected add mutated the set")
	}
}

func TestAddRejectsEmptyDescription(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)

	if _, err := svc.Add(context.Background(), "  ", 1); !errors.Is(err, task.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if len(st.saves) != 0 {
		t.Fatalf("rejected add must not save")
	}
}

func TestRunAllExecutesInPriorityOrder(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "five", 5)
	mustAdd(t, svc, "one", 1)
	mustAdd(t, svc, "three", 3)
	st.saves = nil

	rep, err := svc.RunAll(ctx)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if rep.Executed != 3 || rep.Total != 3 {
		t.Fatalf("report = %+v, want 3/3", rep)
	}

	// One save per execution, each extending the completed set in
	// ascending priority order.
	if len(st.saves) != 3 {
		t.Fatalf("expected 3 incremental saves, got %d", len(st.saves))
	}
	wantSteps := [][]int{{1}, {1, 3}, {1, 3, 5}}
	for i, want := range wantSteps {
		got := completedPriorities(st.saves[i].Sorted())
		if len(got) != len(want) {
			t.Fatalf("save %d: completed %v, want %v", i, got, want)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("save %d: completed %v, want %v", i, got, want)
			}
		}
	}
	for _, tk := range st.set {
		if tk.Status != task.StatusCompleted || tk.CompletedAt == nil {
			t.Fatalf("task %q not completed after RunAll", tk.Description)
		}
	}
}

func TestRunAllEmptyIsNoop(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)

	rep, err := svc.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if rep.Executed != 0 || rep.Total != 0 {
		t.Fatalf("report = %+v, want 0/0", rep)
	}
	if len(st.saves) != 0 {
		t.Fatalf("empty RunAll must not save")
	}
}

func TestRunAllPartialFailureKeepsCompletedWork(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "a", 2)
	mustAdd(t, svc, "b", 1)
	mustAdd(t, svc, "c", 3)

	// 3 saves happened during add; fail the second run-all save.
	st.failSaveAt = len(st.saves) + 2

	rep, err := svc.RunAll(ctx)
	if !errors.Is(err, storage.ErrUnwritable) {
		t.Fatalf("expected ErrUnwritable, got %v", err)
	}
	if rep.Executed != 1 || rep.Total != 3 {
		t.Fatalf("report = %+v, want executed=1 total=3", rep)
	}

	// Store reflects exactly "task 1 completed, 2..3 still pending".
	set, _ := st.Load(ctx)
	done := completedPriorities(set)
	if len(done) != 1 || done[0] != 1 {
		t.Fatalf("completed priorities = %v, want [1]", done)
	}
	if got := len(set.Pending()); got != 2 {
		t.Fatalf("pending = %d, want 2", got)
	}
}

func TestExecuteOneNotFoundLeavesSetUnchanged(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "only", 7)
	saves := len(st.saves)

	_, err := svc.ExecuteOne(ctx, 99)
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Priority != 99 {
		t.Fatalf("expected NotFoundError for 99, got %v", err)
	}
	if len(st.saves) != saves {
		t.Fatalf("not-found execute must not save")
	}
	if !st.set[0].Pending() {
		t.Fatalf("task state changed")
	}
}

func TestFreedPriorityIsReusable(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "first run", 7)
	if _, err := svc.ExecuteOne(ctx, 7); err != nil {
		t.Fatalf("ExecuteOne: %v", err)
	}

	// Priority 7 is now held by a completed task only; a new add succeeds.
	tk := mustAdd(t, svc, "second run", 7)
	if !tk.Pending() {
		t.Fatalf("new task should be pending")
	}
	if got := len(st.set); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}
}

func TestClearHistoryResetsEverything(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "a", 1)
	mustAdd(t, svc, "b", 2)
	if _, err := svc.ExecuteOne(ctx, 1); err != nil {
		t.Fatalf("ExecuteOne: %v", err)
	}

	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	set, err := svc.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty view after clear, got %d tasks", len(set))
	}
}

func TestViewSortsWithoutMutating(t *testing.T) {
	t.Parallel()
	st := &memStore{}
	svc := newTestService(st)
	ctx := context.Background()

	mustAdd(t, svc, "five", 5)
	mustAdd(t, svc, "one", 1)
	saves := len(st.saves)

	set, err := svc.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if set[0].Priority != 1 || set[1].Priority != 5 {
		t.Fatalf("view not sorted: %+v", set)
	}
	if len(st.saves) != saves {
		t.Fatalf("view must not persist")
	}
}

func TestRunnerSimulatedWorkIsBounded(t *testing.T) {
	t.Parallel()
	short := workDuration("x")
	if short != workMin {
		t.Fatalf("short description duration = %v, want %v", short, workMin)
	}
	long := workDuration(string(make([]byte, 10_000)))
	if long != workMax {
		t.Fatalf("long description duration = %v, want %v", long, workMax)
	}
	mid := workDuration(string(make([]byte, 40)))
	if mid != 2*time.Second {
		t.Fatalf("mid description duration = %v, want 2s", mid)
	}
}

func TestRunnerSleepIsSkippedWhenSimulationOff(t *testing.T) {
	t.Parallel()
	r := NewRunner(RunnerConfig{SimulateWork: false}, logx.Nop())
	slept := false
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = true
		return nil
	}
	if err := r.Execute(context.Background(), task.New("demo", 1, time.Now())); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if slept {
		t.Fatalf("sleep called with simulation off")
	}
}
