package task

import (
	"testing"
	"time"
)

func TestValidateDescription(t *testing.T) {
	t.Parallel()
	if err := ValidateDescription("write report"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range []string{"", "   ", "\t\n"} {
		if err := ValidateDescription(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCompleteIsTerminal(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tk := New("demo", 1, now)
	if !tk.Pending() {
		t.Fatalf("new task should be pending")
	}
	if tk.ID == "" || !tk.CreatedAt.Equal(now) {
		t.Fatalf("id/created_at not minted: %+v", tk)
	}

	first := now.Add(time.Minute)
	tk.Complete(first)
	if tk.Status != StatusCompleted || tk.CompletedAt == nil || !tk.CompletedAt.Equal(first) {
		t.Fatalf("complete did not transition: %+v", tk)
	}

	// Completing again must not move completed_at.
	tk.Complete(now.Add(time.Hour))
	if !tk.CompletedAt.Equal(first) {
		t.Fatalf("completed_at changed on second complete: %v", tk.CompletedAt)
	}
}

func TestSetFindPending(t *testing.T) {
	t.Parallel()
	now := time.Now()
	done := New("done", 7, now)
	done.Complete(now)
	set := Set{done, New("a", 7, now), New("b", 3, now)}

	i, ok := set.FindPending(7)
	if !ok || set[i].Description != "a" {
		t.Fatalf("FindPending(7) = %d, %v", i, ok)
	}
	if _, ok := set.FindPending(99); ok {
		t.Fatalf("expected no pending task with priority 99")
	}
	if got := len(set.Pending()); got != 2 {
		t.Fatalf("Pending() = %d tasks, want 2", got)
	}
}

func TestSortedOrdersByPriorityThenCreated(t *testing.T) {
	t.Parallel()
	now := time.Now()
	old := New("old", 5, now.Add(-time.Hour))
	old.Complete(now)
	set := Set{New("late", 5, now), New("first", 1, now), old}

	sorted := set.Sorted()
	if sorted[0].Description != "first" {
		t.Fatalf("expected priority 1 first, got %q", sorted[0].Description)
	}
	// Equal priorities (freed 5) tie-break by created_at ascending.
	if sorted[1].Description != "old" || sorted[2].Description != "late" {
		t.Fatalf("tie-break wrong: %q, %q", sorted[1].Description, sorted[2].Description)
	}
	// Sorted must not mutate the receiver.
	if set[0].Description != "late" {
		t.Fatalf("Sorted mutated the original set")
	}
}
