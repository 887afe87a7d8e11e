package scheduler

import (
	"container/heap"

	"taskq/internal/task"
)

// pendingHeap is the transient min-priority ordering over the pending
// subset. It is rebuilt from the loaded set on every run and never
// persisted, so storage order stays the single source of truth.
type pendingHeap []task.Task

func (h pendingHeap) Len() int           { return len(h) }
func (h pendingHeap) Less(i, j int) bool { return h[i].Priority < h[j].Priority }
func (h pendingHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *pendingHeap) Push(x any)        { *h = append(*h, x.(task.Task)) }
func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

func newPendingHeap(pending []task.Task) *pendingHeap {
	h := make(pendingHeap, len(pending))
	copy(h, pending)
	heap.Init(&h)
	return &h
}

func (h *pendingHeap) pop() (task.Task, bool) {
	if h.Len() == 0 {
		return task.Task{}, false
	}
	return heap.Pop(h).(task.Task), true
}
