package task

import "sort"

// Set is the full task collection, the unit of load/save. Storage order
// carries no meaning; ordering is always recomputed from priorities.
type Set []Task

func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	cp := make(Set, len(s))
	copy(cp, s)
	return cp
}

// Pending returns the pending subset (storage order preserved).
func (s Set) Pending() []Task {
	var out []Task
	for _, t := range s {
		if t.Pending() {
			out = append(out, t)
		}
	}
	return out
}

// FindPending returns the index of the pending task with the given
// priority. At most one can exist per the uniqueness invariant.
func (s Set) FindPending(priority int) (int, bool) {
	for i, t := range s {
		if t.Pending() && t.Priority == priority {
			return i, true
		}
	}
	return -1, false
}

// FindID returns the index of the task with the given id.
func (s Set) FindID(id string) (int, bool) {
	for i, t := range s {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Sorted returns a copy ordered by ascending priority, ties broken by
// created_at (ties can only involve completed tasks whose priority was
// later reused).
func (s Set) Sorted() Set {
	cp := s.Clone()
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].Priority != cp[j].Priority {
			return cp[i].Priority < cp[j].Priority
		}
		return cp[i].CreatedAt.Before(cp[j].CreatedAt)
	})
	return cp
}
