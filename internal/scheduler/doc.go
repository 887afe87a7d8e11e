// Package scheduler implements the priority scheduler core: admission of
// new tasks under the unique-pending-priority invariant, ascending-priority
// execution via a transient min-heap, and persistence through the storage
// layer after every mutation.
package scheduler
