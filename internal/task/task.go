package task

import (
	"github.com/google/uuid"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// Priority orders tasks within a worker's queue. The high tier always
// drains before the low tier.
type Priority int

const (
	// PriorityLow is for speculative work, such as pre-warming thumbnails
	// nobody has asked to see yet.
	PriorityLow Priority = iota

	// PriorityHigh is for artifacts a caller is actively waiting on.
	PriorityHigh
)

// String returns a human-readable name for the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Task is one unit of decode work owned by a single worker. Its ID is the
// request id of the submission that created it; later submissions for the
// same key attach to the existing task as waiters instead of creating a
// second one.
//
// Priority is rewritten in place when a bump reorders the task, so after
// enqueue it must only be touched by the owning worker.
type Task struct {
	// ID uniquely identifies the task.
	ID uuid.UUID

	// Key is the deduplication key the task was submitted under.
	Key string

	// Request describes the decode operation to perform.
	Request decode.Request

	// Priority is the task's current queue tier.
	Priority Priority
}
