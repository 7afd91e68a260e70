package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// Handle is one caller's claim on a submitted request. Every Submit call
// returns its own handle even when several submissions share a task, so
// canceling one never disturbs the others.
type Handle struct {
	scheduler *Scheduler
	taskID    uuid.UUID
	waiter    *waiter
}

// ID returns the request id of this submission.
func (h *Handle) ID() uuid.UUID {
	return h.waiter.id
}

// Done returns a channel that is closed once the request resolves.
func (h *Handle) Done() <-chan struct{} {
	return h.waiter.done
}

// Result blocks until the request resolves or ctx is done. It returns the
// decoded artifact, the decode error shared by all waiters on the task,
// ErrCanceled if this handle was canceled, or ErrSchedulerClosed if the
// scheduler shut down first. Once resolved, Result returns the same
// outcome on every call.
//
// A ctx error only abandons the wait; the claim stays live. Callers giving
// up for good should Cancel the handle as well.
func (h *Handle) Result(ctx context.Context) (*decode.Artifact, error) {
	select {
	case <-h.waiter.done:
		return h.waiter.out.artifact, h.waiter.out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel withdraws this handle's claim on the artifact. The handle
// resolves with ErrCanceled; the underlying task keeps running while other
// handles still want it and is discarded once the last one cancels.
// Canceling an already resolved handle is a no-op.
func (h *Handle) Cancel() {
	h.scheduler.cancelWaiter(h.taskID, h.waiter)
}
