package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// messageKind discriminates worker inbox messages.
type messageKind int

const (
	msgEnqueue messageKind = iota
	msgBump
	msgCancel
)

// message is one control instruction for a worker. Enqueue carries the
// task itself; bump and cancel carry the task id, with prio set for bumps.
type message struct {
	kind messageKind
	task *Task
	id   uuid.UUID
	prio Priority
}

// result carries a finished task's outcome from a worker back to the
// scheduler.
type result struct {
	taskID   uuid.UUID
	artifact *decode.Artifact
	err      error
}

// worker owns a two-tier queue of decode tasks and executes them one at a
// time. All queue state is confined to the worker's goroutine; the rest of
// the scheduler talks to it only through the inbox channel, so none of it
// needs locking.
type worker struct {
	id      int
	inbox   chan message
	queue   workQueue
	decoder decode.Decoder
	deliver func(result)
	logger  *slog.Logger

	// current tracks the task being executed so a cancel arriving during
	// the decode can suppress delivery of its result.
	current         uuid.UUID
	currentCanceled bool
}

func newWorker(
	id int,
	queueSize int,
	decoder decode.Decoder,
	deliver func(result),
	logger *slog.Logger,
) *worker {
	return &worker{
		id:      id,
		inbox:   make(chan message, queueSize),
		decoder: decoder,
		deliver: deliver,
		logger:  logger.With("worker_id", id),
	}
}

// send places a message in the worker's inbox without blocking.
// Returns ErrQueueFull when the inbox has no room.
func (w *worker) send(m message) error {
	select {
	case w.inbox <- m:
		return nil
	default:
		return fmt.Errorf("%w: inbox capacity %d reached", ErrQueueFull, cap(w.inbox))
	}
}

// run is the worker's processing loop. Every pending control message is
// applied before the next task is picked, so bumps and cancels that arrived
// while the previous task was decoding take effect first.
func (w *worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	w.logger.Debug("starting worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("stopping worker", "queued", w.queue.size())
			return
		default:
		}

		w.drain()

		t := w.queue.pop()
		if t == nil {
			// Nothing queued: block until a message or shutdown arrives.
			select {
			case <-ctx.Done():
				w.logger.Debug("stopping worker", "queued", w.queue.size())
				return
			case m := <-w.inbox:
				w.apply(m)
			}
			continue
		}

		w.execute(ctx, t)
	}
}

// drain applies all pending inbox messages without blocking. It is the
// yield point between tasks: control traffic always gets a chance to
// reorder or cancel queued work before the next decode starts.
func (w *worker) drain() {
	for {
		select {
		case m := <-w.inbox:
			w.apply(m)
		default:
			return
		}
	}
}

// apply executes one control message against the queue.
func (w *worker) apply(m message) {
	switch m.kind {
	case msgEnqueue:
		w.queue.push(m.task)
		w.logger.Debug("task queued",
			"task_id", m.task.ID,
			"key", m.task.Key,
			"priority", m.task.Priority,
			"queued", w.queue.size())

	case msgBump:
		if w.queue.bump(m.id, m.prio) {
			w.logger.Debug("task bumped", "task_id", m.id, "priority", m.prio)
		}

	case msgCancel:
		if t := w.queue.remove(m.id); t != nil {
			w.logger.Debug("queued task canceled", "task_id", m.id, "key", t.Key)
			return
		}
		if w.current == m.id {
			// Too late to skip the work, but the result can still be
			// dropped once the decode returns.
			w.currentCanceled = true
		}
		// Otherwise the task belongs to another worker or already
		// finished. Cancels are broadcast, so that is routine.
	}
}

// execute runs one task to completion and reports the outcome, unless the
// task was canceled mid-decode or the worker is shutting down.
func (w *worker) execute(ctx context.Context, t *Task) {
	w.current = t.ID
	w.currentCanceled = false

	w.logger.Debug("decoding",
		"task_id", t.ID,
		"key", t.Key,
		"priority", t.Priority)

	artifact, err := w.decoder.Decode(ctx, t.Request)

	if ctx.Err() != nil {
		// Shutting down. The scheduler settles leftover waiters itself.
		w.current = uuid.Nil
		return
	}

	// Pick up control traffic that arrived during the decode before
	// deciding whether anyone still wants this result.
	w.drain()

	canceled := w.currentCanceled
	w.current = uuid.Nil
	w.currentCanceled = false

	if canceled {
		w.logger.Debug("dropping result of canceled task",
			"task_id", t.ID,
			"key", t.Key)
		return
	}

	w.deliver(result{taskID: t.ID, artifact: artifact, err: err})
}
