package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	// WorkerCount determines how many decode workers run concurrently
	WorkerCount int

	// QueueSize bounds each worker's inbox; submissions beyond it fail
	// with ErrQueueFull rather than block
	QueueSize int
}

// DefaultSchedulerConfig returns a SchedulerConfig with reasonable defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// waiter is one caller's claim on a task outcome. It resolves exactly
// once: out is written before done is closed, and only by whoever removed
// the waiter from its entry while holding the scheduler lock.
type waiter struct {
	id   uuid.UUID
	out  outcome
	done chan struct{}
}

// outcome is the final state a waiter observes.
type outcome struct {
	artifact *decode.Artifact
	err      error
}

func newWaiter() *waiter {
	return &waiter{id: uuid.New(), done: make(chan struct{})}
}

func (w *waiter) resolve(o outcome) {
	w.out = o
	close(w.done)
}

// entry tracks the live task for a key together with everyone waiting on
// it. prio mirrors the task's effective priority so escalation decisions
// never touch the Task value owned by a worker.
type entry struct {
	key     string
	taskID  uuid.UUID
	prio    Priority
	waiters []*waiter
}

// removeWaiter deletes w from the entry's waiter list, reporting whether
// it was present. Callers must hold the scheduler lock.
func (e *entry) removeWaiter(w *waiter) bool {
	for i, cur := range e.waiters {
		if cur == w {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Scheduler routes decode requests to a fixed pool of workers. Concurrent
// requests for the same key share a single task, requests someone is
// waiting on jump ahead of speculative ones, and claims can be withdrawn
// when results are no longer needed.
type Scheduler struct {
	pool       *pool
	logger     *slog.Logger
	cancelFunc context.CancelFunc

	mu     sync.Mutex
	byKey  map[string]*entry
	byTask map[uuid.UUID]*entry
	closed bool
}

// NewScheduler creates a scheduler and starts its workers. Callers must
// Close it to stop them.
func NewScheduler(decoder decode.Decoder, config SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	if decoder == nil {
		return nil, ErrNilDecoder
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	// Apply defaults for invalid config values
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", DefaultSchedulerConfig().WorkerCount)
		config.WorkerCount = DefaultSchedulerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		logger.Warn("invalid queue size specified, using default",
			"specified_size", config.QueueSize,
			"default_size", DefaultSchedulerConfig().QueueSize)
		config.QueueSize = DefaultSchedulerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		logger:     logger.With("component", "scheduler"),
		cancelFunc: cancel,
		byKey:      make(map[string]*entry),
		byTask:     make(map[uuid.UUID]*entry),
	}
	s.pool = newPool(config.WorkerCount, config.QueueSize, decoder, s.resolve, logger)
	s.pool.start(ctx)

	s.logger.Debug("scheduler started",
		"worker_count", config.WorkerCount,
		"queue_size", config.QueueSize)

	return s, nil
}

// Submit registers interest in the artifact for key. If a task for the key
// is already in flight, the caller attaches to it as an additional waiter
// and escalates it to the high tier when the new request outranks it. The
// returned handle resolves when the task finishes, fails, or is canceled.
//
// The enqueue happens inside the same critical section that publishes the
// task in the dedup index, so a later bump for this key always reaches the
// owning worker after the task itself.
func (s *Scheduler) Submit(key string, req decode.Request, prio Priority) (*Handle, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	w := newWaiter()

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrSchedulerClosed
	}

	if e, ok := s.byKey[key]; ok {
		e.waiters = append(e.waiters, w)
		escalate := prio == PriorityHigh && e.prio == PriorityLow
		if escalate {
			e.prio = PriorityHigh
		}
		taskID := e.taskID
		s.mu.Unlock()

		if escalate {
			s.pool.bump(taskID, PriorityHigh)
			s.logger.Debug("escalated in-flight task",
				"task_id", taskID,
				"key", key)
		} else {
			s.logger.Debug("attached to in-flight task",
				"task_id", taskID,
				"key", key,
				"request_id", w.id)
		}

		return &Handle{scheduler: s, taskID: taskID, waiter: w}, nil
	}

	t := &Task{ID: w.id, Key: key, Request: req, Priority: prio}
	e := &entry{key: key, taskID: t.ID, prio: prio, waiters: []*waiter{w}}
	s.byKey[key] = e
	s.byTask[t.ID] = e

	if err := s.pool.assign(t); err != nil {
		delete(s.byKey, key)
		delete(s.byTask, t.ID)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Unlock()

	s.logger.Debug("task submitted",
		"task_id", t.ID,
		"key", key,
		"priority", prio)

	return &Handle{scheduler: s, taskID: t.ID, waiter: w}, nil
}

// InFlight returns the number of keys with a live task.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

// resolve is the delivery callback workers invoke with a finished task's
// outcome. It retires the dedup entry and wakes every waiter with the
// shared outcome. Results for tasks no longer in the index, canceled while
// they were executing, are dropped.
func (s *Scheduler) resolve(r result) {
	s.mu.Lock()
	e, ok := s.byTask[r.taskID]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("dropping result with no waiters", "task_id", r.taskID)
		return
	}
	delete(s.byKey, e.key)
	delete(s.byTask, r.taskID)
	waiters := e.waiters
	e.waiters = nil
	s.mu.Unlock()

	for _, w := range waiters {
		w.resolve(outcome{artifact: r.artifact, err: r.err})
	}

	if r.err != nil {
		s.logger.Debug("task failed",
			"task_id", r.taskID,
			"key", e.key,
			"waiters", len(waiters),
			"error", r.err)
	} else {
		s.logger.Debug("task completed",
			"task_id", r.taskID,
			"key", e.key,
			"waiters", len(waiters))
	}
}

// cancelWaiter withdraws one waiter's claim on a task. The waiter resolves
// with ErrCanceled immediately. When the last waiter withdraws, the task
// itself is canceled: removed from the index so a late result is dropped,
// and broadcast to the workers so queued work is discarded before it runs.
func (s *Scheduler) cancelWaiter(taskID uuid.UUID, w *waiter) {
	s.mu.Lock()
	e, ok := s.byTask[taskID]
	if !ok || !e.removeWaiter(w) {
		// Already resolved, or this handle was canceled before.
		s.mu.Unlock()
		return
	}
	last := len(e.waiters) == 0
	if last {
		delete(s.byKey, e.key)
		delete(s.byTask, taskID)
	}
	s.mu.Unlock()

	w.resolve(outcome{err: ErrCanceled})

	if last {
		s.pool.cancel(taskID)
		s.logger.Debug("task canceled", "task_id", taskID, "key", e.key)
	} else {
		s.logger.Debug("waiter detached",
			"task_id", taskID,
			"key", e.key,
			"request_id", w.id)
	}
}

// Close stops accepting submissions, shuts the workers down, and resolves
// every still-pending waiter with ErrSchedulerClosed so no caller blocks
// forever. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancelFunc()
	s.pool.wait()

	// Workers are gone; whatever is left in the index never finished.
	s.mu.Lock()
	var leftovers []*waiter
	for _, e := range s.byTask {
		leftovers = append(leftovers, e.waiters...)
		e.waiters = nil
	}
	s.byKey = make(map[string]*entry)
	s.byTask = make(map[uuid.UUID]*entry)
	s.mu.Unlock()

	for _, w := range leftovers {
		w.resolve(outcome{err: ErrSchedulerClosed})
	}

	s.logger.Info("scheduler stopped", "unresolved_waiters", len(leftovers))
}
