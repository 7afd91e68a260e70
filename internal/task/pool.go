package task

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// pool owns a fixed set of workers and routes work to them. Assignment is
// stateless round-robin; nothing records which worker holds a task, so
// control messages are broadcast to every worker and ignored by all but
// the owner.
type pool struct {
	workers []*worker
	next    atomic.Uint64
	wg      sync.WaitGroup
}

func newPool(
	workerCount int,
	queueSize int,
	decoder decode.Decoder,
	deliver func(result),
	logger *slog.Logger,
) *pool {
	p := &pool{}
	for i := 0; i < workerCount; i++ {
		p.workers = append(p.workers, newWorker(i, queueSize, decoder, deliver, logger))
	}
	return p
}

// start launches one goroutine per worker. They run until ctx is canceled.
func (p *pool) start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go w.run(ctx, &p.wg)
	}
}

// wait blocks until every worker goroutine has exited.
func (p *pool) wait() {
	p.wg.Wait()
}

// assign hands the task to the next worker in round-robin order.
func (p *pool) assign(t *Task) error {
	i := int(p.next.Add(1)-1) % len(p.workers)
	return p.workers[i].send(message{kind: msgEnqueue, task: t})
}

// bump asks every worker to move the task to the tail of the given tier.
// Only the owning worker finds it; the rest ignore the message. Delivery
// is best effort: a full inbox drops the bump and the task keeps its old
// position rather than stalling the caller.
func (p *pool) bump(id uuid.UUID, prio Priority) {
	for _, w := range p.workers {
		_ = w.send(message{kind: msgBump, id: id, prio: prio})
	}
}

// cancel asks every worker to discard the task if it holds it. Delivery is
// best effort: if the owner's inbox is full the task runs anyway and the
// scheduler drops its unwanted result instead.
func (p *pool) cancel(id uuid.UUID) {
	for _, w := range p.workers {
		_ = w.send(message{kind: msgCancel, id: id})
	}
}
