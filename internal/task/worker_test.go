package task

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmtc233/rawviewer/internal/decode"
)

// startWorker runs a single worker until the test ends and returns it
// together with its delivery channel.
func startWorker(t *testing.T, d decode.Decoder, queueSize int) (*worker, <-chan result) {
	t.Helper()

	results := make(chan result, 16)
	w := newWorker(0, queueSize, d, func(r result) { results <- r }, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go w.run(ctx, &wg)

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return w, results
}

func nextResult(t *testing.T, results <-chan result) result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
		return result{}
	}
}

func assertNoResult(t *testing.T, results <-chan result) {
	t.Helper()
	select {
	case r := <-results:
		t.Fatalf("unexpected result for task %s", r.taskID)
	case <-time.After(100 * time.Millisecond):
		// No result arrived, as expected.
	}
}

func enqueue(t *testing.T, w *worker, task *Task) {
	t.Helper()
	require.NoError(t, w.send(message{kind: msgEnqueue, task: task}))
}

func decodeTask(source string, prio Priority) *Task {
	return &Task{
		ID:       uuid.New(),
		Key:      source,
		Request:  decode.Request{Source: source, Kind: decode.KindThumbnail},
		Priority: prio,
	}
}

func TestWorkerExecutionOrder(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{started: make(chan string), release: make(chan struct{})}
	w, results := startWorker(t, d, 16)

	// Hold the worker on a first task so the rest pile up in its queue.
	blocker := decodeTask("blocker", PriorityHigh)
	enqueue(t, w, blocker)
	awaitStart(t, d.started, "blocker")

	a := decodeTask("a", PriorityLow)
	b := decodeTask("b", PriorityLow)
	c := decodeTask("c", PriorityHigh)
	enqueue(t, w, a)
	enqueue(t, w, b)
	enqueue(t, w, c)

	close(d.release)

	// High priority work runs first, then low priority newest first.
	awaitStart(t, d.started, "c")
	awaitStart(t, d.started, "b")
	awaitStart(t, d.started, "a")

	assert.Equal(t, blocker.ID, nextResult(t, results).taskID)
	assert.Equal(t, c.ID, nextResult(t, results).taskID)
	assert.Equal(t, b.ID, nextResult(t, results).taskID)
	assert.Equal(t, a.ID, nextResult(t, results).taskID)
}

func TestWorkerBumpReordersQueuedTask(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{started: make(chan string), release: make(chan struct{})}
	w, results := startWorker(t, d, 16)

	blocker := decodeTask("blocker", PriorityHigh)
	enqueue(t, w, blocker)
	awaitStart(t, d.started, "blocker")

	a := decodeTask("a", PriorityLow)
	b := decodeTask("b", PriorityLow)
	enqueue(t, w, a)
	enqueue(t, w, b)
	require.NoError(t, w.send(message{kind: msgBump, id: a.ID, prio: PriorityHigh}))

	close(d.release)

	awaitStart(t, d.started, "a")
	awaitStart(t, d.started, "b")

	assert.Equal(t, blocker.ID, nextResult(t, results).taskID)
	assert.Equal(t, a.ID, nextResult(t, results).taskID, "bumped task should run before newer low work")
	assert.Equal(t, b.ID, nextResult(t, results).taskID)
}

func TestWorkerCancelRemovesQueuedTask(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{started: make(chan string), release: make(chan struct{})}
	w, results := startWorker(t, d, 16)

	blocker := decodeTask("blocker", PriorityHigh)
	enqueue(t, w, blocker)
	awaitStart(t, d.started, "blocker")

	a := decodeTask("a", PriorityLow)
	enqueue(t, w, a)
	require.NoError(t, w.send(message{kind: msgCancel, id: a.ID}))

	close(d.release)

	assert.Equal(t, blocker.ID, nextResult(t, results).taskID)
	assertNoResult(t, results)
	assert.Equal(t, []string{"blocker"}, d.decoded(), "canceled task must never reach the decoder")
}

func TestWorkerCancelDuringExecutionSuppressesResult(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{started: make(chan string), release: make(chan struct{}, 1)}
	w, results := startWorker(t, d, 16)

	a := decodeTask("a", PriorityHigh)
	enqueue(t, w, a)
	awaitStart(t, d.started, "a")

	// The cancel lands while the decode is running, so the work cannot be
	// skipped, but its result must be dropped.
	require.NoError(t, w.send(message{kind: msgCancel, id: a.ID}))
	d.release <- struct{}{}

	assertNoResult(t, results)
	assert.Equal(t, []string{"a"}, d.decoded())
}

func TestWorkerDeliversDecodeErrors(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{
		outcomeFn: func(req decode.Request) (*decode.Artifact, error) {
			return nil, fmt.Errorf("%w: corrupt header", decode.ErrDecodeFailed)
		},
	}
	w, results := startWorker(t, d, 16)

	a := decodeTask("a", PriorityHigh)
	enqueue(t, w, a)

	r := nextResult(t, results)
	assert.Equal(t, a.ID, r.taskID)
	assert.Nil(t, r.artifact)
	assert.ErrorIs(t, r.err, decode.ErrDecodeFailed)
}

func TestWorkerSendFailsWhenInboxFull(t *testing.T) {
	t.Parallel()

	// The worker is never started, so nothing drains the inbox.
	w := newWorker(0, 1, &stubDecoder{}, func(result) {}, testLogger())

	require.NoError(t, w.send(message{kind: msgEnqueue, task: decodeTask("a", PriorityLow)}))

	err := w.send(message{kind: msgEnqueue, task: decodeTask("b", PriorityLow)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "capacity 1")
}

func TestWorkerShutdownDiscardsInFlightResult(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{started: make(chan string), release: make(chan struct{})}

	results := make(chan result, 1)
	w := newWorker(0, 4, d, func(r result) { results <- r }, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go w.run(ctx, &wg)

	a := decodeTask("a", PriorityHigh)
	enqueue(t, w, a)
	awaitStart(t, d.started, "a")

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for worker to stop")
	}

	assertNoResult(t, results)
}

func TestWorkerCancelOfUnknownTaskIsNoOp(t *testing.T) {
	t.Parallel()

	d := &stubDecoder{}
	w, results := startWorker(t, d, 16)

	// Unknown ids arrive routinely because cancels are broadcast to the
	// whole pool.
	require.NoError(t, w.send(message{kind: msgCancel, id: uuid.New()}))

	a := decodeTask("a", PriorityLow)
	enqueue(t, w, a)

	r := nextResult(t, results)
	assert.Equal(t, a.ID, r.taskID)
	require.NotNil(t, r.artifact)
	assert.NoError(t, r.err)
}
