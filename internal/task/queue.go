package task

import "github.com/google/uuid"

// workQueue holds one worker's pending tasks in two priority tiers. Within
// a tier tasks drain newest first, so the artifact requested most recently
// is the next one produced. Queues stay small in practice, a screenful of
// thumbnails at most, so removal by id is a linear scan.
type workQueue struct {
	high []*Task
	low  []*Task
}

// push appends the task to the tail of its priority tier, making it the
// next candidate within that tier.
func (q *workQueue) push(t *Task) {
	if t.Priority == PriorityHigh {
		q.high = append(q.high, t)
	} else {
		q.low = append(q.low, t)
	}
}

// pop removes and returns the next task to execute: the newest high
// priority task if any exist, otherwise the newest low priority task.
// Returns nil when both tiers are empty.
func (q *workQueue) pop() *Task {
	if n := len(q.high); n > 0 {
		t := q.high[n-1]
		q.high = q.high[:n-1]
		return t
	}
	if n := len(q.low); n > 0 {
		t := q.low[n-1]
		q.low = q.low[:n-1]
		return t
	}
	return nil
}

// remove deletes the task with the given id from whichever tier holds it
// and returns it, or nil if the id is not queued here.
func (q *workQueue) remove(id uuid.UUID) *Task {
	if t := removeByID(&q.high, id); t != nil {
		return t
	}
	return removeByID(&q.low, id)
}

// bump moves the task with the given id to the tail of the target tier and
// updates its priority. A bump within the same tier still moves the task
// to the tail, refreshing its position. Returns false if the id is not
// queued here.
func (q *workQueue) bump(id uuid.UUID, p Priority) bool {
	t := q.remove(id)
	if t == nil {
		return false
	}
	t.Priority = p
	q.push(t)
	return true
}

// size returns the number of queued tasks across both tiers.
func (q *workQueue) size() int {
	return len(q.high) + len(q.low)
}

func removeByID(tier *[]*Task, id uuid.UUID) *Task {
	for i, t := range *tier {
		if t.ID == id {
			*tier = append((*tier)[:i], (*tier)[i+1:]...)
			return t
		}
	}
	return nil
}
