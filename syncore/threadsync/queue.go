// Package threadsync implements the intra-rank cross-thread flush: a
// single-producer/single-consumer drop box per sender thread, and the
// ThreadSync phase that drains every inbox into its owner's TimeVortex at
// each sync epoch — one unlocked slice between two worker threads,
// drained only while both sides are parked at a barrier.
package threadsync

import "github.com/distsim/syncore/syncore/activity"

// Queue is a ThreadSyncQueue: the producer thread appends without
// locking (it is pinned to this (sender, receiver) pair for the whole
// run), and the consumer thread — the destination — drains it only
// during its own ThreadSync epoch, when every producer is parked at the
// SyncManager barrier. That happens-before edge, established by the
// barrier's mutex rather than by an atomic on this type, is what makes
// the append/drain pair safe without locks or atomics; it deliberately
// does not generalize to multiple consumers.
type Queue struct {
	destThread int
	items      []*activity.Event
}

// NewQueue creates the inbox a sender thread offers messages to,
// destined ultimately for destThread.
func NewQueue(destThread int) *Queue {
	return &Queue{destThread: destThread}
}

// DestThread returns the thread id this queue's consumer runs on.
func (q *Queue) DestThread() int { return q.destThread }

// Enqueue appends e. Implements queue.ActivityQueue so a Link can deposit
// straight into it. Producer-only; never called by the consumer.
func (q *Queue) Enqueue(e *activity.Event) {
	q.items = append(q.items, e)
}

// Drain returns and clears every item currently queued. Consumer-only;
// must only be called while the producer is blocked at a barrier.
func (q *Queue) Drain() []*activity.Event {
	if len(q.items) == 0 {
		return nil
	}
	items := q.items
	q.items = nil
	return items
}

// Len reports how many items are currently queued, for diagnostics.
func (q *Queue) Len() int { return len(q.items) }
