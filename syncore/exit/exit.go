// Package exit implements the termination detector: a distributed,
// sharded reference count that signals end-of-simulation. It
// deliberately holds no back-reference to Simulation or RankSync, to
// prevent cycles in the lifecycle graph, so every global operation is
// handed a reduction function by its caller instead of reaching for one
// itself.
package exit

import (
	"log"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/barrier"
)

// Reducer performs RankSync's global all-reduce of the local count and
// returns the cross-rank sum. SyncManager supplies this; Exit never
// touches RankSync directly.
type Reducer func(local uint64) (uint64, error)

// Exit is the sharded reference-count termination detector. RefInc and
// RefDec take the spinlock on every call and update the per-thread
// counter, the total and the diagnostic id set together under it; the
// per-thread shards do not take refInc/refDec off the lock.
type Exit struct {
	lock barrier.Spinlock

	perThread  []uint64
	total      uint64
	components map[uint64]int32

	singleRank bool
	endTime    activity.SimTime
	terminated bool
}

// New creates an Exit for a rank with the given number of worker threads.
// singleRank selects the degenerate local-zero-test path.
func New(numThreads int, singleRank bool) *Exit {
	return &Exit{
		perThread:  make([]uint64, numThreads),
		components: make(map[uint64]int32),
		singleRank: singleRank,
		endTime:    activity.MaxSimTime,
	}
}

// RefInc records that componentId has started work expected to produce
// further events. Safe to call concurrently from any thread.
func (e *Exit) RefInc(componentID uint64, thread int) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.components[componentID]++
	e.perThread[thread]++
	e.total++
}

// RefDec records that componentId has run out of work. A component must
// call this at most once per matching RefInc; a duplicate or unbalanced
// call is a termination anomaly, not something to paper over by letting
// the uint64 counters wrap, so it panics with the component's current
// count for diagnosis.
func (e *Exit) RefDec(componentID uint64, thread int) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.components[componentID] <= 0 {
		log.Panicf(
			"syncore/exit: refDec below zero for component %d on thread %d (count=%d, total=%d)",
			componentID, thread, e.components[componentID], e.total)
	}

	e.components[componentID]--
	e.perThread[thread]--
	e.total--
}

// RefCount returns a non-blocking snapshot of the total. It is only
// consistent with perThread's sum at a sync epoch, when no refInc/refDec
// can be in flight.
func (e *Exit) RefCount() uint64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.total
}

// localSum adds every thread's counter directly, bypassing the
// already-consistent total — used by Check to build the value handed to
// the reducer.
func (e *Exit) localSum() uint64 {
	e.lock.Lock()
	defer e.lock.Unlock()

	var sum uint64
	for _, c := range e.perThread {
		sum += c
	}
	return sum
}

// Check performs the multi-rank termination test: a global reduction of
// per-rank counters over the RankSync transport. If the global sum is
// zero, it publishes endTime and returns terminated. Callers must only
// invoke this on thread 0, with every other thread already parked at the
// surrounding barrier, so no refDec can race the read.
func (e *Exit) Check(now activity.SimTime, reduce Reducer) (terminated bool, err error) {
	if e.terminated {
		return true, nil
	}

	global, err := reduce(e.localSum())
	if err != nil {
		return false, err
	}

	if global == 0 {
		e.terminated = true
		e.endTime = now
		return true, nil
	}
	return false, nil
}

// CheckLocal is the single-rank degenerate path: the termination check
// degenerates to a local zero test performed by the thread sync, with no
// transport round trip.
func (e *Exit) CheckLocal(now activity.SimTime) (terminated bool) {
	if e.terminated {
		return true
	}

	if e.localSum() == 0 {
		e.terminated = true
		e.endTime = now
		return true
	}
	return false
}

// SingleRank reports whether this Exit was constructed for the
// degenerate single-rank path.
func (e *Exit) SingleRank() bool { return e.singleRank }

// Terminated reports whether a prior Check/CheckLocal call declared
// termination.
func (e *Exit) Terminated() bool { return e.terminated }

// EndTime returns the published termination time, or MaxSimTime if the
// run has not terminated yet.
func (e *Exit) EndTime() activity.SimTime { return e.endTime }
