// Package simulation provides the thin component-model surface
// SyncManager is built against: a Simulation object exposing
// getCurrentSimCycle, insertActivity, a per-thread instanceVec, and
// getExit. Each worker thread owns exactly one TimeVortex and drains it
// cooperatively, single-threaded.
package simulation

import (
	"log"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/exit"
	"github.com/distsim/syncore/syncore/timevortex"
)

// PerThread is the view SyncManager holds of its own worker: it can read
// the current virtual time and insert new activities into this thread's
// TimeVortex. It is the per-element type of instanceVec.
type PerThread interface {
	GetCurrentSimCycle() activity.SimTime
	InsertActivity(a activity.Activity)
}

// Simulation is the full component-model surface: a per-thread
// instanceVec indexed by thread number, and the rank's single Exit.
type Simulation interface {
	InstanceVec(thread int) PerThread
	GetExit() *exit.Exit
}

// worker is the concrete PerThread: one TimeVortex plus the virtual-time
// cursor of the event currently being handled.
type worker struct {
	vortex timevortex.TimeVortex
	now    activity.SimTime
}

// newWorker creates an empty worker with its own TimeVortex.
func newWorker() *worker {
	return &worker{vortex: timevortex.New()}
}

func (w *worker) GetCurrentSimCycle() activity.SimTime { return w.now }

func (w *worker) InsertActivity(a activity.Activity) {
	if a.DeliveryTime() < w.now {
		log.Panicf(
			"syncore/simulation: cannot insert activity at time %d in the past (now=%d)",
			a.DeliveryTime(), w.now)
	}
	w.vortex.Insert(a)
}

// Rank is the concrete Simulation for one rank: numThreads workers plus
// the rank's Exit.
type Rank struct {
	workers []*worker
	ex      *exit.Exit
}

// NewRank creates a Rank with numThreads workers, each with an empty
// TimeVortex, sharing the given Exit.
func NewRank(numThreads int, ex *exit.Exit) *Rank {
	r := &Rank{workers: make([]*worker, numThreads), ex: ex}
	for i := range r.workers {
		r.workers[i] = newWorker()
	}
	return r
}

func (r *Rank) InstanceVec(thread int) PerThread { return r.workers[thread] }

func (r *Rank) GetExit() *exit.Exit { return r.ex }

// Vortex exposes thread's TimeVortex directly, for bootstrap code that
// needs to seed initial activities or inspect queue depth. It is not part
// of the Simulation interface SyncManager depends on.
func (r *Rank) Vortex(thread int) timevortex.TimeVortex {
	return r.workers[thread].vortex
}

// RunThread drains thread's TimeVortex to completion, cooperatively and
// single-threaded: pop the earliest activity, advance now to its delivery
// time, hand it to its Handler. There is no cross-thread contention to
// arbitrate here because each thread owns its vortex exclusively.
func (r *Rank) RunThread(thread int) error {
	w := r.workers[thread]

	for !w.vortex.Empty() {
		a := w.vortex.Pop()
		w.now = a.DeliveryTime()

		if err := a.Handler().Handle(a); err != nil {
			return err
		}
	}
	return nil
}
