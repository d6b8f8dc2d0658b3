package queue

import (
	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/timevortex"
)

// Local is the ActivityQueue variant for a link whose source and
// destination live in the same thread: Enqueue inserts directly into the
// destination TimeVortex, no cross-thread or cross-rank hop required.
type Local struct {
	Vortex timevortex.TimeVortex
}

// NewLocal wraps a destination TimeVortex as an ActivityQueue.
func NewLocal(v timevortex.TimeVortex) Local {
	return Local{Vortex: v}
}

// Enqueue inserts e directly into the destination TimeVortex.
func (l Local) Enqueue(e *activity.Event) {
	l.Vortex.Insert(e)
}
