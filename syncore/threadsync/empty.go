package threadsync

import (
	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/link"
	"github.com/distsim/syncore/syncore/queue"
)

// empty is EmptyThreadSync: installed when a rank has only one thread, so
// there is no intra-rank cross-thread traffic to flush. Its RegisterLink
// is unreachable by construction — a single-thread rank never creates a
// cross-thread link — and returns an Uninitialized queue as a tripwire if
// that invariant is ever violated.
type empty struct{}

// NewEmpty creates the EmptyThreadSync variant.
func NewEmpty() ThreadSync { return empty{} }

func (empty) RegisterLink(id activity.LinkID, _ queue.ActivityQueue) *link.Link {
	l := link.New(id, 0)
	l.SetDest(queue.Uninitialized{LinkID: id})
	return l
}

func (empty) GetQueueForThread(int) *Queue { return NewQueue(0) }

func (empty) Before(activity.SimTime) {}

func (empty) After() {}

func (empty) Execute(activity.SimTime) {}

func (empty) ProcessLinkInitData() {}

func (empty) FinalizeLinkConfigurations() {}

func (empty) NextSyncTime() activity.SimTime { return activity.MaxSimTime }

func (empty) AdvanceNextSyncTime(activity.SimTime) {}
