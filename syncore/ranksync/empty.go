package ranksync

import (
	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/queue"
)

// empty is the EmptyRankSync variant: a single-rank run never crosses a
// rank boundary, so RegisterLink is unreachable by construction and
// falls back to the Uninitialized tripwire if it is ever called anyway.
type empty struct{}

// NewEmpty returns the RankSync used when numRanks == 1.
func NewEmpty() RankSync {
	return empty{}
}

func (empty) RegisterLink(_, _ int, linkID activity.LinkID, _ queue.ActivityQueue) queue.ActivityQueue {
	return queue.Uninitialized{LinkID: linkID}
}

func (empty) Execute(_ int, _ activity.SimTime) error { return nil }

func (empty) ExchangeLinkInitData(_ int, _ *int64) error { return nil }

func (empty) FinalizeLinkConfigurations() {}

func (empty) NextSyncTime() activity.SimTime { return activity.MaxSimTime }

// ReduceRefCount has no peers to reduce against, so it returns local
// unchanged. SyncManager's RANK epoch still calls it through Exit.Check on
// a single rank whenever that epoch is chosen; the sum is then just this
// rank's own count.
func (empty) ReduceRefCount(local uint64) (uint64, error) { return local, nil }
