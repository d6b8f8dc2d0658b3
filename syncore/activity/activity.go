// Package activity defines the data model shared by every tier of the
// synchronization core: simulated time, ranks, links, and the scheduled
// items ("activities") that a TimeVortex orders.
package activity

import "math"

// SimTime is a monotonic virtual-time tick. Zero at the start of a run.
type SimTime int64

// MaxSimTime is the "never" sentinel used by nextSyncTime fields and
// similarly unreachable deadlines.
const MaxSimTime SimTime = math.MaxInt64

// LinkID is an opaque identifier, globally unique across all ranks for the
// duration of a run.
type LinkID uint64

// RankInfo identifies one worker uniquely by the pair (rank, thread).
// RankInfo is also used to describe topology sizes, e.g. numRanks.Rank is
// the number of ranks and numRanks.Thread is the number of threads per
// rank.
type RankInfo struct {
	Rank   int
	Thread int
}

// Less orders RankInfo by rank then thread, matching the spec's "total
// order by rank then thread".
func (r RankInfo) Less(other RankInfo) bool {
	if r.Rank != other.Rank {
		return r.Rank < other.Rank
	}
	return r.Thread < other.Thread
}

// Handler is the destination of an Activity. One Activity is always bound
// to exactly one Handler.
type Handler interface {
	Handle(a Activity) error
}

// Activity is anything a TimeVortex can order: a delivered Event or the
// Base that SyncManager arms with itself as Handler. Two activities must
// never compare equal under
// (DeliveryTime, Priority, OrderTag).
type Activity interface {
	DeliveryTime() SimTime
	Priority() int32
	OrderTag() uint64
	SetOrderTag(tag uint64)
	Handler() Handler
}

// Base provides the common fields and accessors that every concrete
// Activity embeds.
type Base struct {
	deliveryTime SimTime
	priority     int32
	orderTag     uint64
	handler      Handler
}

// NewBase creates a Base for an activity due at t with the given
// priority. OrderTag is left zero; TimeVortex.Insert assigns it from its
// per-thread monotonic counter so ties are broken deterministically.
func NewBase(t SimTime, priority int32, handler Handler) Base {
	return Base{deliveryTime: t, priority: priority, handler: handler}
}

// DeliveryTime returns the time the activity should fire.
func (b Base) DeliveryTime() SimTime { return b.deliveryTime }

// Priority returns the tie-break priority; higher values run first.
func (b Base) Priority() int32 { return b.priority }

// OrderTag returns the insertion-order tie-break value.
func (b Base) OrderTag() uint64 { return b.orderTag }

// SetOrderTag is called by TimeVortex.Insert only.
func (b *Base) SetOrderTag(tag uint64) { b.orderTag = tag }

// Handler returns the handler bound to this activity.
func (b Base) Handler() Handler { return b.handler }

// Less implements the Activity ordering: earlier delivery time first, then
// higher priority, then lower (earlier) order tag.
func Less(a, b Activity) bool {
	if a.DeliveryTime() != b.DeliveryTime() {
		return a.DeliveryTime() < b.DeliveryTime()
	}
	if a.Priority() != b.Priority() {
		return a.Priority() > b.Priority()
	}
	return a.OrderTag() < b.OrderTag()
}
