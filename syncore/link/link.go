// Package link implements Link, the addressed endpoint user components
// send events through: validate, compute a delivery time strictly ahead
// of the sync horizon, then hand the event to whatever ActivityQueue
// substrate is plugged in underneath.
package link

import (
	"log"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/queue"
)

// Link is addressed by an activity.LinkID, owns a destination
// ActivityQueue, and carries a fixed latency added to every send.
// Latency must be > 0 for any link crossing a thread or rank boundary; it
// may be 0 for a purely intra-thread link.
type Link struct {
	ID      activity.LinkID
	Latency activity.SimTime
	Dest    queue.ActivityQueue
}

// New creates a Link with an Uninitialized destination queue. SetDest
// must be called once the real destination substrate is known, before
// the link is used.
func New(id activity.LinkID, latency activity.SimTime) *Link {
	if latency < 0 {
		log.Panicf("syncore/link: link %d has negative latency %d", id, latency)
	}
	return &Link{
		ID:      id,
		Latency: latency,
		Dest:    queue.Uninitialized{LinkID: id},
	}
}

// SetDest finalizes which substrate this link delivers into. Called once,
// by whichever sync tier registered the link (ThreadSync or RankSync), or
// directly by the bootstrap for an intra-thread link.
func (l *Link) SetDest(dest queue.ActivityQueue) {
	l.Dest = dest
}

// Send computes deliveryTime = now + latency + relativeDelay and enqueues
// the event on the destination substrate. delay must be >= 0, so the
// resulting deliveryTime is never earlier than now; it is strictly later
// whenever latency + relativeDelay > 0, as on any cross-thread or
// cross-rank link, whose latency is > 0. priority carries straight through
// to the enqueued Event, so a redelivery across a thread or rank boundary
// preserves the sender's original ordering key instead of resetting it.
func (l *Link) Send(now, relativeDelay activity.SimTime, priority int32, payload []byte) *activity.Event {
	if relativeDelay < 0 {
		log.Panicf("syncore/link: link %d sent with negative delay %d", l.ID, relativeDelay)
	}

	deliveryTime := now + l.Latency + relativeDelay
	evt := activity.NewEvent(deliveryTime, priority, l.ID, payload)
	l.Dest.Enqueue(evt)

	return evt
}

// SendInitData enqueues an event during the init/bootstrap phase, before
// any sync horizon has been established. It bypasses no invariant that
// Send enforces — it simply communicates intent at the call site.
func (l *Link) SendInitData(priority int32, payload []byte) *activity.Event {
	evt := activity.NewEvent(l.Latency, priority, l.ID, payload)
	l.Dest.Enqueue(evt)
	return evt
}
