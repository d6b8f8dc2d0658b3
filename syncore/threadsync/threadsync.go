package threadsync

import (
	"log"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/link"
	"github.com/distsim/syncore/syncore/queue"
	"github.com/distsim/syncore/syncore/timeconv"
)

// ThreadSync is the intra-rank cross-thread sync capability: one per
// thread, it owns the local-delivery side of every cross-thread link
// targeting this thread and drains their inbound queues at each epoch.
// Concrete and Empty are the two variants — a rank with a single thread
// gets Empty, making its RegisterLink unreachable by construction.
type ThreadSync interface {
	// RegisterLink remembers the mapping from LinkID to the local-delivery
	// Link used to reinsert drained events into this thread's TimeVortex.
	RegisterLink(id activity.LinkID, dest queue.ActivityQueue) *link.Link

	// GetQueueForThread returns the inbox this thread offers to
	// senderThread, creating it on first use.
	GetQueueForThread(senderThread int) *Queue

	// Before drains every inbound queue into the destination TimeVortex.
	Before(now activity.SimTime)

	// After is a no-op hook reserved for post-rank-sync bookkeeping. In a
	// RANK epoch SyncManager calls it between two barriers; in a THREAD
	// epoch it runs inside Execute with no barrier around it.
	After()

	// Execute runs Before then After; used when no RankSync exchange is
	// needed this epoch.
	Execute(now activity.SimTime)

	// ProcessLinkInitData drains inbound queues during the init phase,
	// before any sync horizon has been established.
	ProcessLinkInitData()

	// FinalizeLinkConfigurations freezes the link table; RegisterLink
	// after this point is a configuration error.
	FinalizeLinkConfigurations()

	// NextSyncTime returns this tier's current deadline.
	NextSyncTime() activity.SimTime

	// AdvanceNextSyncTime pushes the deadline forward by one maxPeriod
	// tick from now. SyncManager calls this once per THREAD or RANK epoch
	// after draining this tier, so the next epoch re-arms at a strictly
	// later time instead of the same timestamp forever.
	AdvanceNextSyncTime(now activity.SimTime)
}

type concrete struct {
	thisThread int
	links      map[activity.LinkID]*link.Link
	inboxes    map[int]*Queue
	maxPeriod  timeconv.TimeConverter

	nextSyncTime activity.SimTime
	frozen       bool
}

// New creates the concrete ThreadSync for thisThread, bounding its epoch
// cadence by maxPeriod.
func New(thisThread int, maxPeriod timeconv.TimeConverter) ThreadSync {
	return &concrete{
		thisThread:   thisThread,
		links:        make(map[activity.LinkID]*link.Link),
		inboxes:      make(map[int]*Queue),
		maxPeriod:    maxPeriod,
		nextSyncTime: maxPeriod.Period(),
	}
}

func (t *concrete) RegisterLink(id activity.LinkID, dest queue.ActivityQueue) *link.Link {
	if t.frozen {
		log.Panicf("syncore/threadsync: link %d registered after finalization", id)
	}
	if _, exists := t.links[id]; exists {
		log.Panicf("syncore/threadsync: link %d registered twice", id)
	}

	l := link.New(id, 0)
	l.SetDest(dest)
	t.links[id] = l

	return l
}

func (t *concrete) GetQueueForThread(senderThread int) *Queue {
	q, ok := t.inboxes[senderThread]
	if !ok {
		q = NewQueue(t.thisThread)
		t.inboxes[senderThread] = q
	}
	return q
}

func (t *concrete) Before(now activity.SimTime) {
	for _, inbox := range t.inboxes {
		for _, evt := range inbox.Drain() {
			t.reinsert(now, evt)
		}
	}
}

func (t *concrete) reinsert(now activity.SimTime, evt *activity.Event) {
	l, ok := t.links[evt.LinkID]
	if !ok {
		log.Panicf(
			"syncore/threadsync: thread %d received event for unknown link %d",
			t.thisThread, evt.LinkID)
	}

	delay := evt.DeliveryTime() - now
	if delay < 0 {
		log.Panicf(
			"syncore/threadsync: event for link %d arrived after its delivery "+
				"time (now=%d, deliveryTime=%d)", evt.LinkID, now, evt.DeliveryTime())
	}

	l.Send(now, delay, evt.Priority(), evt.Payload)
}

func (t *concrete) After() {
	// Reserved extension point; see ThreadSync.After's doc comment.
}

func (t *concrete) Execute(now activity.SimTime) {
	t.Before(now)
	t.After()
}

func (t *concrete) ProcessLinkInitData() {
	for _, inbox := range t.inboxes {
		for _, evt := range inbox.Drain() {
			l, ok := t.links[evt.LinkID]
			if !ok {
				log.Panicf(
					"syncore/threadsync: init data for unknown link %d", evt.LinkID)
			}
			l.SendInitData(evt.Priority(), evt.Payload)
		}
	}
}

func (t *concrete) FinalizeLinkConfigurations() {
	t.frozen = true
}

func (t *concrete) NextSyncTime() activity.SimTime {
	return t.nextSyncTime
}

func (t *concrete) AdvanceNextSyncTime(now activity.SimTime) {
	t.nextSyncTime = t.maxPeriod.NCyclesLater(1, now)
}
