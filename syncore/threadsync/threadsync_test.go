package threadsync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/queue"
	"github.com/distsim/syncore/syncore/threadsync"
	"github.com/distsim/syncore/syncore/timeconv"
	"github.com/distsim/syncore/syncore/timevortex"
)

// Thread A sends an event at t=100 to a link owned by thread B at t=10
// via the CrossThread queue; the next ThreadSync epoch (t=50) drains it;
// the event must fire on B's vortex at exactly t=100, not before.
func TestCrossThreadDeliveryLandsExactlyOnTime(t *testing.T) {
	vortexB := timevortex.New()
	tsB := threadsync.New(1, timeconv.New(40))

	inboxAtoB := tsB.GetQueueForThread(0)
	tsB.RegisterLink(activity.LinkID(7), queue.NewLocal(vortexB))

	// Thread A, at t=10, deposits an event whose deliveryTime is already
	// fixed at 100 (computed by A's own Link using the cross-thread
	// latency when the component called Send).
	inboxAtoB.Enqueue(activity.NewEvent(100, 9, 7, []byte("payload")))

	// Before the epoch at t=50, B's vortex must still be empty — nothing
	// has been drained yet.
	assert.Equal(t, 0, vortexB.Size())

	tsB.Before(50)

	assert.Equal(t, 1, vortexB.Size())
	assert.Equal(t, activity.SimTime(100), vortexB.Front().DeliveryTime())
	assert.Equal(t, int32(9), vortexB.Front().Priority(), "priority must survive the cross-thread drain and reinsertion")
}

func TestUnknownLinkOnDrainPanics(t *testing.T) {
	ts := threadsync.New(0, timeconv.New(10))
	inbox := ts.GetQueueForThread(1)
	inbox.Enqueue(activity.NewEvent(10, 0, 99, nil))

	assert.Panics(t, func() { ts.Before(0) })
}

func TestFinalizeRejectsLateRegistration(t *testing.T) {
	v := timevortex.New()
	ts := threadsync.New(0, timeconv.New(10))
	ts.FinalizeLinkConfigurations()

	assert.Panics(t, func() {
		ts.RegisterLink(1, queue.NewLocal(v))
	})
}

func TestEmptyThreadSyncNeverSyncs(t *testing.T) {
	ts := threadsync.NewEmpty()

	assert.Equal(t, activity.MaxSimTime, ts.NextSyncTime())

	ts.AdvanceNextSyncTime(1000)
	assert.Equal(t, activity.MaxSimTime, ts.NextSyncTime())
}

func TestEmptyThreadSyncQueueIsUninitialized(t *testing.T) {
	ts := threadsync.NewEmpty()
	l := ts.RegisterLink(1, nil)

	assert.Panics(t, func() {
		l.Send(0, 0, 0, nil)
	})
}
