package ranksync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/queue"
	"github.com/distsim/syncore/syncore/ranksync"
	"github.com/distsim/syncore/syncore/timeconv"
	"github.com/distsim/syncore/syncore/timevortex"
	"github.com/distsim/syncore/syncore/transport"
)

// Two ranks, one thread each. Rank 0 holds an event for rank 1 due at
// t=200 on a link with latency 50, so the RankSync exchange carrying it
// must run no later than t=200-50=150; the test runs it at exactly t=150.
// The event must land exactly at t=200 on rank 1's TimeVortex, and rank
// 0's next epoch must fall within 60 ticks of that exchange.
func TestCrossRankDeliveryLandsExactlyOnTime(t *testing.T) {
	fabric := transport.NewInMemoryFabric([]int{0, 1})
	minPartTC := timeconv.New(10)

	rs0 := ranksync.New(
		activity.RankInfo{Rank: 0}, activity.RankInfo{Rank: 2},
		fabric[0], 50, minPartTC)
	rs1 := ranksync.New(
		activity.RankInfo{Rank: 1}, activity.RankInfo{Rank: 2},
		fabric[1], 50, minPartTC)

	vortex1 := timevortex.New()
	const linkID activity.LinkID = 42

	outbox := rs0.RegisterLink(1, 0, linkID, nil)
	rs1.RegisterLink(1, 0, linkID, queue.Local{Vortex: vortex1})

	ob, ok := outbox.(interface {
		Enqueue(e *activity.Event)
	})
	require.True(t, ok)

	evt := activity.NewEvent(200, 7, linkID, []byte("payload"))
	ob.Enqueue(evt)

	done := make(chan error, 1)
	go func() {
		done <- rs1.Execute(0, 150)
	}()
	require.NoError(t, rs0.Execute(0, 150))
	require.NoError(t, <-done)

	assert.False(t, vortex1.Empty())
	got := vortex1.Front()
	assert.Equal(t, activity.SimTime(200), got.DeliveryTime())
	assert.Equal(t, int32(7), got.Priority(), "priority must survive the wire round trip and reinsertion")

	assert.LessOrEqual(t, rs0.NextSyncTime(), activity.SimTime(150+60))
}

func TestEmptyRankSyncNeverSyncsAndTripwires(t *testing.T) {
	rs := ranksync.NewEmpty()

	assert.Equal(t, activity.MaxSimTime, rs.NextSyncTime())
	require.NoError(t, rs.Execute(0, 0))
	require.NoError(t, rs.ExchangeLinkInitData(0, nil))

	sum, err := rs.ReduceRefCount(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), sum)

	dest := rs.RegisterLink(1, 0, 3, nil)
	assert.Panics(t, func() {
		dest.(interface{ Enqueue(e *activity.Event) }).Enqueue(
			activity.NewEvent(0, 0, 3, nil))
	})
}
