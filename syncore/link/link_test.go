package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/link"
	"github.com/distsim/syncore/syncore/queue"
	"github.com/distsim/syncore/syncore/timevortex"
)

func TestSendComputesDeliveryTime(t *testing.T) {
	v := timevortex.New()
	l := link.New(1, 50)
	l.SetDest(queue.NewLocal(v))

	evt := l.Send(10, 5, 3, []byte("hello"))

	assert.Equal(t, activity.SimTime(65), evt.DeliveryTime())
	assert.Equal(t, int32(3), evt.Priority())
	assert.Equal(t, 1, v.Size())
	assert.Same(t, evt, v.Front())
}

func TestUninitializedQueuePanics(t *testing.T) {
	l := link.New(2, 10)

	assert.Panics(t, func() {
		l.Send(0, 0, 0, nil)
	})
}

func TestNegativeDelayPanics(t *testing.T) {
	v := timevortex.New()
	l := link.New(3, 10)
	l.SetDest(queue.NewLocal(v))

	assert.Panics(t, func() {
		l.Send(0, -1, 0, nil)
	})
}
