package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/exit"
	"github.com/distsim/syncore/syncore/simulation"
)

type recordingHandler struct {
	fired []activity.SimTime
}

func (h *recordingHandler) Handle(a activity.Activity) error {
	h.fired = append(h.fired, a.DeliveryTime())
	return nil
}

func TestRunThreadDrainsInTimeOrder(t *testing.T) {
	r := simulation.NewRank(1, exit.New(1, true))
	h := &recordingHandler{}

	for _, tm := range []activity.SimTime{5, 3, 7, 3} {
		b := activity.NewBase(tm, 0, h)
		r.Vortex(0).Insert(&b)
	}

	require.NoError(t, r.RunThread(0))
	assert.Equal(t, []activity.SimTime{3, 3, 5, 7}, h.fired)
	assert.Equal(t, activity.SimTime(7), r.InstanceVec(0).GetCurrentSimCycle())
}

func TestInsertActivityRejectsThePast(t *testing.T) {
	r := simulation.NewRank(1, exit.New(1, true))
	h := &recordingHandler{}

	b := activity.NewBase(100, 0, h)
	r.InstanceVec(0).InsertActivity(&b)
	require.NoError(t, r.RunThread(0))

	late := activity.NewBase(50, 0, h)
	assert.Panics(t, func() {
		r.InstanceVec(0).InsertActivity(&late)
	})
}
