package exit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/exit"
)

// Two components refInc at init (count=2). At t=100 one refDecs
// (count=1). At t=250 the other refDecs (count=0). The next sync epoch
// after t=250 must publish endTime=250 and terminate.
func TestExitTerminatesWhenRefCountReachesZero(t *testing.T) {
	e := exit.New(1, true)

	e.RefInc(1, 0)
	e.RefInc(2, 0)
	assert.Equal(t, uint64(2), e.RefCount())

	e.RefDec(1, 0)
	assert.Equal(t, uint64(1), e.RefCount())
	assert.False(t, e.CheckLocal(100))

	e.RefDec(2, 0)
	assert.Equal(t, uint64(0), e.RefCount())

	terminated := e.CheckLocal(250)
	require.True(t, terminated)
	assert.Equal(t, activity.SimTime(250), e.EndTime())
	assert.True(t, e.Terminated())
}

func TestCheckReusesGlobalReductionAcrossRanks(t *testing.T) {
	e := exit.New(2, false)
	e.RefInc(1, 0)
	e.RefInc(2, 1)

	terminated, err := e.Check(10, func(local uint64) (uint64, error) {
		assert.Equal(t, uint64(2), local)
		return local + 3, nil // a peer rank still has 3 in flight
	})
	require.NoError(t, err)
	assert.False(t, terminated)

	e.RefDec(1, 0)
	e.RefDec(2, 1)

	terminated, err = e.Check(20, func(local uint64) (uint64, error) {
		return local, nil // no peer rank has outstanding work either
	})
	require.NoError(t, err)
	assert.True(t, terminated)
	assert.Equal(t, activity.SimTime(20), e.EndTime())
}

func TestPerThreadCountersSumToTotal(t *testing.T) {
	e := exit.New(4, true)
	for i := 0; i < 4; i++ {
		e.RefInc(uint64(i), i)
	}
	assert.Equal(t, uint64(4), e.RefCount())

	e.RefDec(0, 0)
	e.RefDec(2, 2)
	assert.Equal(t, uint64(2), e.RefCount())
}

func TestRefDecBelowZeroPanics(t *testing.T) {
	e := exit.New(1, true)
	e.RefInc(1, 0)
	e.RefDec(1, 0)

	assert.Panics(t, func() { e.RefDec(1, 0) })
}

func TestCheckIsIdempotentOnceTerminated(t *testing.T) {
	e := exit.New(1, false)

	terminated, err := e.Check(5, func(local uint64) (uint64, error) { return 0, nil })
	require.NoError(t, err)
	require.True(t, terminated)

	calls := 0
	terminated, err = e.Check(999, func(local uint64) (uint64, error) {
		calls++
		return 0, nil
	})
	require.NoError(t, err)
	assert.True(t, terminated)
	assert.Equal(t, 0, calls)
	assert.Equal(t, activity.SimTime(5), e.EndTime())
}
