// Package timeconv provides TimeConverter, a fixed-point period/latency
// representation over integer SimTime ticks, with Period/ToCycles/ToTime/
// ThisTick/NextTick/NoEarlierThan conversions and no floating-point
// rounding to paper over.
package timeconv

import (
	"log"

	"github.com/distsim/syncore/syncore/activity"
)

// TimeConverter represents a period, expressed as the number of SimTime
// ticks between two consecutive epoch boundaries.
type TimeConverter activity.SimTime

// New creates a TimeConverter for a period of the given number of ticks.
// A zero or negative period is a configuration error.
func New(periodTicks activity.SimTime) TimeConverter {
	if periodTicks <= 0 {
		log.Panic("timeconv: period must be positive")
	}
	return TimeConverter(periodTicks)
}

// Period returns the number of ticks between two consecutive boundaries.
func (t TimeConverter) Period() activity.SimTime {
	return activity.SimTime(t)
}

// ToCycles converts an absolute time into the number of whole periods
// that have elapsed since time zero.
func (t TimeConverter) ToCycles(time activity.SimTime) int64 {
	return int64(time) / int64(t)
}

// ToTime converts a cycle count back into an absolute time. ToCycles and
// ToTime round-trip exactly: TimeConverter(p).ToCycles(ToTime(x)) == x.
func (t TimeConverter) ToTime(cycles int64) activity.SimTime {
	return activity.SimTime(cycles) * activity.SimTime(t)
}

// ThisTick rounds now down to the period boundary at or before it.
func (t TimeConverter) ThisTick(now activity.SimTime) activity.SimTime {
	return t.ToTime(t.ToCycles(now))
}

// NextTick rounds now up to the next period boundary strictly after it.
func (t TimeConverter) NextTick(now activity.SimTime) activity.SimTime {
	thisTick := t.ThisTick(now)
	if thisTick == now {
		return now + t.Period()
	}
	return thisTick + t.Period()
}

// NCyclesLater returns the time n whole periods after now, rounded to the
// nearest period boundary at or before now first.
func (t TimeConverter) NCyclesLater(n int, now activity.SimTime) activity.SimTime {
	return t.ThisTick(now) + activity.SimTime(n)*t.Period()
}

// NoEarlierThan returns the earliest period boundary that is >= when.
func (t TimeConverter) NoEarlierThan(when activity.SimTime) activity.SimTime {
	tick := t.ThisTick(when)
	if tick < when {
		return tick + t.Period()
	}
	return tick
}
