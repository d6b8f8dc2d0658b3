// Package timevortex implements the per-thread time-ordered priority
// queue of scheduled activities: a container/heap wrapper ordered by
// (deliveryTime, priority desc, orderTag asc). A TimeVortex is
// thread-confined by contract — one worker owns it and never shares it —
// so it carries no internal lock on the hot path.
package timevortex

import (
	"container/heap"

	"github.com/distsim/syncore/syncore/activity"
)

// TimeVortex orders activities by (DeliveryTime, Priority desc, OrderTag
// asc). Only the owning worker goroutine may call its methods.
type TimeVortex interface {
	// Insert adds an activity, assigning it a deterministic order tag from
	// this vortex's monotonic counter.
	Insert(a activity.Activity)

	// Front returns the next activity to fire without removing it.
	Front() activity.Activity

	// Pop removes and returns the next activity to fire.
	Pop() activity.Activity

	// Empty reports whether the vortex holds no activities.
	Empty() bool

	// Size returns the number of activities currently queued.
	Size() int
}

// New creates an empty TimeVortex.
func New() TimeVortex {
	v := &vortex{}
	heap.Init(&v.heap)
	return v
}

type vortex struct {
	heap    activityHeap
	nextTag uint64
}

func (v *vortex) Insert(a activity.Activity) {
	v.nextTag++
	a.SetOrderTag(v.nextTag)
	heap.Push(&v.heap, a)
}

func (v *vortex) Front() activity.Activity {
	if len(v.heap) == 0 {
		return nil
	}
	return v.heap[0]
}

func (v *vortex) Pop() activity.Activity {
	if len(v.heap) == 0 {
		return nil
	}
	return heap.Pop(&v.heap).(activity.Activity)
}

func (v *vortex) Empty() bool { return len(v.heap) == 0 }

func (v *vortex) Size() int { return len(v.heap) }

type activityHeap []activity.Activity

func (h activityHeap) Len() int { return len(h) }

func (h activityHeap) Less(i, j int) bool {
	return activity.Less(h[i], h[j])
}

func (h activityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *activityHeap) Push(x interface{}) {
	*h = append(*h, x.(activity.Activity))
}

func (h *activityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
