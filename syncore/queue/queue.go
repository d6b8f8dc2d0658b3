// Package queue defines ActivityQueue, the variant type a Link's delivery
// endpoint is addressed through. It is the seam that lets link.Link stay
// ignorant of whether its destination is local, cross-thread, or
// cross-rank.
package queue

import (
	"fmt"

	"github.com/distsim/syncore/syncore/activity"
)

// ActivityQueue is the delivery endpoint behind a Link. Enqueue never
// blocks: a Link's send path must never stall the caller.
type ActivityQueue interface {
	Enqueue(e *activity.Event)
}

// Uninitialized is a tripwire variant installed on a Link before its real
// destination queue is known. Any use is a programmer error: links are
// registered before their target queues exist, and touching the
// placeholder in between must fail loudly rather than silently drop an
// event.
type Uninitialized struct {
	LinkID activity.LinkID
}

// Enqueue always panics; see Uninitialized's doc comment.
func (u Uninitialized) Enqueue(*activity.Event) {
	panic(fmt.Sprintf(
		"syncore: insert on uninitialized queue for link %d: "+
			"link was never finalized before use", u.LinkID))
}
