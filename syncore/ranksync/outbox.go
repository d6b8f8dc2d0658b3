package ranksync

import (
	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/transport"
)

// Outbox is the CrossRank ActivityQueue variant: a Link whose
// destination crosses a rank boundary serializes into it instead of
// touching a TimeVortex directly.
type Outbox struct {
	peerRank int
	pending  []transport.WireEvent
}

// NewOutbox creates the outbound buffer for peerRank.
func NewOutbox(peerRank int) *Outbox {
	return &Outbox{peerRank: peerRank}
}

// Enqueue converts e into its wire representation and appends it. This
// never blocks and never touches the network directly — the actual
// round trip happens later, in RankSync.Execute.
func (o *Outbox) Enqueue(e *activity.Event) {
	o.pending = append(o.pending, transport.WireEvent{
		LinkID:       e.LinkID,
		DeliveryTime: e.DeliveryTime(),
		Priority:     e.Priority(),
		Payload:      e.Payload,
	})
}

// Len reports how many events are buffered, for backpressure checks.
func (o *Outbox) Len() int { return len(o.pending) }

// drain returns and clears the buffered events. A nil Outbox (a peer
// this rank never registered a sending link to) drains to nothing.
func (o *Outbox) drain() []transport.WireEvent {
	if o == nil {
		return nil
	}
	p := o.pending
	o.pending = nil
	return p
}
