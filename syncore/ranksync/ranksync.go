// Package ranksync implements the rank-level sync tier: exchanging
// events across ranks over a message-passing fabric and computing a
// global lower bound on the next sync time.
package ranksync

import (
	"log"
	"sort"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/link"
	"github.com/distsim/syncore/syncore/queue"
	"github.com/distsim/syncore/syncore/timeconv"
	"github.com/distsim/syncore/syncore/transport"
)

// RankSync is the rank-level sync capability. Concrete and Empty are its
// two variants: a single-rank run gets EmptyRankSync, whose RegisterLink
// is unreachable by construction.
type RankSync interface {
	// RegisterLink wires one side of a cross-rank link. If fromRank is
	// this rank, it returns the CrossRank Outbox the source Link should
	// send through. If toRank is this rank, it records localDest as the
	// reinsertion target for events arriving on linkID and returns
	// localDest unchanged.
	RegisterLink(toRank, fromRank int, linkID activity.LinkID, localDest queue.ActivityQueue) queue.ActivityQueue

	// Execute performs the rank-to-rank exchange. Only thread 0 actually
	// touches the transport; SyncManager is responsible for parking every
	// other thread at a barrier around this call.
	Execute(thread int, now activity.SimTime) error

	// ExchangeLinkInitData performs the phase-0 bootstrap exchange.
	// msgCount is decremented once per message processed on either side,
	// so the caller can detect quiescence.
	ExchangeLinkInitData(thread int, msgCount *int64) error

	// FinalizeLinkConfigurations freezes the link table.
	FinalizeLinkConfigurations()

	// NextSyncTime returns this tier's current deadline.
	NextSyncTime() activity.SimTime

	// ReduceRefCount performs Exit's global reduction: it adds every
	// peer's reported count to local and returns the sum.
	ReduceRefCount(local uint64) (uint64, error)
}

type concrete struct {
	rank      activity.RankInfo
	numRanks  activity.RankInfo
	transport transport.Transport

	peerRanks []int
	outboxes  map[int]*Outbox
	inbound   map[activity.LinkID]*link.Link

	minPartLatency activity.SimTime
	minPartTC      timeconv.TimeConverter

	epochID      uint64
	nextSyncTime activity.SimTime
	frozen       bool
}

// New creates the concrete RankSync for this rank. minPartLatency is the
// floor on any cross-rank link latency in the partition; minPartTC
// bounds how soon two consecutive epochs may occur.
func New(
	rank, numRanks activity.RankInfo,
	tr transport.Transport,
	minPartLatency activity.SimTime,
	minPartTC timeconv.TimeConverter,
) RankSync {
	peers := make([]int, 0, numRanks.Rank-1)
	for r := 0; r < numRanks.Rank; r++ {
		if r != rank.Rank {
			peers = append(peers, r)
		}
	}
	sort.Ints(peers)

	return &concrete{
		rank:           rank,
		numRanks:       numRanks,
		transport:      tr,
		peerRanks:      peers,
		outboxes:       make(map[int]*Outbox),
		inbound:        make(map[activity.LinkID]*link.Link),
		minPartLatency: minPartLatency,
		minPartTC:      minPartTC,
		nextSyncTime:   minPartTC.Period(),
	}
}

func (r *concrete) RegisterLink(
	toRank, fromRank int,
	linkID activity.LinkID,
	localDest queue.ActivityQueue,
) queue.ActivityQueue {
	if r.frozen {
		log.Panicf("syncore/ranksync: link %d registered after finalization", linkID)
	}

	switch {
	case fromRank == r.rank.Rank && toRank != r.rank.Rank:
		ob, ok := r.outboxes[toRank]
		if !ok {
			ob = NewOutbox(toRank)
			r.outboxes[toRank] = ob
		}
		return ob

	case toRank == r.rank.Rank && fromRank != r.rank.Rank:
		l := link.New(linkID, 0)
		l.SetDest(localDest)
		r.inbound[linkID] = l
		return localDest

	default:
		log.Panicf(
			"syncore/ranksync: registerLink(to=%d, from=%d) does not cross "+
				"rank %d's boundary", toRank, fromRank, r.rank.Rank)
		return nil
	}
}

func (r *concrete) FinalizeLinkConfigurations() {
	r.frozen = true
}

func (r *concrete) NextSyncTime() activity.SimTime {
	return r.nextSyncTime
}

// Execute implements the "serial skip" default: ranks synchronize in a
// fixed global order in a single pass per epoch, sending to every peer
// before receiving from any of them.
func (r *concrete) Execute(thread int, now activity.SimTime) error {
	if thread != 0 {
		return nil
	}

	for _, peer := range r.peerRanks {
		events := r.outboxes[peer].drain()
		hdr := transport.Header{
			SenderRank:    int32(r.rank.Rank),
			EpochID:       r.epochID,
			NextEventTime: r.nextSyncTime,
		}
		if err := r.transport.Send(peer, hdr, events); err != nil {
			return err
		}
	}

	minPeerNext := activity.MaxSimTime
	for _, peer := range r.peerRanks {
		hdr, events, err := r.transport.Receive(peer)
		if err != nil {
			return err
		}

		for _, we := range events {
			l, ok := r.inbound[we.LinkID]
			if !ok {
				log.Panicf(
					"syncore/ranksync: rank %d received event for unknown link %d",
					r.rank.Rank, we.LinkID)
			}

			delay := we.DeliveryTime - now
			if delay < 0 {
				log.Panicf(
					"syncore/ranksync: event for link %d arrived after its "+
						"delivery time (now=%d, deliveryTime=%d)",
					we.LinkID, now, we.DeliveryTime)
			}
			l.Send(now, delay, we.Priority, we.Payload)
		}

		if hdr.NextEventTime < minPeerNext {
			minPeerNext = hdr.NextEventTime
		}
	}

	r.epochID++
	r.nextSyncTime = r.skipAhead(now, minPeerNext)

	return nil
}

// skipAhead pulls the next epoch in to just before the nearest peer
// event, but never sooner than one minPartTC period from now.
func (r *concrete) skipAhead(now, minPeerNext activity.SimTime) activity.SimTime {
	floor := now + r.minPartTC.Period()

	if minPeerNext == activity.MaxSimTime {
		return floor
	}

	candidate := minPeerNext - r.minPartLatency/2
	if candidate < floor {
		return floor
	}
	return candidate
}

func (r *concrete) ExchangeLinkInitData(thread int, msgCount *int64) error {
	if thread != 0 {
		return nil
	}

	for _, peer := range r.peerRanks {
		events := r.outboxes[peer].drain()
		hdr := transport.Header{SenderRank: int32(r.rank.Rank)}
		if err := r.transport.Send(peer, hdr, events); err != nil {
			return err
		}
		decrementBy(msgCount, len(events))
	}

	for _, peer := range r.peerRanks {
		_, events, err := r.transport.Receive(peer)
		if err != nil {
			return err
		}

		for _, we := range events {
			l, ok := r.inbound[we.LinkID]
			if !ok {
				log.Panicf(
					"syncore/ranksync: init data for unknown link %d", we.LinkID)
			}
			l.SendInitData(we.Priority, we.Payload)
		}
		decrementBy(msgCount, len(events))
	}

	return nil
}

// ReduceRefCount reuses the wire header's EpochID field as a generic
// 8-byte scalar carrier for this out-of-band reduction: no event records
// are needed, and adding a dedicated message type to the wire format
// would duplicate a field the header already provides.
func (r *concrete) ReduceRefCount(local uint64) (uint64, error) {
	sum := local

	for _, peer := range r.peerRanks {
		hdr := transport.Header{SenderRank: int32(r.rank.Rank), EpochID: local}
		if err := r.transport.Send(peer, hdr, nil); err != nil {
			return 0, err
		}
	}

	for _, peer := range r.peerRanks {
		hdr, _, err := r.transport.Receive(peer)
		if err != nil {
			return 0, err
		}
		sum += hdr.EpochID
	}

	return sum, nil
}

func decrementBy(counter *int64, n int) {
	if counter == nil {
		return
	}
	*counter -= int64(n)
}
