// Package syncmanager implements the activity that interleaves the rank
// and thread sync tiers and, by re-inserting itself into its owning
// thread's TimeVortex, arms itself as "just another event." Each arm
// builds a fresh activity.Base value rather than mutating one in place,
// the same self-rescheduling shape a periodic ticker uses.
package syncmanager

import (
	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/barrier"
	"github.com/distsim/syncore/syncore/exit"
	"github.com/distsim/syncore/syncore/queue"
	"github.com/distsim/syncore/syncore/ranksync"
	"github.com/distsim/syncore/syncore/simulation"
	"github.com/distsim/syncore/syncore/threadsync"
)

// syncType selects which tier's deadline won computeNextInsert's race.
type syncType int

const (
	syncRank syncType = iota
	syncThread
)

// arming priority for the self-rescheduled sync activity. Ordinary
// component activities default to priority 0; the sync boundary has no
// documented reason to preempt or yield to them, so it shares that
// default rather than inventing an undocumented tie-break rule.
const armPriority int32 = 0

// SyncManager interleaves RankSync and ThreadSync for one worker thread
// and runs the Exit check at rank-sync epochs. One SyncManager exists per
// thread; the RankSync it holds is process-wide state shared by every
// thread of a rank, while its ThreadSync is this thread's own.
type SyncManager struct {
	rank     activity.RankInfo
	numRanks activity.RankInfo

	barrier    *barrier.Barrier
	threadSync threadsync.ThreadSync
	rankSync   ranksync.RankSync
	perThread  simulation.PerThread
	ex         *exit.Exit

	singleRank   bool
	nextSyncType syncType
	armed        bool
}

// New constructs the SyncManager for one worker thread. b is the Barrier
// shared by every thread of this rank; rs is the RankSync shared by every
// thread of this rank (EmptyRankSync if numRanks.Rank == 1); ts is this
// thread's own ThreadSync (EmptyThreadSync if numRanks.Thread == 1).
func New(
	rank, numRanks activity.RankInfo,
	b *barrier.Barrier,
	perThread simulation.PerThread,
	ts threadsync.ThreadSync,
	rs ranksync.RankSync,
	ex *exit.Exit,
) *SyncManager {
	return &SyncManager{
		rank:       rank,
		numRanks:   numRanks,
		barrier:    b,
		threadSync: ts,
		rankSync:   rs,
		perThread:  perThread,
		ex:         ex,
		singleRank: numRanks.Rank == 1,
	}
}

// RegisterLink routes a link's registration to whichever tier actually
// crosses a boundary: RankSync if the link crosses ranks, ThreadSync if it
// only crosses threads within this rank, or straight back to localDest if
// both endpoints are this exact (rank, thread). For a cross-thread link,
// ThreadSync records localDest as this thread's reinsertion target and
// localDest is returned unchanged; the sender's inbox comes from
// ThreadSync.GetQueueForThread.
func (sm *SyncManager) RegisterLink(
	to, from activity.RankInfo,
	linkID activity.LinkID,
	localDest queue.ActivityQueue,
) queue.ActivityQueue {
	switch {
	case to.Rank != from.Rank:
		return sm.rankSync.RegisterLink(to.Rank, from.Rank, linkID, localDest)
	case to.Thread != from.Thread:
		sm.threadSync.RegisterLink(linkID, localDest)
		return localDest
	default:
		return localDest
	}
}

// ExchangeLinkInitData runs the phase-0 bootstrap exchange for this
// thread: drain and forward anything queued on the thread tier, then (on
// thread 0 only) round-trip with peer ranks.
func (sm *SyncManager) ExchangeLinkInitData(msgCount *int64) error {
	sm.threadSync.ProcessLinkInitData()
	return sm.rankSync.ExchangeLinkInitData(sm.rank.Thread, msgCount)
}

// FinalizeLinkConfigurations freezes both tiers' link tables and performs
// this SyncManager's first self-arm. Only thread 0 finalizes RankSync,
// since it is shared process-wide state.
func (sm *SyncManager) FinalizeLinkConfigurations() {
	sm.threadSync.FinalizeLinkConfigurations()
	if sm.rank.Thread == 0 {
		sm.rankSync.FinalizeLinkConfigurations()
	}
	sm.computeNextInsert()
}

// computeNextInsert reads both sub-syncs' NextSyncTime, picks whichever
// is sooner (RANK on a tie), and arms a fresh activity bound to this
// SyncManager at that time. This is how the sync epoch becomes "just
// another event" interleaved with simulation activity. Once Exit has
// declared termination, the manager stops re-arming: the thread's
// TimeVortex then drains to completion on whatever user activities
// remain and the run ends.
func (sm *SyncManager) computeNextInsert() {
	if sm.ex.Terminated() {
		sm.armed = false
		return
	}

	rankNext := sm.rankSync.NextSyncTime()
	threadNext := sm.threadSync.NextSyncTime()

	var t activity.SimTime
	if rankNext <= threadNext {
		sm.nextSyncType = syncRank
		t = rankNext
	} else {
		sm.nextSyncType = syncThread
		t = threadNext
	}

	b := activity.NewBase(t, armPriority, sm)
	sm.perThread.InsertActivity(&b)
	sm.armed = true
}

// Armed reports whether a future sync activity is currently scheduled.
func (sm *SyncManager) Armed() bool { return sm.armed }

// Status is a read-only snapshot of one SyncManager, for the diagnostics
// endpoint. It never mutates sync state.
type Status struct {
	Rank               activity.RankInfo
	NextSyncType       string
	RankNextSyncTime   activity.SimTime
	ThreadNextSyncTime activity.SimTime
	Armed              bool
	BarrierGeneration  uint64
}

// Status returns a snapshot of this SyncManager's current state.
func (sm *SyncManager) Status() Status {
	name := "THREAD"
	if sm.nextSyncType == syncRank {
		name = "RANK"
	}

	return Status{
		Rank:               sm.rank,
		NextSyncType:       name,
		RankNextSyncTime:   sm.rankSync.NextSyncTime(),
		ThreadNextSyncTime: sm.threadSync.NextSyncTime(),
		Armed:              sm.armed,
		BarrierGeneration:  sm.barrier.Generation(),
	}
}

// Handle runs one sync epoch. It is the activity.Handler half of
// SyncManager: the scheduler calls this when the self-armed activity
// fires.
func (sm *SyncManager) Handle(a activity.Activity) error {
	now := a.DeliveryTime()

	switch sm.nextSyncType {
	case syncRank:
		if err := sm.executeRankEpoch(now); err != nil {
			return err
		}
	case syncThread:
		sm.executeThreadEpoch(now)
	}

	sm.computeNextInsert()
	return nil
}

// executeRankEpoch runs the four-barrier RANK case. Each barrier enforces
// a specific happens-before edge: outbound events serialized before the
// exchange begins, inbound events re-inserted before any worker observes
// them, no refDec racing termination, and no worker leaving before
// thread 0 decides. Barrier generation therefore advances by exactly 4
// per RANK epoch.
//
// Every other thread is already parked at the barrier immediately
// following each of these steps, so a failure partway through (thread 0's
// RankSync.Execute transport round trip, most commonly) is recorded in
// firstErr and carried through the remaining barrier.Wait calls instead of
// returning early: returning early here would leave every other thread
// blocked forever on a barrier generation thread 0 never reaches.
func (sm *SyncManager) executeRankEpoch(now activity.SimTime) error {
	sm.threadSync.Before(now)
	sm.barrier.Wait()

	var firstErr error
	if err := sm.rankSync.Execute(sm.rank.Thread, now); err != nil {
		firstErr = err
	}
	sm.barrier.Wait()

	sm.threadSync.After()
	sm.threadSync.AdvanceNextSyncTime(now)
	sm.barrier.Wait()

	if sm.rank.Thread == 0 && firstErr == nil {
		if _, err := sm.ex.Check(now, sm.rankSync.ReduceRefCount); err != nil {
			firstErr = err
		}
	}
	sm.barrier.Wait()

	return firstErr
}

// executeThreadEpoch runs the barrier-free THREAD case: no cross-rank
// work is needed, so there is nothing to guard with a barrier. It
// advances ThreadSync's own deadline by one maxPeriod tick so the next
// THREAD epoch doesn't re-arm at the same timestamp forever. On a
// single-rank run the termination check degenerates to a local zero
// test.
func (sm *SyncManager) executeThreadEpoch(now activity.SimTime) {
	sm.threadSync.Execute(now)
	sm.threadSync.AdvanceNextSyncTime(now)

	if sm.singleRank {
		sm.ex.CheckLocal(now)
	}
}
