package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/distsim/syncore/syncore/activity"
	"github.com/distsim/syncore/syncore/barrier"
	"github.com/distsim/syncore/syncore/diagnostics"
	"github.com/distsim/syncore/syncore/exit"
	"github.com/distsim/syncore/syncore/ranksync"
	"github.com/distsim/syncore/syncore/simulation"
	"github.com/distsim/syncore/syncore/syncmanager"
	"github.com/distsim/syncore/syncore/threadsync"
	"github.com/distsim/syncore/syncore/timeconv"
	"github.com/distsim/syncore/syncore/transport"
)

var (
	flagRank            int
	flagNumRanks        int
	flagThreads         int
	flagListen          string
	flagPeers           []string
	flagMinPartLatency  int64
	flagDiagnosticsPort int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one rank's workers until the simulation terminates.",
	RunE:  runRank,
}

func init() {
	runCmd.Flags().IntVar(&flagRank, "rank", 0, "this process's rank number")
	runCmd.Flags().IntVar(&flagNumRanks, "num-ranks", 1, "total number of ranks")
	runCmd.Flags().IntVar(&flagThreads, "threads", 1, "worker threads in this rank")
	runCmd.Flags().StringVar(&flagListen, "listen", "",
		"address to accept peer connections on (ranks > this rank dial in)")
	runCmd.Flags().StringArrayVar(&flagPeers, "peers", nil,
		"peer addresses as rank=host:port, for ranks < this rank")
	runCmd.Flags().Int64Var(&flagMinPartLatency, "min-part-latency", 100,
		"floor, in sim ticks, on any cross-rank link latency")
	runCmd.Flags().IntVar(&flagDiagnosticsPort, "diagnostics-port", 0,
		"port for the read-only diagnostics HTTP surface (0 = random)")

	rootCmd.AddCommand(runCmd)
}

func runRank(*cobra.Command, []string) error {
	rank := activity.RankInfo{Rank: flagRank, Thread: 0}
	numRanks := activity.RankInfo{Rank: flagNumRanks, Thread: flagThreads}
	singleRank := flagNumRanks == 1

	ex := exit.New(flagThreads, singleRank)
	rankSim := simulation.NewRank(flagThreads, ex)
	minPartTC := timeconv.New(activity.SimTime(flagMinPartLatency))

	tr, err := dialPeers(rank.Rank, flagListen, flagPeers)
	if err != nil {
		return fmt.Errorf("syncored: %w", err)
	}
	if tr != nil {
		atexit.Register(func() { _ = tr.Close() })
	}

	var rs ranksync.RankSync
	if singleRank {
		rs = ranksync.NewEmpty()
	} else {
		rs = ranksync.New(rank, numRanks, tr, activity.SimTime(flagMinPartLatency), minPartTC)
	}

	b := barrier.New(flagThreads)
	syncManagers := make([]*syncmanager.SyncManager, flagThreads)

	for i := 0; i < flagThreads; i++ {
		var ts threadsync.ThreadSync
		if flagThreads == 1 {
			ts = threadsync.NewEmpty()
		} else {
			ts = threadsync.New(i, minPartTC)
		}

		threadRank := activity.RankInfo{Rank: flagRank, Thread: i}
		sm := syncmanager.New(threadRank, numRanks, b, rankSim.InstanceVec(i), ts, rs, ex)
		syncManagers[i] = sm
	}

	for _, sm := range syncManagers {
		sm.FinalizeLinkConfigurations()
	}

	diag := diagnostics.New(syncManagers, ex).WithPortNumber(flagDiagnosticsPort)
	addr, err := diag.Start()
	if err != nil {
		return fmt.Errorf("syncored: starting diagnostics server: %w", err)
	}
	diag.TrackExitRefCount(500 * time.Millisecond)
	log.Printf("syncored: rank %d diagnostics listening on %s", flagRank, addr)

	var wg sync.WaitGroup
	errs := make([]error, flagThreads)
	for i := 0; i < flagThreads; i++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			errs[thread] = rankSim.RunThread(thread)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("syncored: %w", err)
		}
	}

	log.Printf("syncored: rank %d finished, exit.endTime=%d", flagRank, ex.EndTime())

	// atexit.Exit runs every registered cleanup (here, closing the peer
	// transport) before terminating, so the socket gets closed even if a
	// later change makes this process exit some other way (a signal
	// handler, a panic recovered elsewhere) instead of falling off the
	// end of runRank.
	atexit.Exit(0)
	return nil
}

// dialPeers builds a TCPTransport for this rank: it listens for incoming
// connections from higher-numbered ranks and dials out to the
// lower-numbered ranks named in peers, each given as "rank=host:port". A
// single-rank run needs no transport at all.
//
// Rank identification on connect is a small handshake kept separate from
// the steady-state per-epoch wire format: the dialing side writes its
// own rank as a big-endian uint32 before handing the connection to the
// transport, and the accepting side reads it back out.
func dialPeers(selfRank int, listen string, peers []string) (*transport.TCPTransport, error) {
	if len(peers) == 0 && listen == "" {
		return nil, nil
	}

	tr := transport.NewTCPTransport()

	if listen != "" {
		ln, err := net.Listen("tcp", listen)
		if err != nil {
			return nil, fmt.Errorf("listening on %s: %w", listen, err)
		}
		go acceptPeers(ln, tr)
	}

	for _, spec := range peers {
		rankStr, addr, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --peers entry %q, want rank=host:port", spec)
		}
		peerRank, err := strconv.Atoi(rankStr)
		if err != nil {
			return nil, fmt.Errorf("invalid rank in --peers entry %q: %w", spec, err)
		}

		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dialing peer rank %d at %s: %w", peerRank, addr, err)
		}
		if err := binary.Write(conn, binary.BigEndian, uint32(selfRank)); err != nil {
			return nil, fmt.Errorf("announcing rank to peer %d: %w", peerRank, err)
		}
		tr.AttachPeer(peerRank, conn)
	}

	return tr, nil
}

// acceptPeers accepts connections until the listener closes, reading each
// peer's announced rank before attaching it to the transport.
func acceptPeers(ln net.Listener, tr *transport.TCPTransport) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}

		var peerRank uint32
		if err := binary.Read(conn, binary.BigEndian, &peerRank); err != nil {
			log.Printf("syncored: reading peer rank announcement: %v", err)
			_ = conn.Close()
			continue
		}
		tr.AttachPeer(int(peerRank), conn)
	}
}
