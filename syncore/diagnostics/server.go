// Package diagnostics implements a read-only HTTP status surface over a
// rank's sync state: it never mutates anything, only reports status,
// refcounts, resource usage, profiles, and progress.
package diagnostics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Registers profiling handlers on the default mux as a side effect.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/distsim/syncore/syncore/exit"
	"github.com/distsim/syncore/syncore/syncmanager"
)

// Server turns one rank's sync state into a monitorable HTTP surface.
type Server struct {
	syncManagers []*syncmanager.SyncManager
	ex           *exit.Exit
	portNumber   int

	progressLock sync.Mutex
	progress     []*ProgressBar
	exitProgress *ProgressBar
	lastRefCount uint64
}

// New creates a Server over one rank's SyncManagers (one per worker
// thread) and its shared Exit.
func New(syncManagers []*syncmanager.SyncManager, ex *exit.Exit) *Server {
	return &Server{syncManagers: syncManagers, ex: ex}
}

// WithPortNumber sets the listening port; ports below 1000 are rejected
// in favor of an OS-assigned one, guarding against accidentally binding a
// privileged port.
func (s *Server) WithPortNumber(port int) *Server {
	if port < 1000 {
		fmt.Fprintf(os.Stderr,
			"diagnostics: port %d is not allowed, using a random port instead\n", port)
		port = 0
	}
	s.portNumber = port
	return s
}

// CreateProgressBar creates and registers a new progress tracker, e.g.
// for the Exit refcount's approach to zero.
func (s *Server) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{Name: name, Total: total, StartTime: timeNow()}

	s.progressLock.Lock()
	defer s.progressLock.Unlock()
	s.progress = append(s.progress, bar)

	return bar
}

// timeNow returns the current wall-clock time, used as a new progress
// bar's StartTime.
func timeNow() time.Time { return time.Now() }

// TrackExitRefCount registers a progress bar seeded at this rank's current
// Exit refcount and starts a background poller that drains it toward
// finished as RefDec brings the count to zero, stopping once Exit
// declares termination. Call at most once per Server.
func (s *Server) TrackExitRefCount(pollInterval time.Duration) *ProgressBar {
	initial := s.ex.RefCount()
	bar := s.CreateProgressBar("exit-refcount", initial)
	bar.IncrementInProgress(initial)

	s.progressLock.Lock()
	s.exitProgress = bar
	s.lastRefCount = initial
	s.progressLock.Unlock()

	go s.pollExitRefCount(pollInterval)
	return bar
}

func (s *Server) pollExitRefCount(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.refreshExitProgress()
		if s.ex.Terminated() {
			return
		}
	}
}

// refreshExitProgress moves whatever the refcount has drained since the
// last observation from in-progress to finished. A growing refcount
// (new work registered after tracking started) widens the bar's total
// instead of reporting negative progress.
func (s *Server) refreshExitProgress() {
	current := s.ex.RefCount()

	s.progressLock.Lock()
	bar := s.exitProgress
	last := s.lastRefCount
	s.lastRefCount = current
	s.progressLock.Unlock()

	if bar == nil {
		return
	}

	switch {
	case current < last:
		bar.MoveInProgressToFinished(last - current)
	case current > last:
		grown := current - last
		bar.Lock()
		bar.Total += grown
		bar.Unlock()
		bar.IncrementInProgress(grown)
	}
}

// Start serves the diagnostics surface in the background and returns the
// address it bound to.
func (s *Server) Start() (net.Addr, error) {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.status)
	r.HandleFunc("/exit", s.exitStatus)
	r.HandleFunc("/resources", s.resources)
	r.HandleFunc("/profile", s.profile)
	r.HandleFunc("/progress", s.progressBars)

	actualAddr := ":0"
	if s.portNumber >= 1000 {
		actualAddr = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualAddr)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = http.Serve(listener, r)
	}()

	return listener.Addr(), nil
}

// status dumps every worker thread's SyncManager.Status via goseth's
// reflective serializer.
func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	statuses := make([]syncmanager.Status, len(s.syncManagers))
	for i, sm := range s.syncManagers {
		statuses[i] = sm.Status()
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(statuses)
	if err := serializer.Serialize(w); err != nil {
		dieOnErr(w, err)
	}
}

type exitRsp struct {
	RefCount   uint64 `json:"ref_count"`
	Terminated bool   `json:"terminated"`
	EndTime    int64  `json:"end_time"`
	SingleRank bool   `json:"single_rank"`
}

func (s *Server) exitStatus(w http.ResponseWriter, _ *http.Request) {
	rsp := exitRsp{
		RefCount:   s.ex.RefCount(),
		Terminated: s.ex.Terminated(),
		EndTime:    int64(s.ex.EndTime()),
		SingleRank: s.ex.SingleRank(),
	}

	body, err := json.Marshal(rsp)
	if err != nil {
		dieOnErr(w, err)
		return
	}
	_, _ = w.Write(body)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

// resources reports this process's CPU and RSS.
func (s *Server) resources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		dieOnErr(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		dieOnErr(w, err)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		dieOnErr(w, err)
		return
	}

	body, err := json.Marshal(resourceRsp{CPUPercent: cpuPercent, MemorySize: memInfo.RSS})
	if err != nil {
		dieOnErr(w, err)
		return
	}
	_, _ = w.Write(body)
}

// profile collects a one-second CPU profile and returns it encoded via
// google/pprof's profile.Profile.
func (s *Server) profile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		dieOnErr(w, err)
		return
	}
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		dieOnErr(w, err)
		return
	}

	body, err := json.Marshal(prof)
	if err != nil {
		dieOnErr(w, err)
		return
	}
	_, _ = w.Write(body)
}

func (s *Server) progressBars(w http.ResponseWriter, _ *http.Request) {
	s.progressLock.Lock()
	bars := make([]*ProgressBar, len(s.progress))
	copy(bars, s.progress)
	s.progressLock.Unlock()

	body, err := json.Marshal(bars)
	if err != nil {
		dieOnErr(w, err)
		return
	}
	_, _ = w.Write(body)
}

func dieOnErr(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(err.Error()))
}
