// Package idgen mints component and link identifiers through a
// process-wide singleton: a sequential generator for deterministic test
// runs, and an xid-backed generator for parallel runs where IDs need not
// be reproducible.
package idgen

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	mu           sync.Mutex
	instantiated bool
	generator    Generator
)

// Generator mints opaque, process-unique identifiers.
type Generator interface {
	Generate() uint64
}

// UseSequential configures the generator to produce IDs in increasing
// sequential order. Must be called before the first Get, and only once.
func UseSequential() {
	lockAndSet(&sequentialGenerator{})
}

// UseParallel configures the generator to mint xid-based IDs, which are
// not deterministic across runs but safe to mint concurrently without any
// shared counter contention.
func UseParallel() {
	lockAndSet(&parallelGenerator{})
}

func lockAndSet(g Generator) {
	mu.Lock()
	defer mu.Unlock()

	if instantiated {
		log.Panic("syncore/idgen: cannot change generator type after using it")
	}
	generator = g
	instantiated = true
}

// Get returns the configured Generator, defaulting to sequential if none
// was explicitly selected yet.
func Get() Generator {
	mu.Lock()
	defer mu.Unlock()

	if !instantiated {
		generator = &sequentialGenerator{}
		instantiated = true
	}
	return generator
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() uint64 {
	return atomic.AddUint64(&g.next, 1)
}

// parallelGenerator mints an xid and folds it down to a uint64 via its
// own monotonic counter component, which is all this core's LinkID/
// component-id space needs — the full 12-byte xid (with its machine and
// process fields) would be overkill for an identifier that never leaves
// one rank's process.
type parallelGenerator struct{}

func (parallelGenerator) Generate() uint64 {
	id := xid.New()
	return uint64(id.Counter())
}
