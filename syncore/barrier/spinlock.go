package barrier

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a test-and-test-and-set spinlock. It is used to guard the
// Exit reference count, where critical sections are a handful of integer
// operations and the expected contention is low enough that parking a
// goroutine (as sync.Mutex would) costs more than spinning briefly.
type Spinlock struct {
	held atomic.Bool
}

// Lock acquires the spinlock, spinning until it is free.
func (s *Spinlock) Lock() {
	for {
		if !s.held.Load() && s.held.CompareAndSwap(false, true) {
			return
		}
		runtime.Gosched()
	}
}

// Unlock releases the spinlock.
func (s *Spinlock) Unlock() {
	s.held.Store(false)
}
