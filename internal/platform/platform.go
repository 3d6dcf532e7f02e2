// Package platform is the seam between pkg/ipc / pkg/registry and the host
// runtime facilities they need: mutual exclusion, sleeping, thread
// create/join, and atomic words.
//
// The broker and registry specifications describe these as an abstract
// platform-abstraction-layer (PAL) contract rather than a concrete stdlib
// dependency, so pkg/ipc and pkg/registry take their locks, sleeps and
// running counters from this package. The one exception is pkg/ipc's slot
// table, which also uses sync/atomic directly for each slot's descriptor
// pointer and generation word, and time for Unpublish's drain deadline.
// On this target the PAL is implemented with the Go standard library.
package platform

import (
	"sync"
	"sync/atomic"
	"time"
)

// Lock is an exclusive mutual-exclusion primitive.
//
// Lock is re-entrant from the caller's point of view only in the sense
// that the broker never holds a Lock across a user-supplied callback; Lock
// itself is a plain (non-reentrant) mutex, matching the spec's "single
// broker lock" design (§9).
type Lock struct {
	mu sync.Mutex
}

// Acquire blocks until the lock is held.
func (l *Lock) Acquire() { l.mu.Lock() }

// Release releases a held lock.
func (l *Lock) Release() { l.mu.Unlock() }

// RWLock is a reader/writer mutual-exclusion primitive, used where a
// component's read-mostly workload (e.g. query snapshot iteration)
// benefits from concurrent readers.
type RWLock struct {
	mu sync.RWMutex
}

// AcquireShared blocks until a shared (reader) lock is held.
func (l *RWLock) AcquireShared() { l.mu.RLock() }

// ReleaseShared releases a held shared lock.
func (l *RWLock) ReleaseShared() { l.mu.RUnlock() }

// AcquireExclusive blocks until the exclusive (writer) lock is held.
func (l *RWLock) AcquireExclusive() { l.mu.Lock() }

// ReleaseExclusive releases a held exclusive lock.
func (l *RWLock) ReleaseExclusive() { l.mu.Unlock() }

// Sleep suspends the calling goroutine for d.
func Sleep(d time.Duration) { time.Sleep(d) }

// Thread models the create/join contract from the spec's platform
// abstraction: a unit of concurrent work with a handle that can be joined.
type Thread struct {
	done chan struct{}
}

// Go starts fn on a new goroutine and returns a handle to join it.
func Go(fn func()) *Thread {
	t := &Thread{done: make(chan struct{})}

	go func() {
		defer close(t.done)
		fn()
	}()

	return t
}

// Join blocks until the thread's function has returned.
func (t *Thread) Join() { <-t.done }

// Atomic32 wraps a 32-bit word with increment/decrement/exchange semantics
// sufficient for running_count, ref_count's underlying storage, and
// publish_count.
type Atomic32 struct {
	v atomic.Uint32
}

// Load returns the current value.
func (a *Atomic32) Load() uint32 { return a.v.Load() }

// Store sets the value unconditionally.
func (a *Atomic32) Store(val uint32) { a.v.Store(val) }

// Increment atomically adds 1 and returns the new value.
func (a *Atomic32) Increment() uint32 { return a.v.Add(1) }

// Decrement atomically subtracts 1 and returns the new value.
//
// Callers must not decrement below zero; the spec models running_count and
// ref_count as non-negative and callers are expected to pair every
// increment with exactly one decrement.
func (a *Atomic32) Decrement() uint32 { return a.v.Add(^uint32(0)) }

// Exchange atomically sets val and returns the previous value.
func (a *Atomic32) Exchange(val uint32) uint32 { return a.v.Swap(val) }

// CompareAndSwap atomically sets val if the current value equals old.
func (a *Atomic32) CompareAndSwap(old, val uint32) bool {
	return a.v.CompareAndSwap(old, val)
}
