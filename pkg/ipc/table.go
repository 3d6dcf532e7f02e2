package ipc

// Locking architecture
//
//  1. Table.mu — the single broker lock (spec §9: "a single broker lock is
//     intentional and sufficient at this capacity"). Guards every slot's
//     descriptor pointer, ref_count, flags, hash, and the table's
//     publish_count. Held exclusively by Publish, Unpublish, TryGet, Get,
//     and Release, which mutate ref_count or a slot's descriptor. Held in
//     shared mode by Query/QueryNext and TryGetCapability, which only read
//     slot state — letting concurrent read-mostly query traffic proceed
//     without serializing behind each other.
//
//  2. slot.running — a lock-free atomic word. [Table.Call] increments and
//     decrements it WITHOUT holding Table.mu so that capability code may
//     re-enter the broker (including calling Unpublish on its own slot)
//     without deadlocking. Unpublish is the only place the broker spins on
//     this counter, and it does so with Table.mu released.
//
// Lock ordering: Table.mu is never held across a capability invocation;
// slot.running is never read or written while deciding whether to block
// on Table.mu. There is therefore no ordering to violate between the two.

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/calvinalkan/ulib-broker/internal/errs"
	"github.com/calvinalkan/ulib-broker/internal/platform"
)

// Flags is a bitset of per-slot state flags.
type Flags uint8

const (
	// FlagDefault marks no special state.
	FlagDefault Flags = 0
	// FlagOnHold names the ON_HOLD slot state. No method sets or reports
	// it: Publish resets every slot's flags to FlagDefault, and TryGet
	// does not consult the flags when resolving a handle.
	FlagOnHold Flags = 1 << iota
)

type slot struct {
	// descriptor and hash are read by Call without holding Table.mu (spec
	// §4.3 forbids holding the table lock across a capability call), so
	// both are atomic-typed even though every WRITE to them happens under
	// Table.mu. The lock establishes happens-before for the writer side;
	// the atomic type gives the reader side a race-free, torn-read-free
	// view without needing a second lock.
	descriptor atomic.Pointer[Descriptor]
	refCount   uint32 // guarded by Table.mu
	running    platform.Atomic32
	flags      Flags
	hash       atomic.Uint32
}

func (s *slot) free() bool {
	return s.descriptor.Load() == nil && s.refCount == 0 && s.running.Load() == 0
}

// Table is the IPC broker: a fixed-capacity array of slots holding
// published interface descriptors and their live-state counters.
//
// The zero value is not usable; construct with [New] and call [Table.Init]
// before any other method.
type Table struct {
	cfg Config
	mu  platform.RWLock

	slots        []slot
	publishCount uint32
	initialized  bool
}

// New allocates a [Table] sized per cfg. It does not call Init.
func New(cfg Config) (*Table, error) {
	if cfg.MaxInterfaces <= 0 || cfg.MaxInterfaces > maxInterfacesCeiling {
		return nil, fmt.Errorf("ipc: MaxInterfaces out of range: %w", errs.ErrArg)
	}

	if cfg.MaxInstancesPerInterface == 0 || cfg.MaxInstancesPerInterface > maxInstancesPerInterfaceCeiling {
		return nil, fmt.Errorf("ipc: MaxInstancesPerInterface out of range: %w", errs.ErrArg)
	}

	return &Table{cfg: cfg, slots: make([]slot, cfg.MaxInterfaces)}, nil
}

// Init initializes the broker: clears every slot to free and zeroes
// publish_count. Init is not thread-safe and must not be called
// concurrently with any other Table method.
//
// Calling Init twice without an intervening [Table.Deinit] returns
// [errs.ErrAlreadyInitialized].
func (t *Table) Init() error {
	if t.initialized {
		return errs.ErrAlreadyInitialized
	}

	for i := range t.slots {
		t.slots[i] = slot{}
	}

	t.publishCount = 0
	t.initialized = true

	return nil
}

// Deinit destroys the broker. It fails with [errs.ErrBusy] if any slot
// still holds a descriptor, an outstanding ref_count, or a running call.
// Deinit is not thread-safe.
func (t *Table) Deinit() error {
	if !t.initialized {
		return errs.ErrNotInitialized
	}

	for i := range t.slots {
		s := &t.slots[i]
		if s.descriptor.Load() != nil || s.refCount != 0 || s.running.Load() != 0 {
			return errs.ErrBusy
		}
	}

	t.initialized = false

	return nil
}

func (t *Table) checkInitialized() error {
	if !t.initialized {
		return errs.ErrNotInitialized
	}

	return nil
}

// Publish installs descriptor into the first free slot and returns a
// handle to it.
//
// Fails with [errs.ErrElementDuplicate] if a slot already holds a
// descriptor with the same (Name, Version), or [errs.ErrOutOfMemory] if no
// slot is free (spec's NO_SPACE).
func (t *Table) Publish(d *Descriptor) (Handle, error) {
	if err := t.checkInitialized(); err != nil {
		return Handle{}, err
	}

	if d == nil || d.Name == "" {
		return Handle{}, fmt.Errorf("ipc: publish requires a named descriptor: %w", errs.ErrArg)
	}

	t.mu.AcquireExclusive()
	defer t.mu.ReleaseExclusive()

	freeIdx := -1

	for i := range t.slots {
		s := &t.slots[i]

		if cur := s.descriptor.Load(); cur != nil && cur.Name == d.Name && cur.Version == d.Version {
			return Handle{}, errs.ErrElementDuplicate
		}

		if freeIdx == -1 && s.free() {
			freeIdx = i
		}
	}

	if freeIdx == -1 {
		return Handle{}, errs.ErrOutOfMemory
	}

	t.publishCount++

	s := &t.slots[freeIdx]
	s.descriptor.Store(d)
	s.refCount = 0
	s.flags = FlagDefault
	s.running.Store(0)
	s.hash.Store(t.publishCount)

	return Handle{table: t, index: uint32(freeIdx), generation: t.publishCount}, nil
}

// Unpublish removes descriptor from the table. If running_count is
// nonzero, Unpublish waits up to waitMs milliseconds for in-flight calls
// to drain before giving up with [errs.ErrBusy]; waitMs == 0 (NO_WAIT)
// fails immediately without waiting.
//
// On success, ref_count is left intact: outstanding handles become
// implicitly stale (their captured generation no longer matches the
// slot's) and are reaped on next use or explicit release.
func (t *Table) Unpublish(d *Descriptor, waitMs int) error {
	if err := t.checkInitialized(); err != nil {
		return err
	}

	if !t.cfg.IncludeUnpublish {
		return errs.ErrNotSupported
	}

	if d == nil {
		return fmt.Errorf("ipc: unpublish requires a descriptor: %w", errs.ErrArg)
	}

	deadline := time.Now().Add(time.Duration(waitMs) * time.Millisecond)

	for {
		t.mu.AcquireExclusive()

		idx := t.findByPointer(d)
		if idx == -1 {
			t.mu.ReleaseExclusive()

			return errs.ErrItemNotFound
		}

		s := &t.slots[idx]

		if s.running.Load() == 0 {
			s.descriptor.Store(nil)
			t.mu.ReleaseExclusive()

			return nil
		}

		t.mu.ReleaseExclusive()

		if waitMs == 0 {
			return errs.ErrBusy
		}

		if time.Now().After(deadline) {
			return errs.ErrBusy
		}

		platform.Sleep(unpublishPollInterval)
	}
}

// unpublishPollInterval bounds how often Unpublish re-checks running_count
// while draining. Short enough to keep the spec's wait_ms bound tight,
// long enough to avoid busy-spinning a core.
const unpublishPollInterval = 200 * time.Microsecond

// findByPointer returns the index of the slot holding d, or -1.
// Callers must hold t.mu.
func (t *Table) findByPointer(d *Descriptor) int {
	for i := range t.slots {
		if t.slots[i].descriptor.Load() == d {
			return i
		}
	}

	return -1
}
