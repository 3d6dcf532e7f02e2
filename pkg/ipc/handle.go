package ipc

import (
	"fmt"

	"github.com/calvinalkan/ulib-broker/internal/errs"
)

// MatchCriteria is a flag-set controlling which published versions of a
// named interface [Table.TryGet] considers a match, per spec §4.2/§4.5.
type MatchCriteria uint8

const (
	// Equals matches a slot whose version equals the requested version.
	Equals MatchCriteria = 1 << iota
	// GreaterThan matches a slot whose version is greater than requested.
	GreaterThan
	// LowerThan matches a slot whose version is lower than requested.
	LowerThan
)

// Any matches any version of a slot whose name matches, equivalent to the
// union of Equals, GreaterThan, and LowerThan.
const Any = Equals | GreaterThan | LowerThan

// matches implements spec §4.5's pure version-match function.
func matches(slotVersion, requested uint32, criteria MatchCriteria) bool {
	if criteria&Equals != 0 && slotVersion == requested {
		return true
	}

	if criteria&GreaterThan != 0 && slotVersion > requested {
		return true
	}

	if criteria&LowerThan != 0 && slotVersion < requested {
		return true
	}

	return false
}

// Handle is an opaque, consumer-owned reference to a published interface:
// a slot index paired with the generation (hash) captured at acquisition
// time. A handle is valid only while its captured generation matches the
// slot's current generation; a mismatch means the slot was unpublished
// and possibly republished since the handle was issued.
type Handle struct {
	table      *Table
	index      uint32
	generation uint32
}

// Valid reports whether h still refers to the slot it was issued for (it
// does not itself check that the slot is currently occupied by the same
// descriptor the caller remembers — only that no republish has occurred).
func (h Handle) Valid() bool {
	if h.table == nil {
		return false
	}

	s := &h.table.slots[h.index]

	return s.hash.Load() == h.generation
}

// TryGet resolves name/version/criteria to a handle on the first matching
// slot in table order, per spec §4.2.
func (t *Table) TryGet(name string, version uint32, criteria MatchCriteria) (Handle, error) {
	if err := t.checkInitialized(); err != nil {
		return Handle{}, err
	}

	if name == "" {
		return Handle{}, fmt.Errorf("ipc: try-get requires a name: %w", errs.ErrArg)
	}

	t.mu.AcquireExclusive()
	defer t.mu.ReleaseExclusive()

	idx := -1

	for i := range t.slots {
		s := &t.slots[i]

		d := s.descriptor.Load()
		if d == nil || d.Name != name {
			continue
		}

		if !matches(d.Version, version, criteria) {
			continue
		}

		idx = i

		break
	}

	if idx == -1 {
		return Handle{}, errs.ErrItemNotFound
	}

	s := &t.slots[idx]
	if s.refCount >= t.cfg.MaxInstancesPerInterface {
		return Handle{}, errs.ErrOutOfMemory
	}

	s.refCount++

	return Handle{table: t, index: uint32(idx), generation: s.hash.Load()}, nil
}

// Get clones an existing handle, bumping ref_count again. It fails with
// [errs.ErrItemNotFound] if the original handle's slot has since been
// unpublished (and possibly republished), exactly as a stale handle does
// everywhere else.
func (t *Table) Get(original Handle) (Handle, error) {
	if err := t.checkInitialized(); err != nil {
		return Handle{}, err
	}

	if original.table != t {
		return Handle{}, fmt.Errorf("ipc: handle belongs to a different table: %w", errs.ErrArg)
	}

	t.mu.AcquireExclusive()
	defer t.mu.ReleaseExclusive()

	s := &t.slots[original.index]
	if s.descriptor.Load() == nil || s.hash.Load() != original.generation {
		return Handle{}, errs.ErrItemNotFound
	}

	if s.refCount >= t.cfg.MaxInstancesPerInterface {
		return Handle{}, errs.ErrOutOfMemory
	}

	s.refCount++

	return Handle{table: t, index: original.index, generation: s.hash.Load()}, nil
}

// Release extinguishes a handle's reference.
//
// If h's captured generation no longer matches the slot's current
// generation, the slot was republished since h was issued: the caller's
// logical reference was already extinguished when Unpublish cleared the
// slot, so Release is a no-op success and never touches the new
// occupant's ref_count (spec §9's "safer re-architecture", adopted here
// instead of the source's unconditional decrement).
//
// Double-releasing a still-current handle (ref_count already zero) fails
// with [errs.ErrPrecondition].
func (t *Table) Release(h Handle) error {
	if err := t.checkInitialized(); err != nil {
		return err
	}

	if h.table != t {
		return fmt.Errorf("ipc: handle belongs to a different table: %w", errs.ErrArg)
	}

	t.mu.AcquireExclusive()
	defer t.mu.ReleaseExclusive()

	s := &t.slots[h.index]

	if s.hash.Load() != h.generation {
		return nil
	}

	if s.refCount == 0 {
		return errs.ErrPrecondition
	}

	s.refCount--

	return nil
}
