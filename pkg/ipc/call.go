package ipc

import (
	"fmt"

	"github.com/calvinalkan/ulib-broker/internal/errs"
)

// Call invokes the capability at capabilityIndex on behalf of h, per spec
// §4.3. It is the only broker operation that does not hold the table lock
// while executing user code: running_count is incremented and decremented
// with a lock-free atomic, so capability code may freely re-enter the
// broker — including calling Call on the same slot, Unpublish, Release, or
// Deinit — without deadlocking.
//
// Call returns [errs.ErrItemNotFound] if the slot has been unpublished, if
// h's generation no longer matches the slot's, if capabilityIndex is out
// of range, or if the capability's kind forbids a direct call (e.g.
// Telemetry). Otherwise it returns the capability's own result verbatim —
// the broker never interprets or wraps a capability-defined error.
func (t *Table) Call(h Handle, capabilityIndex int, modelIn, modelOut any) error {
	if err := t.checkInitialized(); err != nil {
		return err
	}

	if h.table != t {
		return fmt.Errorf("ipc: handle belongs to a different table: %w", errs.ErrArg)
	}

	s := &t.slots[h.index]

	s.running.Increment()
	defer s.running.Decrement()

	d := s.descriptor.Load()
	if d == nil {
		return errs.ErrItemNotFound
	}

	if s.hash.Load() != h.generation {
		return errs.ErrItemNotFound
	}

	if capabilityIndex < 0 || capabilityIndex >= len(d.Capabilities) {
		return errs.ErrItemNotFound
	}

	c := &d.Capabilities[capabilityIndex]
	if !c.callable() {
		return errs.ErrItemNotFound
	}

	return c.entryPoint()(modelIn, modelOut)
}

// CallWithSpan is [Call]'s by-name, span-argument variant: capability
// lookup happens by name via [Table.TryGetCapability] and the entry point
// invoked is the capability's span-wrapper, not its typed entry point.
func (t *Table) CallWithSpan(h Handle, capabilityName string, in, out []byte) error {
	if err := t.checkInitialized(); err != nil {
		return err
	}

	if h.table != t {
		return fmt.Errorf("ipc: handle belongs to a different table: %w", errs.ErrArg)
	}

	s := &t.slots[h.index]

	s.running.Increment()
	defer s.running.Decrement()

	d := s.descriptor.Load()
	if d == nil {
		return errs.ErrItemNotFound
	}

	if s.hash.Load() != h.generation {
		return errs.ErrItemNotFound
	}

	idx := indexOfCapability(d, capabilityName)
	if idx == -1 {
		return errs.ErrItemNotFound
	}

	span := d.Capabilities[idx].spanEntryPoint()
	if span == nil {
		return errs.ErrItemNotFound
	}

	return span(in, out)
}

// TryGetCapability resolves a capability name to its index within h's
// descriptor's capability list, per spec §4.3. Unlike Call, this is a
// plain table-lock-guarded lookup: it does not execute capability code.
func (t *Table) TryGetCapability(h Handle, name string) (int, error) {
	if err := t.checkInitialized(); err != nil {
		return 0, err
	}

	if h.table != t {
		return 0, fmt.Errorf("ipc: handle belongs to a different table: %w", errs.ErrArg)
	}

	t.mu.AcquireShared()
	defer t.mu.ReleaseShared()

	s := &t.slots[h.index]

	d := s.descriptor.Load()
	if d == nil || s.hash.Load() != h.generation {
		return 0, errs.ErrItemNotFound
	}

	idx := indexOfCapability(d, name)
	if idx == -1 {
		return 0, errs.ErrItemNotFound
	}

	return idx, nil
}

func indexOfCapability(d *Descriptor, name string) int {
	for i := range d.Capabilities {
		if d.Capabilities[i].Name == name {
			return i
		}
	}

	return -1
}
