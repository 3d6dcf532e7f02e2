// Package flashsim provides an in-memory [registry.Device] for tests and
// the demo CLI, plus durable snapshot persistence so a process restart can
// simulate a device reboot (spec §4.7, scenario S5).
package flashsim

import (
	"encoding/binary"
	"fmt"

	"github.com/calvinalkan/ulib-broker/internal/platform"
	"github.com/calvinalkan/ulib-broker/pkg/registry"
)

// DefaultPageSize is the erase granularity used when none is given to
// [New], chosen to match common NOR flash sector sizes.
const DefaultPageSize = 4096

// Device is an in-memory [registry.Device] that enforces the same
// write-once/erase-to-reset discipline real flash does, so bugs that only
// show up against that discipline (double-programming a word, unaligned
// writes) surface in tests instead of on hardware.
//
// Device is safe for concurrent use; callers running it under a
// [registry.Registry] get serialized access for free, but direct use
// (tests, the demo CLI) does not have to provide its own locking.
type Device struct {
	mu platform.Lock

	data     []byte
	pageSize uint64
}

// New returns a Device of the given size, starting fully erased
// (all-ones), with the given erase granularity. pageSize of 0 uses
// [DefaultPageSize].
func New(size uint64, pageSize uint64) *Device {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	d := &Device{
		data:     make([]byte, size),
		pageSize: pageSize,
	}

	for i := range d.data {
		d.data[i] = 0xFF
	}

	return d
}

// Bytes implements [registry.Device].
func (d *Device) Bytes() []byte {
	d.mu.Acquire()
	defer d.mu.Release()

	return d.data
}

// Size implements [registry.Device].
func (d *Device) Size() uint64 {
	return uint64(len(d.data))
}

// WriteU64 implements [registry.Device].
func (d *Device) WriteU64(addr uint64, value uint64) error {
	d.mu.Acquire()
	defer d.mu.Release()

	return d.writeU64Locked(addr, value)
}

func (d *Device) writeU64Locked(addr uint64, value uint64) error {
	if addr%8 != 0 {
		return fmt.Errorf("flashsim: unaligned write at 0x%x", addr)
	}

	if addr+8 > uint64(len(d.data)) {
		return fmt.Errorf("flashsim: write at 0x%x out of range", addr)
	}

	word := d.data[addr : addr+8]
	for _, b := range word {
		if b != 0xFF {
			return fmt.Errorf("flashsim: write at 0x%x: word not erased", addr)
		}
	}

	binary.LittleEndian.PutUint64(word, value)

	return nil
}

// Erase implements [registry.Device], aligning the requested range
// outward to the device's page size, matching real NOR flash erase
// granularity. A partial last page is erased up to the end of the device.
func (d *Device) Erase(addr uint64, size uint64) error {
	d.mu.Acquire()
	defer d.mu.Release()

	if addr+size > uint64(len(d.data)) {
		return fmt.Errorf("flashsim: erase [0x%x, 0x%x) out of range", addr, addr+size)
	}

	start := (addr / d.pageSize) * d.pageSize
	end := ((addr + size + d.pageSize - 1) / d.pageSize) * d.pageSize

	if end > uint64(len(d.data)) {
		end = uint64(len(d.data))
	}

	for i := start; i < end; i++ {
		d.data[i] = 0xFF
	}

	return nil
}

// OpenWriter implements [registry.Device].
func (d *Device) OpenWriter(addr uint64) (registry.Writer, error) {
	if addr%8 != 0 {
		return nil, fmt.Errorf("flashsim: unaligned writer open at 0x%x", addr)
	}

	return &bufWriter{dev: d, next: addr}, nil
}
