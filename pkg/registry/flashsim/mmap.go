//go:build unix

package flashsim

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedDevice is a [registry.Device] backed by an mmap'd file instead of
// a plain Go slice. Unlike [Device.SaveSnapshot]/[LoadSnapshot], writes
// are visible to the file as they happen (subject to the OS's own
// writeback timing) rather than only at an explicit snapshot point —
// useful for reproducing crash scenarios that cut power mid-write.
type MappedDevice struct {
	Device

	file *os.File
}

// OpenMapped mmaps path, creating and zero/erase-filling it with the
// given size if it doesn't already exist, or reusing its current
// contents if it does (so a process restart against the same path
// resumes where the flash image left off).
func OpenMapped(path string, size uint64, pageSize uint64) (*MappedDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("flashsim: open %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flashsim: stat %q: %w", path, err)
	}

	freshlyCreated := info.Size() == 0

	if info.Size() != int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("flashsim: truncate %q: %w", path, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flashsim: mmap %q: %w", path, err)
	}

	if freshlyCreated {
		for i := range data {
			data[i] = 0xFF
		}
	}

	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	return &MappedDevice{
		Device: Device{data: data, pageSize: pageSize},
		file:   f,
	}, nil
}

// Close unmaps the file and closes its descriptor. Any writes already
// made are visible to the next [OpenMapped] of the same path even
// without calling Close, since they go straight through the mapping;
// Close only releases the in-process resources.
func (m *MappedDevice) Close() error {
	err := unix.Munmap(m.Device.data)

	closeErr := m.file.Close()
	if err == nil {
		err = closeErr
	}

	return err
}
