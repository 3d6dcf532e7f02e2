package flashsim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// snapshotMagic tags files written by [Device.SaveSnapshot] so
// [LoadSnapshot] can reject unrelated files up front instead of silently
// misinterpreting their contents as flash.
var snapshotMagic = [4]byte{'U', 'F', 'L', 'S'}

// SaveSnapshot durably writes the device's entire contents to path,
// letting a test or the demo CLI simulate a reboot by later calling
// [LoadSnapshot] against the same path — the device picks up exactly
// where its directory/data state left off, per spec §4.7 scenario S5.
//
// The write is atomic: a crash mid-write leaves the previous snapshot (or
// no file) in place, never a half-written one.
func (d *Device) SaveSnapshot(path string) error {
	d.mu.Acquire()
	defer d.mu.Release()

	buf := make([]byte, 12+len(d.data))
	copy(buf[:4], snapshotMagic[:])
	binary.LittleEndian.PutUint64(buf[4:12], d.pageSize)
	copy(buf[12:], d.data)

	return atomic.WriteFile(path, bytes.NewReader(buf))
}

// LoadSnapshot reads a file written by [Device.SaveSnapshot] and returns a
// Device reconstructed from it.
func LoadSnapshot(path string) (*Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flashsim: read snapshot %q: %w", path, err)
	}

	if len(raw) < 12 || !bytes.Equal(raw[:4], snapshotMagic[:]) {
		return nil, fmt.Errorf("flashsim: %q is not a flashsim snapshot", path)
	}

	pageSize := binary.LittleEndian.Uint64(raw[4:12])
	data := raw[12:]

	d := &Device{
		data:     make([]byte, len(data)),
		pageSize: pageSize,
	}
	copy(d.data, data)

	return d, nil
}
