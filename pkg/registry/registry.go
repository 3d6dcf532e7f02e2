// Package registry implements the flash-backed key/value registry: an
// append-only log of (key, value) records over erase-once flash, with
// tombstone deletion and a fixed-size node-array directory, per spec §4.7.
package registry

import (
	"bytes"
	"fmt"

	"github.com/calvinalkan/ulib-broker/internal/errs"
	"github.com/calvinalkan/ulib-broker/internal/platform"
)

// ControlBlock describes the flash layout a [Registry] operates over,
// mirroring az_ulib_registry_control_block from the original source:
// directory and data region bounds plus the backing [Device].
type ControlBlock struct {
	Device Device

	DirectoryOffset uint64
	DirectoryCount  uint64

	DataOffset uint64
	DataSize   uint64
}

// Info reports registry memory utilization, per spec §6/§4.7 get_info.
type Info struct {
	TotalNodes int
	InUseNodes int
	FreeNodes  int

	TotalDataBytes uint64
	InUseDataBytes uint64
	FreeDataBytes  uint64
}

// Registry is the broker-owned persistent key/value store. The zero value
// is not usable; construct with [New] and call [Registry.Init].
//
// Init/Deinit are not thread-safe, per spec §4.7/az_ulib_registry_api.h:
// callers must not invoke them concurrently with each other or with any
// other Registry method.
type Registry struct {
	mu platform.Lock

	cb          ControlBlock
	initialized bool
}

// New returns an uninitialized Registry.
func New() *Registry {
	return &Registry{}
}

// Init binds the registry to cb's flash layout. Calling Init while already
// initialized is a programming error (the source documents this as
// "unpredictable behavior"; this implementation rejects it outright).
func (r *Registry) Init(cb ControlBlock) error {
	if r.initialized {
		return errs.ErrAlreadyInitialized
	}

	if cb.Device == nil || cb.DirectoryCount == 0 || cb.DataSize == 0 {
		return fmt.Errorf("registry: invalid control block: %w", errs.ErrArg)
	}

	if cb.DirectoryOffset+cb.DirectoryCount*nodeSize > cb.Device.Size() {
		return fmt.Errorf("registry: directory region exceeds device size: %w", errs.ErrArg)
	}

	if cb.DataOffset+cb.DataSize > cb.Device.Size() {
		return fmt.Errorf("registry: data region exceeds device size: %w", errs.ErrArg)
	}

	r.cb = cb
	r.initialized = true

	return nil
}

// Deinit releases the registry. It may be re-initialized afterward,
// including against the same flash image (simulating a reboot).
func (r *Registry) Deinit() error {
	if !r.initialized {
		return errs.ErrNotInitialized
	}

	r.initialized = false

	return nil
}

func (r *Registry) checkInitialized() error {
	if !r.initialized {
		return errs.ErrNotInitialized
	}

	return nil
}

func (r *Registry) nodeBytes(idx uint64) []byte {
	off := r.cb.DirectoryOffset + idx*nodeSize

	return r.cb.Device.Bytes()[off : off+nodeSize]
}

func (r *Registry) nodeAddr(idx uint64) uint64 {
	return r.cb.DirectoryOffset + idx*nodeSize
}

// directoryLogicalLen scans from index 0 and returns the index of the
// first entirely-erased node, i.e. the "logical end of the directory"
// per spec §3/§4.7. Every live, pending, or tombstoned node is guaranteed
// to sit below this index because the directory is allocated bump-style:
// Add always claims the lowest still-erased index.
func (r *Registry) directoryLogicalLen() uint64 {
	for i := uint64(0); i < r.cb.DirectoryCount; i++ {
		if nodeErased(r.nodeBytes(i)) {
			return i
		}
	}

	return r.cb.DirectoryCount
}

func (r *Registry) keyBytes(n node) []byte {
	off := r.cb.DataOffset + n.keyPointer

	return r.cb.Device.Bytes()[off : off+n.keyLength]
}

func (r *Registry) valueBytes(n node) []byte {
	off := r.cb.DataOffset + n.valuePointer

	return r.cb.Device.Bytes()[off : off+n.valueLength]
}

// dataFreeStart returns the offset, relative to DataOffset, one past the
// highest non-erased 64-bit word in the data region, recomputed directly
// from flash contents so it survives a simulated reboot (spec §4.7,
// scenario S5) without any cached state.
func (r *Registry) dataFreeStart() uint64 {
	data := r.cb.Device.Bytes()[r.cb.DataOffset : r.cb.DataOffset+r.cb.DataSize]

	words := len(data) / 8

	for w := words - 1; w >= 0; w-- {
		word := data[w*8 : w*8+8]
		if !bytes.Equal(word, allOnesWord[:]) {
			return uint64(w+1) * 8
		}
	}

	return 0
}

var allOnesWord = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Add inserts (key, value) into the registry, per spec §4.7.
//
// Fails with [errs.ErrElementDuplicate] if a live entry already has this
// key, [errs.ErrNotEnoughSpace] if the directory has no free node, or
// [errs.ErrOutOfMemory] if the data region has no room for the padded
// key+value bytes.
func (r *Registry) Add(key, value []byte) error {
	if err := r.checkInitialized(); err != nil {
		return err
	}

	if len(key) == 0 || len(value) == 0 {
		return fmt.Errorf("registry: key and value must be non-empty: %w", errs.ErrArg)
	}

	r.mu.Acquire()
	defer r.mu.Release()

	logicalLen := r.directoryLogicalLen()

	for i := uint64(0); i < logicalLen; i++ {
		raw := r.nodeBytes(i)
		n := decodeNode(raw)

		if n.state(raw) == stateLive && bytes.Equal(r.keyBytes(n), key) {
			return errs.ErrElementDuplicate
		}
	}

	if logicalLen >= r.cb.DirectoryCount {
		return errs.ErrNotEnoughSpace
	}

	freeStart := r.dataFreeStart()

	keyPad := len(key) + padTo8(len(key))
	valPad := len(value) + padTo8(len(value))
	reserve := uint64(keyPad + valPad)

	if freeStart+reserve > r.cb.DataSize {
		return errs.ErrOutOfMemory
	}

	writer, err := r.cb.Device.OpenWriter(r.cb.DataOffset + freeStart)
	if err != nil {
		return fmt.Errorf("registry: open data writer: %w", errs.ErrSystem)
	}

	if _, err := writer.Write(key); err != nil {
		return fmt.Errorf("registry: write key: %w", errs.ErrSystem)
	}

	if err := writer.Close(0x00); err != nil {
		return fmt.Errorf("registry: close key writer: %w", errs.ErrSystem)
	}

	valueOff := freeStart + uint64(keyPad)

	valueWriter, err := r.cb.Device.OpenWriter(r.cb.DataOffset + valueOff)
	if err != nil {
		return fmt.Errorf("registry: open value writer: %w", errs.ErrSystem)
	}

	if _, err := valueWriter.Write(value); err != nil {
		return fmt.Errorf("registry: write value: %w", errs.ErrSystem)
	}

	if err := valueWriter.Close(0x00); err != nil {
		return fmt.Errorf("registry: close value writer: %w", errs.ErrSystem)
	}

	nodeAddr := r.nodeAddr(logicalLen)

	if err := r.cb.Device.WriteU64(nodeAddr+offKeyPointer, freeStart); err != nil {
		return fmt.Errorf("registry: write key_pointer: %w", errs.ErrSystem)
	}

	if err := r.cb.Device.WriteU64(nodeAddr+offKeyLength, uint64(len(key))); err != nil {
		return fmt.Errorf("registry: write key_length: %w", errs.ErrSystem)
	}

	if err := r.cb.Device.WriteU64(nodeAddr+offValuePointer, valueOff); err != nil {
		return fmt.Errorf("registry: write value_pointer: %w", errs.ErrSystem)
	}

	if err := r.cb.Device.WriteU64(nodeAddr+offValueLength, uint64(len(value))); err != nil {
		return fmt.Errorf("registry: write value_length: %w", errs.ErrSystem)
	}

	// Node is now PENDING (key/value pointers committed, ready_flag still
	// erased). Programming ready_flag transitions it to LIVE.
	if err := r.cb.Device.WriteU64(nodeAddr+offReadyFlag, wordCommitted); err != nil {
		return fmt.Errorf("registry: write ready_flag: %w", errs.ErrSystem)
	}

	return nil
}

// Delete tombstones the live node matching key. Fails with
// [errs.ErrItemNotFound] if no live node has this key.
func (r *Registry) Delete(key []byte) error {
	if err := r.checkInitialized(); err != nil {
		return err
	}

	r.mu.Acquire()
	defer r.mu.Release()

	logicalLen := r.directoryLogicalLen()

	for i := uint64(0); i < logicalLen; i++ {
		raw := r.nodeBytes(i)
		n := decodeNode(raw)

		if n.state(raw) != stateLive || !bytes.Equal(r.keyBytes(n), key) {
			continue
		}

		addr := r.nodeAddr(i) + offDeleteFlag

		if err := r.cb.Device.WriteU64(addr, wordCommitted); err != nil {
			return fmt.Errorf("registry: write delete_flag: %w", errs.ErrSystem)
		}

		return nil
	}

	return errs.ErrItemNotFound
}

// TryGetValue returns the stored value for key without copying: the
// returned slice aliases the device's backing storage directly, per
// spec §4.7 ("No copy"). Fails with [errs.ErrItemNotFound] if no live
// node has this key.
func (r *Registry) TryGetValue(key []byte) ([]byte, error) {
	if err := r.checkInitialized(); err != nil {
		return nil, err
	}

	r.mu.Acquire()
	defer r.mu.Release()

	logicalLen := r.directoryLogicalLen()

	for i := uint64(0); i < logicalLen; i++ {
		raw := r.nodeBytes(i)
		n := decodeNode(raw)

		if n.state(raw) != stateLive || !bytes.Equal(r.keyBytes(n), key) {
			continue
		}

		return r.valueBytes(n), nil
	}

	return nil, errs.ErrItemNotFound
}

// CleanAll bulk-erases both the directory and data regions. There is no
// rollback for this operation.
func (r *Registry) CleanAll() error {
	if err := r.checkInitialized(); err != nil {
		return err
	}

	r.mu.Acquire()
	defer r.mu.Release()

	if err := r.cb.Device.Erase(r.cb.DirectoryOffset, r.cb.DirectoryCount*nodeSize); err != nil {
		return fmt.Errorf("registry: erase directory: %w", errs.ErrSystem)
	}

	if err := r.cb.Device.Erase(r.cb.DataOffset, r.cb.DataSize); err != nil {
		return fmt.Errorf("registry: erase data: %w", errs.ErrSystem)
	}

	return nil
}

// GetInfo reports registry memory utilization, per spec §4.7.
func (r *Registry) GetInfo() (Info, error) {
	if err := r.checkInitialized(); err != nil {
		return Info{}, err
	}

	r.mu.Acquire()
	defer r.mu.Release()

	logicalLen := r.directoryLogicalLen()

	inUse := 0

	for i := uint64(0); i < logicalLen; i++ {
		raw := r.nodeBytes(i)
		n := decodeNode(raw)

		if n.state(raw) == stateLive {
			inUse++
		}
	}

	usedData := r.dataFreeStart()

	return Info{
		TotalNodes: int(r.cb.DirectoryCount),
		InUseNodes: inUse,
		FreeNodes:  int(r.cb.DirectoryCount - logicalLen),

		TotalDataBytes: r.cb.DataSize,
		InUseDataBytes: usedData,
		FreeDataBytes:  r.cb.DataSize - usedData,
	}, nil
}
