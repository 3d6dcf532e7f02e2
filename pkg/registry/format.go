package registry

import (
	"encoding/binary"
)

// Directory node layout, little-endian, 64-bit aligned, exactly per spec §6:
//
//	offset 0  : ready_flag    (8 bytes) — 0x00..00 => LIVE marker set
//	offset 8  : delete_flag   (8 bytes) — 0x00..00 => tombstoned
//	offset 16 : key_pointer   (8 bytes) } key span
//	offset 24 : key_length    (8 bytes) }
//	offset 32 : value_pointer (8 bytes) } value span
//	offset 40 : value_length  (8 bytes) }
//
// Erased state of any field is all-ones.
const (
	offReadyFlag    = 0
	offDeleteFlag   = 8
	offKeyPointer   = 16
	offKeyLength    = 24
	offValuePointer = 32
	offValueLength  = 40

	nodeSize = 48
)

const wordAllOnes = ^uint64(0)
const wordCommitted = 0

// node is the decoded, in-memory view of one 48-byte directory entry.
type node struct {
	readyFlag    uint64
	deleteFlag   uint64
	keyPointer   uint64
	keyLength    uint64
	valuePointer uint64
	valueLength  uint64
}

// decodeNode parses a nodeSize-byte slice.
func decodeNode(b []byte) node {
	return node{
		readyFlag:    binary.LittleEndian.Uint64(b[offReadyFlag:]),
		deleteFlag:   binary.LittleEndian.Uint64(b[offDeleteFlag:]),
		keyPointer:   binary.LittleEndian.Uint64(b[offKeyPointer:]),
		keyLength:    binary.LittleEndian.Uint64(b[offKeyLength:]),
		valuePointer: binary.LittleEndian.Uint64(b[offValuePointer:]),
		valueLength:  binary.LittleEndian.Uint64(b[offValueLength:]),
	}
}

// state classifies a node per spec §4.7's state machine.
type nodeState int

const (
	stateErased nodeState = iota
	statePending
	stateLive
	stateTombstone
)

// nodeErased reports whether every field of the node's raw bytes is still
// all-ones — the "logical end of the directory" sentinel from spec §3.
func nodeErased(b []byte) bool {
	for _, by := range b[:nodeSize] {
		if by != 0xFF {
			return false
		}
	}

	return true
}

func (n node) state(raw []byte) nodeState {
	if nodeErased(raw) {
		return stateErased
	}

	if n.readyFlag != wordCommitted {
		return statePending
	}

	if n.deleteFlag == wordCommitted {
		return stateTombstone
	}

	return stateLive
}

// padTo8 returns the number of padding bytes needed to round n up to the
// next multiple of 8.
func padTo8(n int) int {
	rem := n % 8
	if rem == 0 {
		return 0
	}

	return 8 - rem
}
