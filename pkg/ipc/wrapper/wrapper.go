// Package wrapper provides the span-marshalling convention auto-generated
// interface wrappers rely on when calling through [ipc.Table.CallWithSpan].
//
// It is deliberately thin: the broker itself never interprets model bytes
// (spec §4.3), so this package only fixes the concatenation contract a
// generated wrapper and its matching capability agree on — a
// length-prefixed field sequence — not a general-purpose codec.
package wrapper

import (
	"encoding/binary"
	"fmt"

	"github.com/calvinalkan/ulib-broker/pkg/ustream"
)

// Encoder builds a length-prefixed byte span suitable for
// [ipc.Table.CallWithSpan]'s in/out arguments.
type Encoder struct {
	s *ustream.Stream
}

// NewEncoder returns a ready-to-use Encoder.
func NewEncoder() *Encoder {
	return &Encoder{s: ustream.New(64)}
}

// PutBytes appends a length-prefixed byte field.
func (e *Encoder) PutBytes(b []byte) {
	var lenBuf [4]byte

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	_, _ = e.s.Write(lenBuf[:])
	_, _ = e.s.Write(b)
}

// PutString appends a length-prefixed UTF-8 string field.
func (e *Encoder) PutString(v string) {
	e.PutBytes([]byte(v))
}

// PutUint32 appends a fixed 4-byte little-endian field.
func (e *Encoder) PutUint32(v uint32) {
	var buf [4]byte

	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = e.s.Write(buf[:])
}

// Bytes returns the encoded span.
func (e *Encoder) Bytes() []byte {
	return e.s.Bytes()
}

// Decoder reads fields out of a span produced by [Encoder] in the same
// order they were written.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps span for sequential field reads.
func NewDecoder(span []byte) *Decoder {
	return &Decoder{buf: span}
}

// Bytes reads the next length-prefixed byte field.
func (d *Decoder) Bytes() ([]byte, error) {
	if d.pos+4 > len(d.buf) {
		return nil, fmt.Errorf("wrapper: truncated length prefix at offset %d", d.pos)
	}

	n := int(binary.LittleEndian.Uint32(d.buf[d.pos:]))
	d.pos += 4

	if d.pos+n > len(d.buf) {
		return nil, fmt.Errorf("wrapper: truncated field of length %d at offset %d", n, d.pos)
	}

	v := d.buf[d.pos : d.pos+n]
	d.pos += n

	return v, nil
}

// String reads the next length-prefixed string field.
func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Uint32 reads the next fixed 4-byte little-endian field.
func (d *Decoder) Uint32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, fmt.Errorf("wrapper: truncated uint32 at offset %d", d.pos)
	}

	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4

	return v, nil
}
