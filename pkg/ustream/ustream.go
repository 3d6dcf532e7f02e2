// Package ustream provides a small byte-stream accumulator used by
// pkg/ipc/wrapper's span encoder.
//
// It plays the role the original ulib's `ustream` module does for
// producers/consumers: concatenate independently-produced byte chunks into
// one contiguous span without the caller having to precompute a total
// length up front.
package ustream

// Stream accumulates bytes written to it and exposes the result as a
// single contiguous slice. The zero value is ready to use.
type Stream struct {
	buf []byte
}

// New returns a Stream pre-sized to hint bytes (a capacity hint, not a
// hard limit).
func New(hint int) *Stream {
	return &Stream{buf: make([]byte, 0, hint)}
}

// Write appends p to the stream and always returns (len(p), nil),
// satisfying io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)

	return len(p), nil
}

// WriteByte appends a single byte.
func (s *Stream) WriteByte(b byte) error {
	s.buf = append(s.buf, b)

	return nil
}

// Bytes returns the accumulated bytes. The returned slice aliases the
// Stream's internal buffer; callers that need to retain it across further
// writes must copy it first.
func (s *Stream) Bytes() []byte {
	return s.buf
}

// Len returns the number of accumulated bytes.
func (s *Stream) Len() int {
	return len(s.buf)
}

// Reset empties the stream for reuse.
func (s *Stream) Reset() {
	s.buf = s.buf[:0]
}
