package ipc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/calvinalkan/ulib-broker/internal/errs"
)

// Token is an opaque query continuation token, per spec §3/§4.4. Token(0)
// denotes end-of-stream. The encoding (slot index, capability index,
// phase) is stable only across a single uninterrupted iteration; it is
// never meant to be persisted or compared across tables.
type Token uint32

const tokenPhaseInterfaces = 0
const tokenPhaseCapabilities = 1

func encodeToken(phase, slotIdx, capIdx int) Token {
	// phase:1 bit | slotIdx:15 bits | capIdx:16 bits — generous for the
	// spec's small MAX_INTERFACES / capability-list sizes; see limits.go.
	return Token(uint32(phase&0x1)<<31 | uint32(slotIdx&0x7FFF)<<16 | uint32(capIdx&0xFFFF))
}

func decodeToken(t Token) (phase, slotIdx, capIdx int) {
	v := uint32(t)

	return int(v >> 31 & 0x1), int(v >> 16 & 0x7FFF), int(v & 0xFFFF)
}

// interfaceID formats "package.packageVersion.interface.interfaceVersion"
// per spec §4.4. This broker has no separate package namespace, so the
// package segment mirrors the interface name, matching the identifier
// shape the original's az_ulib_ipc_query model specifies.
func interfaceID(d *Descriptor) string {
	return fmt.Sprintf("%s.%d.%s.%d", d.Name, d.Version, d.Name, d.Version)
}

// Query begins an enumeration, per spec §4.4.
//
// If querySpan is empty, it enumerates all published interfaces as a
// comma-separated list of interface identifiers. Otherwise querySpan is
// interpreted as an interface identifier and Query enumerates that
// interface's capability names.
//
// Query returns at most queryBatchSize entries per call, standing in for
// the spec's result_span-fitting behavior in a language without
// caller-supplied buffers; when more entries remain it returns a nonzero
// Token to pass to QueryNext. io.EOF is returned alongside a zero Token
// when the entire enumeration fit in this call's result.
func (t *Table) Query(querySpan string) (string, Token, error) {
	if err := t.checkInitialized(); err != nil {
		return "", 0, err
	}

	t.mu.AcquireShared()
	defer t.mu.ReleaseShared()

	if querySpan == "" {
		return t.queryInterfacesLocked(0)
	}

	return t.queryCapabilitiesLocked(querySpan, 0)
}

// QueryNext resumes an iteration from a token previously returned by
// [Table.Query] or [Table.QueryNext]. Per spec §4.4, iteration is
// best-effort across concurrent publish/unpublish: already-visited slots
// are never revisited and newly published slots may be skipped, but
// QueryNext never panics or returns corrupted entries.
func (t *Table) QueryNext(tok Token) (string, Token, error) {
	if err := t.checkInitialized(); err != nil {
		return "", 0, err
	}

	if tok == 0 {
		return "", 0, io.EOF
	}

	t.mu.AcquireShared()
	defer t.mu.ReleaseShared()

	phase, slotIdx, capIdx := decodeToken(tok)

	if phase == tokenPhaseInterfaces {
		return t.queryInterfacesLocked(slotIdx)
	}

	s := &t.slots[slotIdx]
	d := s.descriptor.Load()

	if d == nil {
		// The interface was unpublished mid-iteration; best-effort means
		// we simply stop rather than guess at what replaced it.
		return "", 0, io.EOF
	}

	return t.queryCapabilitiesFromLocked(d, slotIdx, capIdx)
}

// queryBatchSize bounds how many entries a single Query/QueryNext call
// returns, modeling the spec's "fill result_span with as many whole
// entries as fit."
const queryBatchSize = 8

func (t *Table) queryInterfacesLocked(startSlot int) (string, Token, error) {
	var ids []string

	i := startSlot

	for ; i < len(t.slots) && len(ids) < queryBatchSize; i++ {
		d := t.slots[i].descriptor.Load()
		if d == nil {
			continue
		}

		ids = append(ids, interfaceID(d))
	}

	result := strings.Join(ids, ",")

	if i >= len(t.slots) {
		return result, 0, io.EOF
	}

	return result, encodeToken(tokenPhaseInterfaces, i, 0), nil
}

func (t *Table) queryCapabilitiesLocked(querySpan string, startCap int) (string, Token, error) {
	for i := range t.slots {
		d := t.slots[i].descriptor.Load()
		if d == nil || interfaceID(d) != querySpan {
			continue
		}

		return t.queryCapabilitiesFromLocked(d, i, startCap)
	}

	return "", 0, errs.ErrItemNotFound
}

func (t *Table) queryCapabilitiesFromLocked(d *Descriptor, slotIdx, startCap int) (string, Token, error) {
	var names []string

	next := startCap

	for i := startCap; i < len(d.Capabilities) && len(names) < queryBatchSize; i++ {
		names = append(names, d.Capabilities[i].Name)
		next = i + 1
	}

	result := strings.Join(names, ",")

	if next >= len(d.Capabilities) {
		if result == "" {
			return "", 0, io.EOF
		}

		return result, 0, io.EOF
	}

	return result, encodeToken(tokenPhaseCapabilities, slotIdx, next), nil
}

// String renders a Token for diagnostics; it is not a serialization format
// callers should depend on.
func (tok Token) String() string {
	return strconv.FormatUint(uint64(tok), 10)
}
