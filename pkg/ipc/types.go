package ipc

// CapabilityKind tags which role a capability's function pointers play.
type CapabilityKind int

const (
	// Property exposes an optional getter and/or setter.
	Property CapabilityKind = iota
	// Telemetry is addressable only as subscribe/unsubscribe commands; it
	// carries no directly callable function and a direct Call on it fails
	// with [errs.ErrItemNotFound].
	Telemetry
	// Command is a synchronous callable with an optional span-wrapper
	// entry point for [Table.CallWithSpan].
	Command
	// CommandAsync carries an async entry point plus an optional
	// cancellation function. The broker conveys Cancel but never
	// schedules it; see SPEC_FULL.md §13.
	CommandAsync
)

// CapabilityFunc is the shape every capability entry point implements.
// model_in/model_out are caller-defined; the broker never inspects them.
type CapabilityFunc func(modelIn, modelOut any) error

// SpanFunc is the span-wrapper entry point used by [Table.CallWithSpan].
type SpanFunc func(in, out []byte) error

// Capability is one named operation inside an [Descriptor]'s capability
// list. Which of Get/Set/Entry/Span/Async/Cancel is populated depends on
// Kind, per spec §3:
//
//	Property:     Get, Set (either may be nil)
//	Command:      Entry, Span (Span optional)
//	CommandAsync: Async, Cancel
//	Telemetry:    none — not directly callable
type Capability struct {
	Name string
	Kind CapabilityKind

	Get  CapabilityFunc
	Set  CapabilityFunc
	Entry CapabilityFunc
	Span  SpanFunc
	Async CapabilityFunc
	Cancel CapabilityFunc
}

// callable reports whether the capability has a function reachable via a
// direct (index-based) Call.
func (c *Capability) callable() bool {
	switch c.Kind {
	case Property:
		return c.Get != nil || c.Set != nil
	case Command:
		return c.Entry != nil
	case CommandAsync:
		return c.Async != nil
	case Telemetry:
		return false
	default:
		return false
	}
}

// entryPoint returns the function invoked by a direct Call, preferring
// Get for Property (callers distinguish get/set via model_in convention
// the same way the original's span wrappers do — out of scope here to
// prescribe, since spec §3 leaves this to the capability's own contract).
func (c *Capability) entryPoint() CapabilityFunc {
	switch c.Kind {
	case Property:
		if c.Get != nil {
			return c.Get
		}

		return c.Set
	case Command:
		return c.Entry
	case CommandAsync:
		return c.Async
	default:
		return nil
	}
}

// spanEntryPoint returns the function invoked by CallWithSpan.
func (c *Capability) spanEntryPoint() SpanFunc {
	if c.Kind == Command {
		return c.Span
	}

	return nil
}

// Descriptor is the immutable, producer-owned record identifying a
// published interface: a name, a version, and an ordered capability list.
//
// Descriptor storage must outlive the call to [Table.Unpublish] that
// removes it: the broker only ever reads through a pointer obtained at
// Publish time, and the producer may reclaim it only after Unpublish
// returns successfully.
type Descriptor struct {
	Name         string
	Version      uint32
	Capabilities []Capability
}
