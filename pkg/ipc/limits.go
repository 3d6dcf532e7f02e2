package ipc

// Config configures a [Table].
//
// MaxInterfaces and MaxInstancesPerInterface correspond to the spec's
// MAX_INTERFACES / MAX_INSTANCES_PER_INTERFACE compile-time constants
// (§6 "Configuration"); on this target they are plain runtime fields
// since Go has no preprocessor.
//
// ValidateContract and IncludeUnpublish mirror the two build-style
// switches from spec §6. ValidateContract is stored but not consulted by
// any method: precondition violations are returned as [errs.ErrArg]
// whatever its value, and nothing panics. IncludeUnpublish, when false,
// makes [Table.Unpublish] return [errs.ErrNotSupported]; [Table.Call]
// still tracks running_count either way.
type Config struct {
	MaxInterfaces            int
	MaxInstancesPerInterface uint32

	ValidateContract bool
	IncludeUnpublish bool
}

// DefaultConfig returns generous defaults suitable for tests and demos.
func DefaultConfig() Config {
	return Config{
		MaxInterfaces:            16,
		MaxInstancesPerInterface: 8,
		ValidateContract:         true,
		IncludeUnpublish:         true,
	}
}

// Hard ceilings; configuration beyond these is rejected by [New] as a
// programming error.
//
// maxInterfacesCeiling is capped at 1<<15 rather than 1<<16: query.go's
// continuation token packs the slot index into 15 bits, and a table with
// more slots than that would silently truncate QueryNext's token.
const (
	maxInterfacesCeiling            = 1 << 15
	maxInstancesPerInterfaceCeiling = 1 << 16
)
