// Package errs defines the result-code taxonomy shared by the IPC broker
// and the persistent registry.
//
// Every operation in this module returns one of these sentinel errors (or
// nil). Callers classify failures with errors.Is, never by string
// comparison or type assertion. Capability-defined errors returned through
// [ipc.Table.Call] are passed through unchanged and are never one of these
// sentinels.
package errs

import "errors"

var (
	// ErrNotInitialized is returned by any operation invoked before Init.
	ErrNotInitialized = errors.New("ulib: not initialized")

	// ErrAlreadyInitialized is returned by Init when called twice without
	// an intervening Deinit.
	ErrAlreadyInitialized = errors.New("ulib: already initialized")

	// ErrBusy indicates a conflicting or in-flight operation prevented
	// completion; the caller may retry.
	ErrBusy = errors.New("ulib: busy")

	// ErrItemNotFound indicates a lookup (by name/version, by handle, or
	// by key) found nothing live matching the request.
	ErrItemNotFound = errors.New("ulib: item not found")

	// ErrElementDuplicate indicates a publish or registry add collided
	// with an existing live entry.
	ErrElementDuplicate = errors.New("ulib: duplicate element")

	// ErrNotEnoughSpace indicates the registry directory has no free node.
	ErrNotEnoughSpace = errors.New("ulib: not enough space")

	// ErrOutOfMemory indicates the registry data region, or the IPC slot
	// table, has no free capacity.
	ErrOutOfMemory = errors.New("ulib: out of memory")

	// ErrPrecondition indicates a caller violated an operation's stated
	// precondition (e.g. double release).
	ErrPrecondition = errors.New("ulib: precondition violated")

	// ErrArg indicates an invalid argument (nil pointer, empty span where
	// forbidden, out-of-range index).
	ErrArg = errors.New("ulib: invalid argument")

	// ErrNotSupported indicates the requested operation is not implemented
	// for the current build configuration.
	ErrNotSupported = errors.New("ulib: not supported")

	// ErrSystem indicates a generic failure from an underlying platform
	// primitive (lock, thread, flash driver).
	ErrSystem = errors.New("ulib: system error")

	// ErrTimeout indicates a bounded wait elapsed before the awaited
	// condition was satisfied.
	ErrTimeout = errors.New("ulib: timeout")
)
