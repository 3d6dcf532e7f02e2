// Package ipc implements the in-process IPC broker: a fixed-capacity table
// of published interface descriptors, handle-based discovery and lifetime
// management, and a call dispatcher that never holds the table lock across
// a capability invocation.
//
// # Basic usage
//
//	table, err := ipc.New(ipc.Config{MaxInterfaces: 8, MaxInstancesPerInterface: 4})
//	if err != nil {
//	    // handle error
//	}
//	if err := table.Init(); err != nil {
//	    // handle error
//	}
//	defer table.Deinit()
//
//	_, err = table.Publish(mathDescriptor)
//
//	h, err := table.TryGet("math", 1, ipc.Equals)
//	var out sumResult
//	err = table.Call(h, sumCapabilityIndex, sumArgs{A: 10, B: 20}, &out)
//	err = table.Release(h)
//
// # Concurrency
//
// All methods on [Table] except [Table.Init] and [Table.Deinit] are safe
// for concurrent use; Init and Deinit must not run concurrently with any
// other method. [Table.Call] never
// holds the table lock while the capability function runs — capability
// code may freely re-enter the broker (including calling Unpublish on its
// own interface) without deadlocking. See the "Locking architecture"
// comment in table.go.
package ipc
