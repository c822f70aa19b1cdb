// Package alpc implements the message attribute layer of an ALPC-style
// IPC transport: composing, transmitting, and decoding the variable-size
// set of typed attributes attached to a port message.
//
// Attributes ride in one contiguous native buffer whose total size and
// internal layout are computed by the allocator facility, not by the
// caller. The layer's job is lifetime and layout management: the buffer
// owns the region plus any auxiliary allocations attributes hang off it
// (quality-of-service records referenced by pointer), raw addresses are
// exposed without use-after-free, and ownership transfers exactly once.
//
// # Lifecycle
//
// One AttributeSet exists per operation:
//
//	set, err := alpc.NewAttributeSet(alloc, mem, []alpc.MessageAttribute{
//	    &alpc.SecurityAttribute{Flags: alpc.SecurityFlagCreateHandle},
//	    &alpc.ContextAttribute{},
//	}, alpc.WithInitialize())
//	if err != nil { ... }
//	defer set.Close()
//
//	// hand set.Buffer() to the transport call...
//
//	if err := set.Rebuild(); err != nil { ... } // harvest kernel updates
//	if err := set.Release(port); err != nil { ... } // always, even on failure
//
// Release must run even when the operation is aborted so endpoint-scoped
// resources (views, duplicated handles) are not leaked; callers typically
// drive it from a deferred cleanup path.
//
// # Collaborators
//
// The layout computation is behind the LayoutAllocator interface.
// RuntimeAllocator implements the documented contract in-process; a
// kernel-backed allocator plugs in behind the same two calls. Native
// memory comes from a native.Memory, so tests can account every
// allocation and free.
//
// # Concurrency
//
// An AttributeSet and its buffer serve one operation on one goroutine.
// Nothing in this package locks; sharing a set across goroutines is a
// caller bug.
package alpc
