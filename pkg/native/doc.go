// Package native manages the raw memory blocks that back ALPC message
// attribute buffers.
//
// Attribute buffers reference each other by address: the security
// attribute's on-wire form stores a pointer to a separately allocated
// quality-of-service record. The Memory interface therefore hands out
// blocks with stable, nonzero addresses and supports resolving an address
// back into a readable view, so round-trips work without the attribute
// layer knowing where the bytes live.
//
// Heap is the in-process implementation used by tests, tooling, and
// loopback transports. A kernel-backed implementation (real virtual
// memory, real pointers) plugs in behind the same interface.
//
// # Ownership
//
// Every block has exactly one owner at a time. Freeing a block twice is
// an error, not a silent no-op, so ownership bugs surface in tests
// instead of hiding as leaks or corruption.
package native
