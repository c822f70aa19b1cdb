package native

import (
	"errors"
	"fmt"
	"sync"
)

// Memory errors.
var (
	// ErrBadSize indicates a non-positive allocation size.
	ErrBadSize = errors.New("allocation size must be positive")

	// ErrNotAllocated indicates an address outside any live allocation.
	ErrNotAllocated = errors.New("address does not belong to a live allocation")
)

// Block is one native allocation: a zeroed byte region with a stable,
// nonzero address. Blocks are created by a Memory implementation and must
// be returned to the same implementation exactly once.
type Block struct {
	addr uint64
	data []byte
}

// Addr returns the block's address. Addresses are stable for the life of
// the block and never zero, so zero remains usable as a null sentinel in
// attribute slots.
func (b *Block) Addr() uint64 { return b.addr }

// Bytes returns the block's backing region.
func (b *Block) Bytes() []byte { return b.data }

// Len returns the block's size in bytes.
func (b *Block) Len() int { return len(b.data) }

// Memory allocates and frees the native regions attribute buffers are
// built from.
type Memory interface {
	// Alloc returns a zeroed block of size bytes.
	Alloc(size int) (*Block, error)

	// Free releases a block returned by Alloc. Freeing a block that is
	// not live returns an error wrapping ErrNotAllocated.
	Free(b *Block) error

	// Resolve returns a size-byte view at addr, which must lie entirely
	// inside a live allocation.
	Resolve(addr uint64, size int) ([]byte, error)
}

// blockAlign keeps heap addresses 16-byte aligned, matching what a real
// allocator would hand out.
const blockAlign = 16

// Heap is the in-process Memory implementation. Addresses are synthetic
// but behave like real ones: distinct, aligned, stable, resolvable while
// the allocation is live. Safe for concurrent use.
type Heap struct {
	mu     sync.Mutex
	next   uint64
	blocks map[uint64]*Block
}

// NewHeap creates an empty heap. The address space starts well above zero
// so small integers never collide with block addresses.
func NewHeap() *Heap {
	return &Heap{
		next:   0x10000,
		blocks: make(map[uint64]*Block),
	}
}

// Alloc returns a zeroed block of size bytes.
func (h *Heap) Alloc(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("alloc %d: %w", size, ErrBadSize)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	b := &Block{addr: h.next, data: make([]byte, size)}
	h.next += (uint64(size) + blockAlign - 1) &^ (blockAlign - 1)
	h.blocks[b.addr] = b
	return b, nil
}

// Free releases b. Freeing a block twice is an error.
func (h *Heap) Free(b *Block) error {
	if b == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.blocks[b.addr]; !ok {
		return fmt.Errorf("free 0x%x: %w", b.addr, ErrNotAllocated)
	}
	delete(h.blocks, b.addr)
	return nil
}

// Resolve returns a size-byte view at addr. The range must lie entirely
// inside one live allocation.
func (h *Heap) Resolve(addr uint64, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("resolve %d bytes: %w", size, ErrBadSize)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for base, b := range h.blocks {
		end := base + uint64(len(b.data))
		if addr >= base && addr+uint64(size) <= end {
			off := addr - base
			return b.data[off : off+uint64(size)], nil
		}
	}
	return nil, fmt.Errorf("resolve 0x%x: %w", addr, ErrNotAllocated)
}

// Live returns the number of live allocations. Used by tests and by the
// inspect tool to report leaks.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}
