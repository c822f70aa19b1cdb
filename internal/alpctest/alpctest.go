// Package alpctest provides shared test doubles for the attribute layer:
// an allocation-accounting memory, a scriptable layout allocator, and a
// fake port endpoint that records release calls.
package alpctest

import (
	"sync"

	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/alpc"
	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/native"
)

// TrackingMemory wraps a native.Heap and counts every Alloc and Free per
// address, so tests can assert exactly-once ownership.
type TrackingMemory struct {
	*native.Heap

	mu     sync.Mutex
	allocs []uint64
	frees  map[uint64]int
}

// NewTrackingMemory creates a TrackingMemory over a fresh heap.
func NewTrackingMemory() *TrackingMemory {
	return &TrackingMemory{
		Heap:  native.NewHeap(),
		frees: make(map[uint64]int),
	}
}

// Alloc implements native.Memory.
func (m *TrackingMemory) Alloc(size int) (*native.Block, error) {
	block, err := m.Heap.Alloc(size)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.allocs = append(m.allocs, block.Addr())
	m.mu.Unlock()
	return block, nil
}

// Free implements native.Memory, counting the attempt even when the heap
// rejects it as a double free.
func (m *TrackingMemory) Free(b *native.Block) error {
	if b != nil {
		m.mu.Lock()
		m.frees[b.Addr()]++
		m.mu.Unlock()
	}
	return m.Heap.Free(b)
}

// AllocCount returns how many allocations were made.
func (m *TrackingMemory) AllocCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.allocs)
}

// AllocAddrs returns the addresses handed out, in order.
func (m *TrackingMemory) AllocAddrs() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint64, len(m.allocs))
	copy(out, m.allocs)
	return out
}

// FreeCount returns how many times addr was freed.
func (m *TrackingMemory) FreeCount(addr uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frees[addr]
}

// ScriptedAllocator wraps the runtime layout allocator and lets a test
// force the status of either phase. A nil override leaves the real
// behavior in place.
type ScriptedAllocator struct {
	alpc.RuntimeAllocator

	QueryStatus    *alpc.Status
	PopulateStatus *alpc.Status

	QueryCalls    int
	PopulateCalls int
}

// Forced returns a status pointer for use as an override.
func Forced(s alpc.Status) *alpc.Status { return &s }

// InitializeLayout implements alpc.LayoutAllocator.
func (a *ScriptedAllocator) InitializeLayout(flags alpc.AttributeFlag, buf []byte) (int, alpc.Status) {
	required, status := a.RuntimeAllocator.InitializeLayout(flags, buf)
	if buf == nil {
		a.QueryCalls++
		if a.QueryStatus != nil {
			return required, *a.QueryStatus
		}
	} else {
		a.PopulateCalls++
		if a.PopulateStatus != nil {
			return required, *a.PopulateStatus
		}
	}
	return required, status
}

// FakePort is an Endpoint double recording view releases and handle
// closes. Configure ViewErr or CloseErr to make those hooks fail.
type FakePort struct {
	handle uint64

	ReleasedViews []uint64
	ClosedHandles []uint64
	ViewErr       error
	CloseErr      error
}

// NewFakePort creates a fake port with the given handle value.
func NewFakePort(handle uint64) *FakePort {
	return &FakePort{handle: handle}
}

// Handle implements alpc.Endpoint.
func (p *FakePort) Handle() uint64 { return p.handle }

// ReleaseView implements alpc.ViewReleaser.
func (p *FakePort) ReleaseView(viewBase uint64) error {
	p.ReleasedViews = append(p.ReleasedViews, viewBase)
	return p.ViewErr
}

// CloseHandle implements alpc.HandleCloser.
func (p *FakePort) CloseHandle(handle uint64) error {
	p.ClosedHandles = append(p.ClosedHandles, handle)
	return p.CloseErr
}

// BarePort is an Endpoint double without the view or handle capabilities,
// for exercising the no-capability release paths.
type BarePort struct {
	handle uint64
}

// NewBarePort creates a bare port with the given handle value.
func NewBarePort(handle uint64) *BarePort { return &BarePort{handle: handle} }

// Handle implements alpc.Endpoint.
func (p *BarePort) Handle() uint64 { return p.handle }

// Compile-time interface satisfaction checks.
var (
	_ native.Memory        = (*TrackingMemory)(nil)
	_ alpc.LayoutAllocator = (*ScriptedAllocator)(nil)
	_ alpc.Endpoint        = (*FakePort)(nil)
	_ alpc.ViewReleaser    = (*FakePort)(nil)
	_ alpc.HandleCloser    = (*FakePort)(nil)
	_ alpc.Endpoint        = (*BarePort)(nil)
)
