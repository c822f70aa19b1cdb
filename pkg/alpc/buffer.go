package alpc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/native"
)

// AttributeBuffer owns one contiguous native region laid out by the
// layout collaborator, plus a side-list of auxiliary allocations that
// attributes reference by address from inside the region. Exactly one
// buffer owns the region at a time; Detach transfers ownership and
// invalidates the source.
//
// The zero-flag case is represented by the null buffer: no region, zero
// length, Close frees nothing.
type AttributeBuffer struct {
	alloc LayoutAllocator
	mem   native.Memory
	flags AttributeFlag
	block *native.Block
	aux   []*native.Block
	owns  bool
}

// NullAttributeBuffer returns the distinguished empty buffer used when no
// attributes are requested.
func NullAttributeBuffer() *AttributeBuffer {
	return &AttributeBuffer{}
}

// NewAttributeBuffer builds a buffer for the given flag union using the
// two-phase layout contract: query the required size with a nil region,
// then allocate a zeroed region of that size and have the collaborator
// populate its headers. The size query must report StatusBufferTooSmall;
// any other status (success included) means the collaborator cannot lay
// out this union and construction fails with a LayoutError before any
// allocation. A populate failure frees the region before returning.
func NewAttributeBuffer(alloc LayoutAllocator, mem native.Memory, flags AttributeFlag) (*AttributeBuffer, error) {
	if flags == 0 {
		return NullAttributeBuffer(), nil
	}
	required, status := alloc.InitializeLayout(flags, nil)
	if status != StatusBufferTooSmall {
		return nil, &LayoutError{Phase: LayoutPhaseQuery, Status: status}
	}
	block, err := mem.Alloc(required)
	if err != nil {
		return nil, fmt.Errorf("allocate attribute region: %w", err)
	}
	if _, status = alloc.InitializeLayout(flags, block.Bytes()); status != StatusSuccess {
		layoutErr := &LayoutError{Phase: LayoutPhasePopulate, Status: status}
		if freeErr := mem.Free(block); freeErr != nil {
			return nil, errors.Join(layoutErr, freeErr)
		}
		return nil, layoutErr
	}
	return &AttributeBuffer{
		alloc: alloc,
		mem:   mem,
		flags: flags,
		block: block,
		owns:  true,
	}, nil
}

// IsNull reports whether the buffer has no native region, either because
// no attributes were requested or because it was detached.
func (b *AttributeBuffer) IsNull() bool { return b.block == nil }

// Flags returns the allocated attribute union.
func (b *AttributeBuffer) Flags() AttributeFlag { return b.flags }

// Len returns the native region's length in bytes, zero for the null
// buffer.
func (b *AttributeBuffer) Len() int {
	if b.block == nil {
		return 0
	}
	return b.block.Len()
}

// Bytes exposes the native region for the transport call. Nil for the
// null buffer. The view is invalid after Close.
func (b *AttributeBuffer) Bytes() []byte {
	if b.block == nil {
		return nil
	}
	return b.block.Bytes()
}

// AuxCount returns the number of auxiliary allocations currently owned.
func (b *AttributeBuffer) AuxCount() int { return len(b.aux) }

// attributeOffset returns flag's slot offset, or -1 when absent.
func (b *AttributeBuffer) attributeOffset(flag AttributeFlag) int {
	if b.block == nil {
		return -1
	}
	return b.alloc.FindAttribute(b.block.Bytes(), flag)
}

// AttributeAddress returns the native address of flag's slot, or the zero
// sentinel when the flag is not part of the allocated set. Never fails.
func (b *AttributeBuffer) AttributeAddress(flag AttributeFlag) uint64 {
	offset := b.attributeOffset(flag)
	if offset < 0 {
		return 0
	}
	return b.block.Addr() + uint64(offset)
}

// Attribute returns a size-byte typed view over flag's slot. Returns
// ErrAttributeNotFound when the flag is not part of the allocated set.
func (b *AttributeBuffer) Attribute(flag AttributeFlag, size int) ([]byte, error) {
	offset := b.attributeOffset(flag)
	if offset < 0 {
		return nil, fmt.Errorf("attribute %s: %w", flag, ErrAttributeNotFound)
	}
	data := b.block.Bytes()
	if offset+size > len(data) {
		return nil, fmt.Errorf("attribute %s: %d-byte view overruns %d-byte region", flag, size, len(data))
	}
	return data[offset : offset+size], nil
}

// AllocAux allocates a zeroed auxiliary block owned by this buffer, for
// attribute data referenced by address from inside the region. Auxiliary
// blocks outlive the attribute that requested them and are freed on
// Close, before the primary region.
func (b *AttributeBuffer) AllocAux(size int) (*native.Block, error) {
	if b.block == nil {
		return nil, ErrBufferDetached
	}
	block, err := b.mem.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("allocate auxiliary block: %w", err)
	}
	b.aux = append(b.aux, block)
	return block, nil
}

// SetSecurityAttribute writes attr into the security slot. A present QoS
// record is stored as an auxiliary allocation owned by the buffer, with
// its address placed in the slot; an absent one stores the zero sentinel.
func (b *AttributeBuffer) SetSecurityAttribute(attr *SecurityAttribute) error {
	slot, err := b.Attribute(AttributeSecurity, securitySlotSize)
	if err != nil {
		return err
	}
	var qosAddr uint64
	if attr.QoS != nil {
		block, err := b.AllocAux(qosRecordSize)
		if err != nil {
			return fmt.Errorf("security QoS record: %w", err)
		}
		attr.QoS.marshal(block.Bytes())
		qosAddr = block.Addr()
	}
	binary.LittleEndian.PutUint32(slot[0:4], attr.Flags)
	binary.LittleEndian.PutUint64(slot[8:16], qosAddr)
	binary.LittleEndian.PutUint64(slot[16:24], attr.ContextHandle)
	return nil
}

// SecurityAttribute reads the security slot back into attr. A zero QoS
// address reads back as an absent record, not an error; a nonzero one is
// resolved and copied out of native memory.
func (b *AttributeBuffer) SecurityAttribute(attr *SecurityAttribute) error {
	slot, err := b.Attribute(AttributeSecurity, securitySlotSize)
	if err != nil {
		return err
	}
	attr.Flags = binary.LittleEndian.Uint32(slot[0:4])
	attr.ContextHandle = binary.LittleEndian.Uint64(slot[16:24])
	qosAddr := binary.LittleEndian.Uint64(slot[8:16])
	if qosAddr == 0 {
		attr.QoS = nil
		return nil
	}
	record, err := b.mem.Resolve(qosAddr, qosRecordSize)
	if err != nil {
		return fmt.Errorf("security QoS record: %w", err)
	}
	qos := new(SecurityQualityOfService)
	qos.unmarshal(record)
	attr.QoS = qos
	return nil
}

// Detach transfers ownership of the native region and every auxiliary
// allocation to a new buffer and invalidates the receiver: its lookups
// report absent and its Close frees nothing. Used to hand a freshly
// built buffer to a result object once construction has succeeded.
func (b *AttributeBuffer) Detach() *AttributeBuffer {
	detached := &AttributeBuffer{
		alloc: b.alloc,
		mem:   b.mem,
		flags: b.flags,
		block: b.block,
		aux:   b.aux,
		owns:  b.owns,
	}
	b.block = nil
	b.aux = nil
	b.owns = false
	return detached
}

// Close frees every auxiliary allocation, then the native region.
// Idempotent; a no-op on the null buffer and on detached sources.
func (b *AttributeBuffer) Close() error {
	if !b.owns {
		b.block = nil
		b.aux = nil
		return nil
	}
	b.owns = false
	var errs []error
	for _, block := range b.aux {
		if err := b.mem.Free(block); err != nil {
			errs = append(errs, err)
		}
	}
	b.aux = nil
	if b.block != nil {
		if err := b.mem.Free(b.block); err != nil {
			errs = append(errs, err)
		}
		b.block = nil
	}
	return errors.Join(errs...)
}
