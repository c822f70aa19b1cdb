package alpc

import "encoding/binary"

// headerSize is the fixed buffer header: allocated flag union followed by
// the valid flag union, both little-endian uint32.
const headerSize = 8

// slotSizes gives each kind's fixed slot length. Slots are 8-byte
// multiples so every slot after the header stays 8-byte aligned.
var slotSizes = map[AttributeFlag]int{
	AttributeSecurity:     securitySlotSize,
	AttributeView:         viewSlotSize,
	AttributeContext:      contextSlotSize,
	AttributeHandle:       handleSlotSize,
	AttributeToken:        tokenSlotSize,
	AttributeDirect:       directSlotSize,
	AttributeWorkOnBehalf: workOnBehalfSlotSize,
}

// LayoutAllocator computes the size and internal layout of an attribute
// buffer. The layout is a property of the requested flag union and is
// never computed by callers; RuntimeAllocator is the in-process
// implementation of the documented contract, and kernel-backed
// implementations plug in behind the same interface.
type LayoutAllocator interface {
	// InitializeLayout is called twice per buffer: once with a nil buf
	// to learn the required size (expected status: StatusBufferTooSmall,
	// with required set) and once with the allocated, zeroed region to
	// populate the per-attribute headers (expected: StatusSuccess). Any
	// other status from either call is fatal to buffer construction.
	InitializeLayout(flags AttributeFlag, buf []byte) (required int, status Status)

	// FindAttribute returns the offset of flag's slot within a populated
	// buffer, or -1 if the flag is not part of the allocated set. Pure
	// lookup, no side effects.
	FindAttribute(buf []byte, flag AttributeFlag) int
}

// RuntimeAllocator lays buffers out per the facility's contract: an
// 8-byte header holding the allocated and valid flag unions, followed by
// one fixed-size slot per requested kind in descending flag order.
type RuntimeAllocator struct{}

// InitializeLayout implements LayoutAllocator.
func (RuntimeAllocator) InitializeLayout(flags AttributeFlag, buf []byte) (int, Status) {
	if flags == 0 || flags&^validAttributes != 0 {
		return 0, StatusInvalidParameter
	}
	required := headerSize
	for _, f := range attributeOrder {
		if flags&f != 0 {
			required += slotSizes[f]
		}
	}
	if len(buf) < required {
		return required, StatusBufferTooSmall
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(flags)) // allocated union
	binary.LittleEndian.PutUint32(buf[4:8], 0)             // valid union, set by the transport
	return required, StatusSuccess
}

// FindAttribute implements LayoutAllocator.
func (RuntimeAllocator) FindAttribute(buf []byte, flag AttributeFlag) int {
	if len(buf) < headerSize {
		return -1
	}
	allocated := AttributeFlag(binary.LittleEndian.Uint32(buf[0:4]))
	if allocated&flag == 0 {
		return -1
	}
	offset := headerSize
	for _, f := range attributeOrder {
		if f == flag {
			if offset+slotSizes[f] > len(buf) {
				return -1
			}
			return offset
		}
		if allocated&f != 0 {
			offset += slotSizes[f]
		}
	}
	return -1
}

// Compile-time interface satisfaction check.
var _ LayoutAllocator = RuntimeAllocator{}
