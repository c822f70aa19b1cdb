package alpc

import "encoding/binary"

// Handle slot layout: flags (u32), handle (u32), object type (u32),
// desired access (u32).
const handleSlotSize = 16

// Handle attribute duplication flags.
const (
	// HandleFlagSameAccess duplicates with the source handle's access.
	HandleFlagSameAccess uint32 = 0x10000

	// HandleFlagSameAttributes duplicates with the source handle's
	// attributes.
	HandleFlagSameAttributes uint32 = 0x20000

	// HandleFlagIndirect passes an array of handle entries instead of a
	// single handle.
	HandleFlagIndirect uint32 = 0x40000

	// HandleFlagInherit marks the duplicated handle inheritable.
	HandleFlagInherit uint32 = 0x80000
)

// HandleAttribute duplicates a handle into the receiving process. A
// received handle is an endpoint-scoped resource; the release pass closes
// it through the endpoint's HandleCloser capability unless Retain was
// called.
type HandleAttribute struct {
	Flags         uint32
	Handle        uint32
	ObjectType    uint32
	DesiredAccess uint32

	retained bool
	released bool
}

// Flag implements MessageAttribute.
func (a *HandleAttribute) Flag() AttributeFlag { return AttributeHandle }

// Retain marks the received handle as kept by the caller.
func (a *HandleAttribute) Retain() { a.retained = true }

// Initialize writes the attribute into the buffer's handle slot.
func (a *HandleAttribute) Initialize(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeHandle, handleSlotSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(slot[0:4], a.Flags)
	binary.LittleEndian.PutUint32(slot[4:8], a.Handle)
	binary.LittleEndian.PutUint32(slot[8:12], a.ObjectType)
	binary.LittleEndian.PutUint32(slot[12:16], a.DesiredAccess)
	return nil
}

// Rebuild re-reads the slot, picking up the handle duplicated into the
// receiver.
func (a *HandleAttribute) Rebuild(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeHandle, handleSlotSize)
	if err != nil {
		return err
	}
	a.Flags = binary.LittleEndian.Uint32(slot[0:4])
	a.Handle = binary.LittleEndian.Uint32(slot[4:8])
	a.ObjectType = binary.LittleEndian.Uint32(slot[8:12])
	a.DesiredAccess = binary.LittleEndian.Uint32(slot[12:16])
	a.released = false
	return nil
}

// Release closes a received, unretained handle through the endpoint's
// HandleCloser capability. Tolerates already-released state and
// endpoints that cannot close handles.
func (a *HandleAttribute) Release(ep Endpoint) error {
	if a.released || a.retained || a.Handle == 0 {
		return nil
	}
	a.released = true
	closer, ok := ep.(HandleCloser)
	if !ok {
		return nil
	}
	return closer.CloseHandle(uint64(a.Handle))
}

// Compile-time interface satisfaction check.
var _ MessageAttribute = (*HandleAttribute)(nil)
