package alpc

import "encoding/binary"

// View slot layout: flags (u32, 4 bytes pad), section handle (u64), view
// base (u64), view size (u64).
const viewSlotSize = 32

// Data view attribute flags.
const (
	// ViewFlagReleaseView asks the facility to release the view when the
	// message completes.
	ViewFlagReleaseView uint32 = 0x10000

	// ViewFlagAutoRelease marks the view for release when the message is
	// freed.
	ViewFlagAutoRelease uint32 = 0x20000

	// ViewFlagSecuredAccess maps the view with secured access.
	ViewFlagSecuredAccess uint32 = 0x40000
)

// DataViewAttribute maps a section view into the receiving process. A
// received view is an endpoint-scoped resource: unless the caller keeps
// it with Retain, the release pass drops it through the endpoint's
// ViewReleaser capability.
type DataViewAttribute struct {
	Flags         uint32
	SectionHandle uint64
	ViewBase      uint64
	ViewSize      uint64

	retained bool
	released bool
}

// Flag implements MessageAttribute.
func (a *DataViewAttribute) Flag() AttributeFlag { return AttributeView }

// Retain marks the view as kept by the caller, so the release pass leaves
// it mapped.
func (a *DataViewAttribute) Retain() { a.retained = true }

// Initialize writes the attribute into the buffer's view slot.
func (a *DataViewAttribute) Initialize(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeView, viewSlotSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(slot[0:4], a.Flags)
	binary.LittleEndian.PutUint64(slot[8:16], a.SectionHandle)
	binary.LittleEndian.PutUint64(slot[16:24], a.ViewBase)
	binary.LittleEndian.PutUint64(slot[24:32], a.ViewSize)
	return nil
}

// Rebuild re-reads the slot after the operation, picking up the view the
// facility mapped into the receiver.
func (a *DataViewAttribute) Rebuild(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeView, viewSlotSize)
	if err != nil {
		return err
	}
	a.Flags = binary.LittleEndian.Uint32(slot[0:4])
	a.SectionHandle = binary.LittleEndian.Uint64(slot[8:16])
	a.ViewBase = binary.LittleEndian.Uint64(slot[16:24])
	a.ViewSize = binary.LittleEndian.Uint64(slot[24:32])
	a.released = false
	return nil
}

// Release drops a received, unretained view through the endpoint's
// ViewReleaser capability. Safe to call again after a release, and a
// no-op when the endpoint cannot release views or no view was received.
func (a *DataViewAttribute) Release(ep Endpoint) error {
	if a.released || a.retained || a.ViewBase == 0 {
		return nil
	}
	a.released = true
	releaser, ok := ep.(ViewReleaser)
	if !ok {
		return nil
	}
	return releaser.ReleaseView(a.ViewBase)
}

// Compile-time interface satisfaction check.
var _ MessageAttribute = (*DataViewAttribute)(nil)
