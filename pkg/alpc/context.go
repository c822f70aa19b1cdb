package alpc

import "encoding/binary"

// Context slot layout: port context (u64), message context (u64),
// sequence (u32), message ID (u32), callback ID (u32), 4 bytes pad.
const contextSlotSize = 32

// ContextAttribute carries port and message context values. The caller
// may seed the context pointers; the sequence, message ID, and callback
// ID are written by the facility and harvested on rebuild.
type ContextAttribute struct {
	PortContext    uint64
	MessageContext uint64
	Sequence       uint32
	MessageID      uint32
	CallbackID     uint32
}

// Flag implements MessageAttribute.
func (a *ContextAttribute) Flag() AttributeFlag { return AttributeContext }

// Initialize writes the attribute into the buffer's context slot.
func (a *ContextAttribute) Initialize(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeContext, contextSlotSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(slot[0:8], a.PortContext)
	binary.LittleEndian.PutUint64(slot[8:16], a.MessageContext)
	binary.LittleEndian.PutUint32(slot[16:20], a.Sequence)
	binary.LittleEndian.PutUint32(slot[20:24], a.MessageID)
	binary.LittleEndian.PutUint32(slot[24:28], a.CallbackID)
	return nil
}

// Rebuild re-reads the slot after the operation.
func (a *ContextAttribute) Rebuild(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeContext, contextSlotSize)
	if err != nil {
		return err
	}
	a.PortContext = binary.LittleEndian.Uint64(slot[0:8])
	a.MessageContext = binary.LittleEndian.Uint64(slot[8:16])
	a.Sequence = binary.LittleEndian.Uint32(slot[16:20])
	a.MessageID = binary.LittleEndian.Uint32(slot[20:24])
	a.CallbackID = binary.LittleEndian.Uint32(slot[24:28])
	return nil
}

// Release is a no-op: context values are plain data.
func (a *ContextAttribute) Release(Endpoint) error { return nil }

// Compile-time interface satisfaction check.
var _ MessageAttribute = (*ContextAttribute)(nil)
