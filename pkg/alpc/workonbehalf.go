package alpc

import (
	"encoding/binary"
	"fmt"
)

// Work-on-behalf slot layout: thread ID (u32), thread creation time low
// part (u32). Together they form the ticket.
const workOnBehalfSlotSize = 8

// directSlotSize is the direct-event slot: one u64 event handle. The
// direct kind has no dedicated attribute type yet; RawAttribute covers
// it until one is needed.
const directSlotSize = 8

// WorkOnBehalfAttribute carries the sender's work-on-behalf ticket so the
// receiver's work is attributed to the originating thread.
type WorkOnBehalfAttribute struct {
	ThreadID              uint32
	ThreadCreationTimeLow uint32
}

// Flag implements MessageAttribute.
func (a *WorkOnBehalfAttribute) Flag() AttributeFlag { return AttributeWorkOnBehalf }

// Initialize writes the ticket into the slot.
func (a *WorkOnBehalfAttribute) Initialize(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeWorkOnBehalf, workOnBehalfSlotSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(slot[0:4], a.ThreadID)
	binary.LittleEndian.PutUint32(slot[4:8], a.ThreadCreationTimeLow)
	return nil
}

// Rebuild re-reads the ticket.
func (a *WorkOnBehalfAttribute) Rebuild(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeWorkOnBehalf, workOnBehalfSlotSize)
	if err != nil {
		return err
	}
	a.ThreadID = binary.LittleEndian.Uint32(slot[0:4])
	a.ThreadCreationTimeLow = binary.LittleEndian.Uint32(slot[4:8])
	return nil
}

// Release is a no-op: the ticket is plain data.
func (a *WorkOnBehalfAttribute) Release(Endpoint) error { return nil }

// RawAttribute gives slot access to a kind without a dedicated type,
// for example the direct-event kind. Initialize copies Data in, Rebuild
// copies the slot out, Release is a no-op.
type RawAttribute struct {
	Kind AttributeFlag
	Data []byte
}

// Flag implements MessageAttribute.
func (a *RawAttribute) Flag() AttributeFlag { return a.Kind }

// Initialize copies Data into the slot. Data must not exceed the slot.
func (a *RawAttribute) Initialize(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(a.Kind, slotSizes[a.Kind])
	if err != nil {
		return err
	}
	if len(a.Data) > len(slot) {
		return fmt.Errorf("raw attribute %s: %d bytes exceed the %d-byte slot", a.Kind, len(a.Data), len(slot))
	}
	copy(slot, a.Data)
	return nil
}

// Rebuild copies the slot into Data.
func (a *RawAttribute) Rebuild(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(a.Kind, slotSizes[a.Kind])
	if err != nil {
		return err
	}
	a.Data = append(a.Data[:0], slot...)
	return nil
}

// Release is a no-op.
func (a *RawAttribute) Release(Endpoint) error { return nil }

// Compile-time interface satisfaction checks.
var (
	_ MessageAttribute = (*WorkOnBehalfAttribute)(nil)
	_ MessageAttribute = (*RawAttribute)(nil)
)
