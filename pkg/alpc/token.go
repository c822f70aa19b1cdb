package alpc

import "encoding/binary"

// Token slot layout: token ID (u64), authentication ID (u64), modified
// ID (u64).
const tokenSlotSize = 24

// TokenAttribute reports the sender's token identifiers. Receive-only:
// the facility fills the slot in, so Initialize just clears it and
// Rebuild harvests the values.
type TokenAttribute struct {
	TokenID          uint64
	AuthenticationID uint64
	ModifiedID       uint64
}

// Flag implements MessageAttribute.
func (a *TokenAttribute) Flag() AttributeFlag { return AttributeToken }

// Initialize clears the slot; the facility writes the identifiers.
func (a *TokenAttribute) Initialize(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeToken, tokenSlotSize)
	if err != nil {
		return err
	}
	clear(slot)
	return nil
}

// Rebuild reads the identifiers the facility wrote.
func (a *TokenAttribute) Rebuild(buf *AttributeBuffer) error {
	slot, err := buf.Attribute(AttributeToken, tokenSlotSize)
	if err != nil {
		return err
	}
	a.TokenID = binary.LittleEndian.Uint64(slot[0:8])
	a.AuthenticationID = binary.LittleEndian.Uint64(slot[8:16])
	a.ModifiedID = binary.LittleEndian.Uint64(slot[16:24])
	return nil
}

// Release is a no-op: token identifiers are plain data.
func (a *TokenAttribute) Release(Endpoint) error { return nil }

// Compile-time interface satisfaction check.
var _ MessageAttribute = (*TokenAttribute)(nil)
