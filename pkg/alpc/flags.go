package alpc

import "strings"

// AttributeFlag identifies one message attribute kind. A message's
// requested attribute set is the bitwise union of the flags of every
// attribute attached to it. Values are the ALPC facility's published
// attribute bits.
type AttributeFlag uint32

const (
	// AttributeSecurity carries the security context for impersonation.
	AttributeSecurity AttributeFlag = 0x80000000

	// AttributeView maps a section view into the receiver.
	AttributeView AttributeFlag = 0x40000000

	// AttributeContext carries port and message context values.
	AttributeContext AttributeFlag = 0x20000000

	// AttributeHandle duplicates a handle into the receiver.
	AttributeHandle AttributeFlag = 0x10000000

	// AttributeToken reports the sender's token identifiers.
	AttributeToken AttributeFlag = 0x08000000

	// AttributeDirect associates a direct event with the message.
	AttributeDirect AttributeFlag = 0x04000000

	// AttributeWorkOnBehalf carries the sender's work-on-behalf ticket.
	AttributeWorkOnBehalf AttributeFlag = 0x02000000
)

// attributeOrder lists the known kinds in descending bit order, which is
// also the slot order after the buffer header.
var attributeOrder = []AttributeFlag{
	AttributeSecurity,
	AttributeView,
	AttributeContext,
	AttributeHandle,
	AttributeToken,
	AttributeDirect,
	AttributeWorkOnBehalf,
}

var attributeNames = map[AttributeFlag]string{
	AttributeSecurity:     "SECURITY",
	AttributeView:         "VIEW",
	AttributeContext:      "CONTEXT",
	AttributeHandle:       "HANDLE",
	AttributeToken:        "TOKEN",
	AttributeDirect:       "DIRECT",
	AttributeWorkOnBehalf: "WORK_ON_BEHALF",
}

// validAttributes is the union of every known kind.
const validAttributes = AttributeSecurity | AttributeView | AttributeContext |
	AttributeHandle | AttributeToken | AttributeDirect | AttributeWorkOnBehalf

// Has reports whether every bit of other is set in f.
func (f AttributeFlag) Has(other AttributeFlag) bool {
	return f&other == other
}

// String renders the flag union as NAME|NAME|... ("NONE" when empty).
func (f AttributeFlag) String() string {
	if f == 0 {
		return "NONE"
	}
	var parts []string
	for _, flag := range attributeOrder {
		if f&flag != 0 {
			parts = append(parts, attributeNames[flag])
			f &^= flag
		}
	}
	if f != 0 {
		parts = append(parts, "UNKNOWN")
	}
	return strings.Join(parts, "|")
}
