package alpc

import "encoding/binary"

// Security slot layout: flags (u32, 4 bytes pad), QoS record address
// (u64), context handle (u64).
const securitySlotSize = 24

// qosRecordSize is the fixed size of the auxiliary quality-of-service
// record: length (u32), impersonation level (u32), tracking mode (u8),
// effective-only (u8), 2 bytes pad.
const qosRecordSize = 12

// Security attribute access-control flags.
const (
	// SecurityFlagCreateHandle asks the facility to create a security
	// context handle for the message.
	SecurityFlagCreateHandle uint32 = 0x20000
)

// ImpersonationLevel is the SECURITY_IMPERSONATION_LEVEL value carried in
// the quality-of-service record.
type ImpersonationLevel uint32

const (
	// ImpersonationAnonymous prevents the server from identifying the
	// client.
	ImpersonationAnonymous ImpersonationLevel = 0

	// ImpersonationIdentification lets the server identify but not
	// impersonate the client.
	ImpersonationIdentification ImpersonationLevel = 1

	// ImpersonationImpersonate lets the server impersonate the client on
	// the local system.
	ImpersonationImpersonate ImpersonationLevel = 2

	// ImpersonationDelegate lets the server impersonate the client on
	// remote systems.
	ImpersonationDelegate ImpersonationLevel = 3
)

// String returns the impersonation level name.
func (l ImpersonationLevel) String() string {
	switch l {
	case ImpersonationAnonymous:
		return "ANONYMOUS"
	case ImpersonationIdentification:
		return "IDENTIFICATION"
	case ImpersonationImpersonate:
		return "IMPERSONATE"
	case ImpersonationDelegate:
		return "DELEGATE"
	default:
		return "UNKNOWN"
	}
}

// Context tracking modes.
const (
	// SecurityStaticTracking snapshots the client context at connect.
	SecurityStaticTracking uint8 = 0

	// SecurityDynamicTracking tracks client context changes.
	SecurityDynamicTracking uint8 = 1
)

// SecurityQualityOfService is the fixed-size record the security slot
// references by address. It lives in an auxiliary allocation owned by the
// enclosing buffer, not by the attribute.
type SecurityQualityOfService struct {
	ImpersonationLevel  ImpersonationLevel
	ContextTrackingMode uint8
	EffectiveOnly       bool
}

func (q *SecurityQualityOfService) marshal(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], qosRecordSize)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(q.ImpersonationLevel))
	dst[8] = q.ContextTrackingMode
	if q.EffectiveOnly {
		dst[9] = 1
	} else {
		dst[9] = 0
	}
}

func (q *SecurityQualityOfService) unmarshal(src []byte) {
	q.ImpersonationLevel = ImpersonationLevel(binary.LittleEndian.Uint32(src[4:8]))
	q.ContextTrackingMode = src[8]
	q.EffectiveOnly = src[9] != 0
}

// SecurityAttribute carries the client security context for a message:
// access-control flags, an optional quality-of-service record, and the
// opaque context handle the facility assigns (zero when unset).
type SecurityAttribute struct {
	Flags         uint32
	QoS           *SecurityQualityOfService
	ContextHandle uint64
}

// Flag implements MessageAttribute.
func (a *SecurityAttribute) Flag() AttributeFlag { return AttributeSecurity }

// Initialize writes the attribute into the buffer's security slot.
func (a *SecurityAttribute) Initialize(buf *AttributeBuffer) error {
	return buf.SetSecurityAttribute(a)
}

// Rebuild overwrites the attribute's fields with the post-operation slot
// contents, including clearing QoS to absent when the stored address is
// the zero sentinel.
func (a *SecurityAttribute) Rebuild(buf *AttributeBuffer) error {
	return buf.SecurityAttribute(a)
}

// Release is a no-op: the security kind holds no endpoint-scoped
// resource. The hook exists on the protocol for kinds that do.
func (a *SecurityAttribute) Release(Endpoint) error { return nil }

// Compile-time interface satisfaction check.
var _ MessageAttribute = (*SecurityAttribute)(nil)
