package log

import (
	"time"
)

// Event represents one step in the lifecycle of an attribute set.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// OperationID uniquely identifies the IPC operation (UUID).
	OperationID string `cbor:"2,keyasint"`

	// Kind is which lifecycle step the event records.
	Kind Kind `cbor:"3,keyasint"`

	// Flags is the attribute flag union of the set's buffer.
	Flags uint32 `cbor:"4,keyasint,omitempty"`

	// BufferLen is the allocated length of the primary region in bytes.
	BufferLen int `cbor:"5,keyasint,omitempty"`

	// AuxCount is the number of auxiliary allocations owned by the buffer
	// at the time of the event.
	AuxCount int `cbor:"6,keyasint,omitempty"`

	// Status is the collaborator status code, when the step involved one.
	Status uint32 `cbor:"7,keyasint,omitempty"`

	// Error is the failure text when the step failed, empty on success.
	Error string `cbor:"8,keyasint,omitempty"`
}

// Kind classifies a lifecycle event.
type Kind uint8

const (
	// KindCreate records buffer construction (or the null-buffer case).
	KindCreate Kind = 0

	// KindInitialize records the initialize pass writing attributes into
	// the buffer.
	KindInitialize Kind = 1

	// KindRebuild records the post-operation rebuild pass.
	KindRebuild Kind = 2

	// KindRelease records the endpoint-scoped release pass.
	KindRelease Kind = 3

	// KindDispose records buffer disposal.
	KindDispose Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "CREATE"
	case KindInitialize:
		return "INITIALIZE"
	case KindRebuild:
		return "REBUILD"
	case KindRelease:
		return "RELEASE"
	case KindDispose:
		return "DISPOSE"
	default:
		return "UNKNOWN"
	}
}
