package alpc

import "fmt"

// Status is the NTSTATUS-style code returned across the layout
// collaborator boundary. Only the codes this layer inspects are named;
// any other value passes through unchanged inside a LayoutError.
type Status uint32

const (
	// StatusSuccess indicates the call completed.
	StatusSuccess Status = 0x00000000

	// StatusInvalidParameter indicates a malformed request, for example
	// an unknown attribute flag.
	StatusInvalidParameter Status = 0xC000000D

	// StatusBufferTooSmall is the expected outcome of the size-query
	// phase: the call reports the required buffer length.
	StatusBufferTooSmall Status = 0xC0000023
)

// IsSuccess reports whether the status is a success code (severity bits
// clear).
func (s Status) IsSuccess() bool {
	return s&0xC0000000 == 0
}

// String names the known codes and renders the rest in hex.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "STATUS_SUCCESS"
	case StatusInvalidParameter:
		return "STATUS_INVALID_PARAMETER"
	case StatusBufferTooSmall:
		return "STATUS_BUFFER_TOO_SMALL"
	default:
		return fmt.Sprintf("STATUS_%08X", uint32(s))
	}
}
