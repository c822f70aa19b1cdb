package alpc

import (
	"errors"
	"fmt"
)

// Attribute layer errors.
var (
	// ErrAttributeNotFound indicates a typed sub-view was requested for
	// a flag not present in the allocated set. The raw address lookup
	// never errors; it returns the zero sentinel instead.
	ErrAttributeNotFound = errors.New("attribute not present in buffer")

	// ErrBufferDetached indicates an operation that needs the native
	// region was attempted on a buffer that no longer owns one.
	ErrBufferDetached = errors.New("attribute buffer does not own a region")

	// ErrLayout matches any LayoutError via errors.Is.
	ErrLayout = errors.New("attribute layout allocation failed")
)

// Layout phases reported by LayoutError.
const (
	// LayoutPhaseQuery is the size-query call with a nil buffer.
	LayoutPhaseQuery = "query"

	// LayoutPhasePopulate is the header-populate call with the
	// allocated region.
	LayoutPhasePopulate = "populate"
)

// LayoutError reports a failed call to the layout collaborator. The
// size-query phase fails when it returns anything other than
// StatusBufferTooSmall (success included); the populate phase fails on
// any non-success status. Both are fatal to set construction and are
// never retried at this layer.
type LayoutError struct {
	Phase  string
	Status Status
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	return fmt.Sprintf("attribute layout %s failed: %s", e.Phase, e.Status)
}

// Is reports a match for ErrLayout so callers can test with errors.Is
// without unwrapping the status.
func (e *LayoutError) Is(target error) bool {
	return target == ErrLayout
}
