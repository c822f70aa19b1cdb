package alpc

// Endpoint identifies the communication object (an ALPC port) that an
// attribute set's release pass is scoped to. This layer never interprets
// it beyond passing it to release hooks; concrete attribute kinds may
// assert the optional capability interfaces below.
type Endpoint interface {
	// Handle returns the endpoint's opaque handle value.
	Handle() uint64
}

// ViewReleaser is the optional endpoint capability the data-view kind
// releases received section views through.
type ViewReleaser interface {
	ReleaseView(viewBase uint64) error
}

// HandleCloser is the optional endpoint capability the handle kind closes
// received handles through.
type HandleCloser interface {
	CloseHandle(handle uint64) error
}

// MessageAttribute is one typed, flag-identified unit of out-of-band data
// attached to a port message. Implementations follow a fixed three-step
// protocol per operation, driven by the owning AttributeSet:
//
//  1. Initialize serializes the attribute into its pre-allocated slot.
//  2. Rebuild, after the transport call completes, re-reads the possibly
//     kernel-mutated slot back into the attribute's fields.
//  3. Release frees endpoint-scoped resources. It runs exactly once per
//     operation regardless of outcome and must tolerate already-released
//     state.
//
// Initialization order across attributes is unspecified; implementations
// must not depend on it.
type MessageAttribute interface {
	Flag() AttributeFlag
	Initialize(buf *AttributeBuffer) error
	Rebuild(buf *AttributeBuffer) error
	Release(ep Endpoint) error
}
