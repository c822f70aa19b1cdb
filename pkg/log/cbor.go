package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// logEncMode is the CBOR encoder mode for operation events.
// Configured for nanosecond-precision timestamps and deterministic encoding.
var logEncMode cbor.EncMode

// logDecMode is the CBOR decoder mode for operation events.
var logDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano, // Nanosecond precision
	}
	logEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create log CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	logDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create log CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR bytes using integer keys for
// compactness.
func EncodeEvent(event Event) ([]byte, error) {
	return logEncMode.Marshal(event)
}

// DecodeEvent decodes CBOR bytes into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := logDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewDecoder creates a CBOR decoder for event streams that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return logDecMode.NewDecoder(r)
}

// StreamLogger appends CBOR-encoded events to an io.Writer. Safe for
// concurrent use. Encoding failures are counted, not propagated; logging
// must never fail an attribute pass.
type StreamLogger struct {
	mu      sync.Mutex
	enc     *cbor.Encoder
	dropped int
}

// NewStreamLogger creates a StreamLogger writing to w.
func NewStreamLogger(w io.Writer) *StreamLogger {
	return &StreamLogger{enc: logEncMode.NewEncoder(w)}
}

// Log encodes the event onto the stream.
func (s *StreamLogger) Log(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(event); err != nil {
		s.dropped++
	}
}

// Dropped returns the number of events that failed to encode or write.
func (s *StreamLogger) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// ReadStream decodes all events from a captured stream.
func ReadStream(r io.Reader) ([]Event, error) {
	dec := logDecMode.NewDecoder(r)
	var events []Event
	for {
		var event Event
		if err := dec.Decode(&event); err != nil {
			if err == io.EOF {
				return events, nil
			}
			return events, fmt.Errorf("failed to decode event %d: %w", len(events), err)
		}
		events = append(events, event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*StreamLogger)(nil)
