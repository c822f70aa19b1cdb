package log

// Logger is the interface applications implement to receive attribute
// operation events. Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records an operation event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking slows the
	// attribute passes.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Func adapts a plain function to the Logger interface.
type Func func(Event)

// Log calls f with the event.
func (f Func) Log(event Event) { f(event) }

// MultiLogger fans events out to several loggers in order.
type MultiLogger []Logger

// Log forwards the event to every logger in the slice.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		if l != nil {
			l.Log(event)
		}
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = Func(nil)
	_ Logger = MultiLogger(nil)
)
