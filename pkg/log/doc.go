// Package log provides structured operation logging for the ALPC message
// attribute layer.
//
// This package defines the Logger interface and Event type for capturing
// the lifecycle of an attribute set: buffer creation, the initialize pass,
// the post-operation rebuild pass, the release pass, and disposal. It is
// separate from operational logging (slog) - the event stream is a complete
// machine-readable trace of buffer lifetimes, suitable for leak hunting and
// offline analysis.
//
// # Basic Usage
//
// Callers configure logging by passing a Logger implementation to the
// attribute set:
//
//	// For development: log to console via slog
//	set, err := alpc.NewAttributeSet(alloc, mem, attrs,
//	    alpc.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For capture: append CBOR events to any writer
//	capture := log.NewStreamLogger(f)
//	set, err := alpc.NewAttributeSet(alloc, mem, attrs,
//	    alpc.WithLogger(capture))
//
// Pass nil (or NoopLogger) to disable logging.
//
// # Event Stream Format
//
// Captured streams are back-to-back CBOR maps with integer keys, one per
// Event. The alpc-inspect CLI tool decodes and pretty-prints them.
package log
