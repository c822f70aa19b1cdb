package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes operation events to an slog.Logger.
// Useful for development when you want to see buffer lifecycles in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Failures log at Warn level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("op_id", event.OperationID),
		slog.String("kind", event.Kind.String()),
	}
	if event.Flags != 0 {
		attrs = append(attrs, slog.String("flags", slogHex(event.Flags)))
	}
	if event.BufferLen != 0 {
		attrs = append(attrs, slog.Int("buffer_len", event.BufferLen))
	}
	if event.AuxCount != 0 {
		attrs = append(attrs, slog.Int("aux_count", event.AuxCount))
	}
	if event.Status != 0 {
		attrs = append(attrs, slog.String("status", slogHex(event.Status)))
	}

	level := slog.LevelDebug
	if event.Error != "" {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Error))
	}
	a.logger.LogAttrs(context.Background(), level, "alpc attributes", attrs...)
}

const hexDigits = "0123456789abcdef"

// slogHex formats a 32-bit value as 0x%08x without fmt in the hot path.
func slogHex(v uint32) string {
	var b [10]byte
	b[0], b[1] = '0', 'x'
	for i := 0; i < 8; i++ {
		b[9-i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(b[:])
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
