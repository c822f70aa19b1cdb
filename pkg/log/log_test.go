package log

import (
	"bytes"
	"log/slog"
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{
			name: "create event",
			event: Event{
				Timestamp:   time.Now().UTC().Truncate(time.Microsecond),
				OperationID: "4a1f8e0c-0000-4000-8000-000000000001",
				Kind:        KindCreate,
				Flags:       0x80000000,
				BufferLen:   32,
			},
		},
		{
			name: "failed rebuild",
			event: Event{
				Timestamp:   time.Now().UTC().Truncate(time.Microsecond),
				OperationID: "4a1f8e0c-0000-4000-8000-000000000002",
				Kind:        KindRebuild,
				Flags:       0xc0000000,
				BufferLen:   64,
				AuxCount:    1,
				Error:       "attribute not present in buffer",
			},
		},
		{
			name: "null buffer dispose",
			event: Event{
				Timestamp:   time.Now().UTC().Truncate(time.Microsecond),
				OperationID: "4a1f8e0c-0000-4000-8000-000000000003",
				Kind:        KindDispose,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}
			got, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if !got.Timestamp.Equal(tt.event.Timestamp) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, tt.event.Timestamp)
			}
			got.Timestamp = tt.event.Timestamp
			if got != tt.event {
				t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, tt.event)
			}
		})
	}
}

func TestStreamLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStreamLogger(&buf)
	for i := 0; i < 3; i++ {
		sl.Log(Event{
			Timestamp:   time.Now(),
			OperationID: "op",
			Kind:        Kind(i),
			BufferLen:   8 * i,
		})
	}
	if sl.Dropped() != 0 {
		t.Fatalf("Dropped = %d, want 0", sl.Dropped())
	}

	events, err := ReadStream(&buf)
	if err != nil {
		t.Fatalf("ReadStream failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("decoded %d events, want 3", len(events))
	}
	for i, e := range events {
		if e.Kind != Kind(i) {
			t.Errorf("event %d Kind = %v, want %v", i, e.Kind, Kind(i))
		}
		if e.BufferLen != 8*i {
			t.Errorf("event %d BufferLen = %d, want %d", i, e.BufferLen, 8*i)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindCreate, "CREATE"},
		{KindInitialize, "INITIALIZE"},
		{KindRebuild, "REBUILD"},
		{KindRelease, "RELEASE"},
		{KindDispose, "DISPOSE"},
		{Kind(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b []Event
	ml := MultiLogger{
		Func(func(e Event) { a = append(a, e) }),
		nil, // nil entries are skipped
		Func(func(e Event) { b = append(b, e) }),
	}
	ml.Log(Event{OperationID: "op", Kind: KindRelease})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("fan-out counts = %d, %d; want 1, 1", len(a), len(b))
	}
	if a[0].Kind != KindRelease || b[0].Kind != KindRelease {
		t.Error("fan-out delivered wrong event")
	}
}

func TestSlogAdapter(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)
	a.Log(Event{
		OperationID: "op-1",
		Kind:        KindCreate,
		Flags:       0x80000000,
		BufferLen:   32,
	})
	a.Log(Event{
		OperationID: "op-1",
		Kind:        KindRebuild,
		Error:       "boom",
	})

	text := out.String()
	for _, want := range []string{"op-1", "CREATE", "0x80000000", "REBUILD", "boom", "level=WARN"} {
		if !bytes.Contains([]byte(text), []byte(want)) {
			t.Errorf("slog output missing %q:\n%s", want, text)
		}
	}
}

func TestSlogHex(t *testing.T) {
	tests := []struct {
		v    uint32
		want string
	}{
		{0, "0x00000000"},
		{0xC0000023, "0xc0000023"},
		{0x80000000, "0x80000000"},
	}
	for _, tt := range tests {
		if got := slogHex(tt.v); got != tt.want {
			t.Errorf("slogHex(%#x) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
