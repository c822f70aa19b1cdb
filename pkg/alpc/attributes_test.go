package alpc

import (
	"testing"

	"github.com/shubham0d/sandbox-attacksurface-analysis-tools/pkg/native"
)

// newTestBuffer builds a buffer over a fresh heap for the given union.
func newTestBuffer(t *testing.T, flags AttributeFlag) *AttributeBuffer {
	t.Helper()
	buf, err := NewAttributeBuffer(RuntimeAllocator{}, native.NewHeap(), flags)
	if err != nil {
		t.Fatalf("NewAttributeBuffer failed: %v", err)
	}
	t.Cleanup(func() { buf.Close() })
	return buf
}

func TestContextAttributeRoundTrip(t *testing.T) {
	buf := newTestBuffer(t, AttributeContext)
	in := &ContextAttribute{
		PortContext:    0xdeadbeefcafe,
		MessageContext: 0x1122334455667788,
		Sequence:       7,
		MessageID:      9,
		CallbackID:     11,
	}
	if err := in.Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	out := &ContextAttribute{}
	if err := out.Rebuild(buf); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if *out != *in {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDataViewAttributeRoundTrip(t *testing.T) {
	buf := newTestBuffer(t, AttributeView)
	in := &DataViewAttribute{
		Flags:         ViewFlagSecuredAccess,
		SectionHandle: 0x44,
		ViewBase:      0x7ff600000000,
		ViewSize:      0x10000,
	}
	if err := in.Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	out := &DataViewAttribute{}
	if err := out.Rebuild(buf); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if out.Flags != in.Flags || out.SectionHandle != in.SectionHandle ||
		out.ViewBase != in.ViewBase || out.ViewSize != in.ViewSize {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestTokenAttribute(t *testing.T) {
	buf := newTestBuffer(t, AttributeToken)
	attr := &TokenAttribute{}
	if err := attr.Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// The facility fills the slot in; fake that here.
	slot, err := buf.Attribute(AttributeToken, tokenSlotSize)
	if err != nil {
		t.Fatalf("slot lookup failed: %v", err)
	}
	copy(slot, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0})

	if err := attr.Rebuild(buf); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if attr.TokenID != 1 || attr.AuthenticationID != 2 || attr.ModifiedID != 3 {
		t.Errorf("rebuild got %+v, want IDs 1, 2, 3", attr)
	}
}

func TestTokenAttributeInitializeClearsSlot(t *testing.T) {
	buf := newTestBuffer(t, AttributeToken)
	slot, err := buf.Attribute(AttributeToken, tokenSlotSize)
	if err != nil {
		t.Fatalf("slot lookup failed: %v", err)
	}
	for i := range slot {
		slot[i] = 0xff
	}
	if err := (&TokenAttribute{}).Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	for i, v := range slot {
		if v != 0 {
			t.Fatalf("slot byte %d = %#x after Initialize, want 0", i, v)
		}
	}
}

func TestWorkOnBehalfAttributeRoundTrip(t *testing.T) {
	buf := newTestBuffer(t, AttributeWorkOnBehalf)
	in := &WorkOnBehalfAttribute{ThreadID: 0x1234, ThreadCreationTimeLow: 0x89abcdef}
	if err := in.Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	out := &WorkOnBehalfAttribute{}
	if err := out.Rebuild(buf); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if *out != *in {
		t.Errorf("round-trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestHandleAttributeRoundTrip(t *testing.T) {
	buf := newTestBuffer(t, AttributeHandle)
	in := &HandleAttribute{
		Flags:         HandleFlagSameAccess,
		Handle:        0x40,
		ObjectType:    2,
		DesiredAccess: 0x1f0003,
	}
	if err := in.Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	out := &HandleAttribute{}
	if err := out.Rebuild(buf); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if out.Flags != in.Flags || out.Handle != in.Handle ||
		out.ObjectType != in.ObjectType || out.DesiredAccess != in.DesiredAccess {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestRawAttributeRoundTrip(t *testing.T) {
	buf := newTestBuffer(t, AttributeDirect)
	in := &RawAttribute{Kind: AttributeDirect, Data: []byte{8, 7, 6, 5, 4, 3, 2, 1}}
	if err := in.Initialize(buf); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	out := &RawAttribute{Kind: AttributeDirect}
	if err := out.Rebuild(buf); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if string(out.Data) != string(in.Data) {
		t.Errorf("round-trip mismatch: got %v, want %v", out.Data, in.Data)
	}
}

func TestRawAttributeOversized(t *testing.T) {
	buf := newTestBuffer(t, AttributeDirect)
	attr := &RawAttribute{Kind: AttributeDirect, Data: make([]byte, directSlotSize+1)}
	if err := attr.Initialize(buf); err == nil {
		t.Fatal("Initialize accepted oversized data")
	}
}

func TestSecurityQoSRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		qos  SecurityQualityOfService
	}{
		{"anonymous static", SecurityQualityOfService{ImpersonationLevel: ImpersonationAnonymous}},
		{
			"impersonate dynamic effective-only",
			SecurityQualityOfService{
				ImpersonationLevel:  ImpersonationImpersonate,
				ContextTrackingMode: SecurityDynamicTracking,
				EffectiveOnly:       true,
			},
		},
		{"delegate", SecurityQualityOfService{ImpersonationLevel: ImpersonationDelegate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := make([]byte, qosRecordSize)
			tt.qos.marshal(record)
			var got SecurityQualityOfService
			got.unmarshal(record)
			if got != tt.qos {
				t.Errorf("round-trip mismatch: got %+v, want %+v", got, tt.qos)
			}
		})
	}
}

func TestImpersonationLevelString(t *testing.T) {
	tests := []struct {
		level ImpersonationLevel
		want  string
	}{
		{ImpersonationAnonymous, "ANONYMOUS"},
		{ImpersonationIdentification, "IDENTIFICATION"},
		{ImpersonationImpersonate, "IMPERSONATE"},
		{ImpersonationDelegate, "DELEGATE"},
		{ImpersonationLevel(7), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("ImpersonationLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
