package native

import (
	"errors"
	"testing"
)

func TestHeapAllocZeroed(t *testing.T) {
	h := NewHeap()
	b, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if b.Addr() == 0 {
		t.Error("block address is zero")
	}
	if b.Len() != 64 {
		t.Errorf("block length = %d, want 64", b.Len())
	}
	for i, v := range b.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, v)
		}
	}
}

func TestHeapAddresses(t *testing.T) {
	h := NewHeap()
	seen := make(map[uint64]bool)
	for i := 0; i < 16; i++ {
		b, err := h.Alloc(24)
		if err != nil {
			t.Fatalf("Alloc failed: %v", err)
		}
		if b.Addr()%blockAlign != 0 {
			t.Errorf("address 0x%x not %d-byte aligned", b.Addr(), blockAlign)
		}
		if seen[b.Addr()] {
			t.Errorf("address 0x%x handed out twice", b.Addr())
		}
		seen[b.Addr()] = true
	}
}

func TestHeapAllocBadSize(t *testing.T) {
	h := NewHeap()
	for _, size := range []int{0, -1} {
		if _, err := h.Alloc(size); !errors.Is(err, ErrBadSize) {
			t.Errorf("Alloc(%d) error = %v, want ErrBadSize", size, err)
		}
	}
}

func TestHeapDoubleFree(t *testing.T) {
	h := NewHeap()
	b, err := h.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := h.Free(b); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	if err := h.Free(b); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("second Free error = %v, want ErrNotAllocated", err)
	}
	if h.Live() != 0 {
		t.Errorf("Live = %d, want 0", h.Live())
	}
}

func TestHeapFreeNil(t *testing.T) {
	h := NewHeap()
	if err := h.Free(nil); err != nil {
		t.Errorf("Free(nil) = %v, want nil", err)
	}
}

func TestHeapResolve(t *testing.T) {
	h := NewHeap()
	b, err := h.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	copy(b.Bytes()[8:], []byte{1, 2, 3, 4})

	// Whole block.
	view, err := h.Resolve(b.Addr(), 32)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if view[8] != 1 || view[11] != 4 {
		t.Error("resolved view does not alias block contents")
	}

	// Interior view.
	view, err = h.Resolve(b.Addr()+8, 4)
	if err != nil {
		t.Fatalf("interior Resolve failed: %v", err)
	}
	if view[0] != 1 || view[3] != 4 {
		t.Errorf("interior view = %v, want [1 2 3 4]", view)
	}

	// Out of range.
	if _, err := h.Resolve(b.Addr()+30, 4); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("overrunning Resolve error = %v, want ErrNotAllocated", err)
	}
	if _, err := h.Resolve(0xdead, 4); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("stray Resolve error = %v, want ErrNotAllocated", err)
	}
}

func TestHeapResolveAfterFree(t *testing.T) {
	h := NewHeap()
	b, err := h.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := h.Free(b); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	if _, err := h.Resolve(b.Addr(), 16); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("Resolve after Free error = %v, want ErrNotAllocated", err)
	}
}
