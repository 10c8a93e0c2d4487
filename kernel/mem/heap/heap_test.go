package heap

import (
	"os"
	"testing"
	"unsafe"

	"github.com/zizidong/custom-linux/kernel/mem"
)

// TestMain replaces the CLI/STI-backed critical section with a no-op for
// the whole package: these tests run as an ordinary hosted process, where
// executing a real CLI/STI would fault immediately outside ring 0.
func TestMain(m *testing.M) {
	DisableInterruptGating()
	os.Exit(m.Run())
}

// newRegion allocates a Go-backed byte slice to stand in for the physical
// heap region a real boot sequence would hand to Init, and returns its
// start address.
func newRegion(t *testing.T, size mem.Size) uintptr {
	t.Helper()
	buf := make([]byte, size)
	t.Cleanup(func() { _ = buf }) // keep buf alive for the duration of the test
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestAllocFreeRoundTrip(t *testing.T) {
	start := newRegion(t, 0x1000)
	Init(start, 0x1000)

	a, err := Alloc(100)
	if err != nil {
		t.Fatalf("unexpected error allocating a: %v", err)
	}
	b, err := Alloc(200)
	if err != nil {
		t.Fatalf("unexpected error allocating b: %v", err)
	}

	Free(a)
	c, err := Alloc(100)
	if err != nil {
		t.Fatalf("unexpected error allocating c: %v", err)
	}

	if c != a {
		t.Errorf("expected c to reuse a's freed block at %x; got %x", a, c)
	}

	_ = b
	if got, want := Used(), mem.Size(200+100); got != want {
		t.Errorf("expected used = %d; got %d", want, got)
	}
}

func TestCoalesceAdjacentFreeBlocks(t *testing.T) {
	start := newRegion(t, 0x1000)
	Init(start, 0x1000)
	total := Total()

	a, _ := Alloc(64)
	b, _ := Alloc(64)
	c, _ := Alloc(64)

	Free(b)
	Free(a)
	Free(c)

	if got := Used(); got != 0 {
		t.Errorf("expected used = 0 after freeing every block; got %d", got)
	}

	// A single free block should now span the whole region (minus the one
	// remaining header for that block).
	head := blockAt(global.head)
	if head.next != 0 {
		t.Errorf("expected exactly one free-list node after full coalesce; found a successor")
	}
	if head.size != total {
		t.Errorf("expected coalesced block size = %d; got %d", total, head.size)
	}
}

func TestFreeListStaysAddressOrdered(t *testing.T) {
	start := newRegion(t, 0x1000)
	Init(start, 0x1000)

	_, _ = Alloc(32)
	_, _ = Alloc(32)
	_, _ = Alloc(32)

	var prevAddr uintptr
	for cur := global.head; cur != 0; {
		b := blockAt(cur)
		if prevAddr != 0 && cur <= prevAddr {
			t.Fatalf("free list not address-ordered: %x came after %x", cur, prevAddr)
		}
		prevAddr = cur
		cur = b.next
	}
}

func TestAllocExhaustion(t *testing.T) {
	start := newRegion(t, 256)
	Init(start, 256)

	if _, err := Alloc(10000); err == nil {
		t.Fatalf("expected an out-of-memory error, got nil")
	}
}

func TestFreeIsNoopForUnknownOrNilPointer(t *testing.T) {
	start := newRegion(t, 0x1000)
	Init(start, 0x1000)

	usedBefore := Used()
	Free(0)
	Free(start + 0x5000) // address outside any block
	if Used() != usedBefore {
		t.Errorf("Free of an invalid pointer must be a no-op")
	}
}

func TestAllocAligned(t *testing.T) {
	start := newRegion(t, 1<<20)
	Init(start, 1<<20)

	for _, align := range []uintptr{16, 64, 4096} {
		ptr, err := AllocAligned(37, align)
		if err != nil {
			t.Fatalf("AllocAligned(37, %d): unexpected error: %v", align, err)
		}
		if ptr%align != 0 {
			t.Errorf("AllocAligned(37, %d) = %x, not aligned", align, ptr)
		}
		FreeAligned(ptr)
	}
}

func TestAllocAlignedRejectsNonPowerOfTwo(t *testing.T) {
	start := newRegion(t, 0x1000)
	Init(start, 0x1000)

	if _, err := AllocAligned(16, 3); err == nil {
		t.Fatalf("expected an error for a non-power-of-two alignment")
	}
}
