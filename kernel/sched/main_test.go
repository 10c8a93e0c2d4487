package sched

import (
	"os"
	"testing"
	"unsafe"

	"github.com/zizidong/custom-linux/kernel/mem"
	"github.com/zizidong/custom-linux/kernel/mem/heap"
)

// TestMain backs the heap with a Go-owned region, disables the heap's
// CLI/STI critical section, and replaces contextSwitch and PIT port I/O
// with no-ops: none of those may execute for real in a hosted test
// process running outside ring 0.
func TestMain(m *testing.M) {
	heap.DisableInterruptGating()

	// Each created process costs roughly 12 KiB of heap (PCB, aligned
	// stack, aligned page directory) and most tests never destroy theirs,
	// so the region must comfortably exceed the whole suite's appetite.
	const regionSize = 4 * 1024 * 1024
	buf := make([]byte, regionSize)
	heap.Init(uintptr(unsafe.Pointer(&buf[0])), mem.Size(regionSize))

	contextSwitchFn = func(outSP *uintptr, inSP uintptr, inCR3 uintptr) {}
	pitOutbFn = func(uint16, uint8) {}

	os.Exit(m.Run())
}
