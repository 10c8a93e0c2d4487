package vmm

import (
	"testing"
	"unsafe"

	"github.com/zizidong/custom-linux/kernel/mem"
	"github.com/zizidong/custom-linux/kernel/mem/heap"
)

// setupTestHeap backs the heap with a Go-owned region large enough for a
// handful of page tables, and replaces every cpu.* indirection with a
// recording stub so the paging logic can run under go test without
// touching real hardware state.
func setupTestHeap(t *testing.T) {
	t.Helper()

	heap.DisableInterruptGating()

	const regionSize = 64 * 1024
	buf := make([]byte, regionSize)
	heap.Init(uintptr(unsafe.Pointer(&buf[0])), mem.Size(regionSize))
	t.Cleanup(func() { _ = buf })

	current = nil

	origWriteCR3, origEnablePaging := writeCR3Fn, enablePagingFn
	origInvalidateTLB, origReadFault := invalidateTLBFn, readFaultFn
	origSaveAndDisable, origRestore := saveAndDisableFn, restoreInterruptsFn
	writeCR3Fn = func(uintptr) {}
	enablePagingFn = func() {}
	invalidateTLBFn = func(uintptr) {}
	readFaultFn = func() uintptr { return 0 }
	saveAndDisableFn = func() bool { return false }
	restoreInterruptsFn = func(bool) {}
	t.Cleanup(func() {
		writeCR3Fn = origWriteCR3
		enablePagingFn = origEnablePaging
		invalidateTLBFn = origInvalidateTLB
		readFaultFn = origReadFault
		saveAndDisableFn = origSaveAndDisable
		restoreInterruptsFn = origRestore
	})
}

func TestInitInstallsActiveDirectory(t *testing.T) {
	setupTestHeap(t)

	dir, err := Init()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Current() != dir {
		t.Errorf("expected Current() to return the directory installed by Init")
	}
}

func TestMapPageAllocatesTableOnDemand(t *testing.T) {
	setupTestHeap(t)

	if _, err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	const virt = uintptr(0x00401000)
	const phys = uintptr(0x00500000)

	if err := MapPage(virt, phys, FlagPresent|FlagRW); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	dirEnt := &current.entries[dirIndex(virt)]
	if !dirEnt.HasFlags(FlagPresent) {
		t.Fatalf("expected directory entry to be present after MapPage")
	}

	table := (*PageTable)(unsafe.Pointer(dirEnt.Frame()))
	pte := table.entries[tableIndex(virt)]
	if !pte.HasFlags(FlagPresent | FlagRW) {
		t.Errorf("expected mapped entry to carry the requested flags")
	}
	if got := pte.Frame(); got != phys {
		t.Errorf("Frame() = %x; want %x", got, phys)
	}
}

func TestMapPageReusesExistingTable(t *testing.T) {
	setupTestHeap(t)
	if _, err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Two addresses sharing a directory entry but different table slots.
	const virtA = uintptr(0x00401000)
	const virtB = uintptr(0x00402000)

	if err := MapPage(virtA, 0x00500000, FlagPresent|FlagRW); err != nil {
		t.Fatalf("MapPage(virtA): %v", err)
	}
	tableBefore := current.entries[dirIndex(virtA)].Frame()

	if err := MapPage(virtB, 0x00501000, FlagPresent|FlagRW); err != nil {
		t.Fatalf("MapPage(virtB): %v", err)
	}
	tableAfter := current.entries[dirIndex(virtB)].Frame()

	if tableBefore != tableAfter {
		t.Errorf("expected virtA and virtB to share a page table; got %x and %x", tableBefore, tableAfter)
	}
}

func TestMapPageBeforeInitFails(t *testing.T) {
	setupTestHeap(t)

	err := MapPage(0x1000, 0x2000, FlagPresent)
	if err != errPagingNotInitialized {
		t.Fatalf("expected errPagingNotInitialized; got %v", err)
	}
}

func TestUnmapPageClearsEntry(t *testing.T) {
	setupTestHeap(t)
	if _, err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	const virt = uintptr(0x00401000)
	if err := MapPage(virt, 0x00500000, FlagPresent|FlagRW); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	UnmapPage(virt)

	dirEnt := &current.entries[dirIndex(virt)]
	table := (*PageTable)(unsafe.Pointer(dirEnt.Frame()))
	if table.entries[tableIndex(virt)].HasFlags(FlagPresent) {
		t.Errorf("expected entry cleared after UnmapPage")
	}
}

func TestUnmapPageNoopWhenDirectoryEntryAbsent(t *testing.T) {
	setupTestHeap(t)
	if _, err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Must not panic or allocate a table just to unmap an address that was
	// never mapped.
	UnmapPage(0x01000000)
}

func TestPageFaultHandlerReturnsMockedAddress(t *testing.T) {
	setupTestHeap(t)

	readFaultFn = func() uintptr { return 0xDEADB000 }

	if got, want := PageFaultHandler(), uintptr(0xDEADB000); got != want {
		t.Errorf("PageFaultHandler() = %x; want %x", got, want)
	}
}
