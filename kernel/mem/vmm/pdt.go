package vmm

import (
	"unsafe"

	"github.com/zizidong/custom-linux/kernel"
	"github.com/zizidong/custom-linux/kernel/cpu"
	"github.com/zizidong/custom-linux/kernel/mem"
	"github.com/zizidong/custom-linux/kernel/mem/heap"
)

const (
	entriesPerTable = 1024
	dirIndexShift   = 22
	tableIndexShift = mem.PageShift
	tableIndexMask  = entriesPerTable - 1
)

var (
	errPagingNotInitialized = &kernel.Error{Module: "vmm", Message: "paging_init has not been called"}

	// The following indirections are overridden by tests: calling the
	// real cpu.* primitives from a hosted test process would trap, since
	// they execute privileged instructions that only make sense when this
	// code is actually running as the kernel.
	allocFn             = allocZeroedTable
	writeCR3Fn          = cpu.WriteCR3
	enablePagingFn      = cpu.EnablePaging
	invalidateTLBFn     = cpu.InvalidateTLBEntry
	readFaultFn         = cpu.ReadCR2
	saveAndDisableFn    = cpu.SaveAndDisableInterrupts
	restoreInterruptsFn = cpu.RestoreInterrupts
)

// PageTable is the second (leaf) level of the paging hierarchy: 1024
// entries, each describing a single 4 KiB frame mapping. It must always
// live at a 4 KiB-aligned physical address.
type PageTable struct {
	entries [entriesPerTable]pageTableEntry
}

// PageDirectory is the top level of the paging hierarchy: 1024 entries,
// each pointing at a PageTable that maps a 4 MiB window of the address
// space. It must always live at a 4 KiB-aligned physical address.
type PageDirectory struct {
	entries [entriesPerTable]pageTableEntry
}

// current is the page directory installed via SwitchPageDirectory, or nil
// before paging has been initialized.
var current *PageDirectory

// allocZeroedTable reserves a 4 KiB-aligned, zero-filled block from the
// heap and returns its address. Since the heap region is identity-mapped
// kernel memory, this address is valid as both a physical frame number and
// a directly-dereferenceable pointer.
func allocZeroedTable() (uintptr, *kernel.Error) {
	addr, err := heap.AllocAligned(mem.Size(unsafe.Sizeof(PageTable{})), uintptr(mem.PageSize))
	if err != nil {
		return 0, err
	}
	mem.Memset(addr, 0, mem.Size(unsafe.Sizeof(PageTable{})))
	return addr, nil
}

// Init allocates a zeroed page directory, installs it as the active
// address space and enables paging. It must run before any call to
// MapPage, UnmapPage or SwitchPageDirectory.
func Init() (*PageDirectory, *kernel.Error) {
	dir, err := NewAddressSpace()
	if err != nil {
		return nil, err
	}

	SwitchPageDirectory(dir)
	return dir, nil
}

// NewAddressSpace allocates a zeroed page directory without installing it
// as the active one. The scheduler uses this to build each process's
// address space root at creation time, well before that process is ever
// dispatched; the context-switch primitive activates it by loading its
// address into CR3 directly, without going through SwitchPageDirectory.
func NewAddressSpace() (*PageDirectory, *kernel.Error) {
	addr, err := allocFn()
	if err != nil {
		return nil, err
	}
	return (*PageDirectory)(unsafe.Pointer(addr)), nil
}

// dirIndex and tableIndex split a virtual address into its page-directory
// and page-table indices.
func dirIndex(virt uintptr) uint32   { return uint32(virt>>dirIndexShift) & tableIndexMask }
func tableIndex(virt uintptr) uint32 { return uint32(virt>>tableIndexShift) & tableIndexMask }

// MapPage establishes a mapping from virt to phys in the currently active
// page directory, allocating a new page table on demand if the directory
// entry covering virt is not yet present. The TLB entry for virt is
// invalidated before returning.
func MapPage(virt, phys uintptr, flags PageTableEntryFlag) *kernel.Error {
	if current == nil {
		return errPagingNotInitialized
	}

	defer restoreInterruptsFn(saveAndDisableFn())

	dirEnt := &current.entries[dirIndex(virt)]
	if !dirEnt.HasFlags(FlagPresent) {
		tableAddr, err := allocFn()
		if err != nil {
			return err
		}
		dirEnt.SetFrame(tableAddr)
		dirEnt.SetFlags(FlagPresent | FlagRW)
	}

	table := (*PageTable)(unsafe.Pointer(dirEnt.Frame()))
	pte := &table.entries[tableIndex(virt)]
	*pte = 0
	pte.SetFrame(phys)
	pte.SetFlags(flags)

	invalidateTLBFn(virt)
	return nil
}

// UnmapPage clears the page-table entry for virt, if its directory entry is
// present, and invalidates the TLB entry for virt. Page tables are never
// reclaimed when they become empty; the resulting leak is bounded by 4 MiB
// of address space per table and is an accepted tradeoff for this kernel.
func UnmapPage(virt uintptr) {
	if current == nil {
		return
	}

	defer restoreInterruptsFn(saveAndDisableFn())

	dirEnt := &current.entries[dirIndex(virt)]
	if !dirEnt.HasFlags(FlagPresent) {
		return
	}

	table := (*PageTable)(unsafe.Pointer(dirEnt.Frame()))
	table.entries[tableIndex(virt)] = 0
	invalidateTLBFn(virt)
}

// SwitchPageDirectory installs dir as the current address space root and
// enables paging if it has not been enabled yet. A process's PCB stores the
// physical address of the PageDirectory it should switch to on dispatch;
// the scheduler's context-switch primitive writes that address into CR3
// itself and does not call this function, so Current is not updated by a
// process switch.
func SwitchPageDirectory(dir *PageDirectory) {
	current = dir
	writeCR3Fn(uintptr(unsafe.Pointer(dir)))
	enablePagingFn()
}

// Current returns the currently active page directory, or nil before Init
// has run.
func Current() *PageDirectory {
	return current
}

// SetFaultAddrReaderForTesting overrides the CR2 reader and returns a
// closure that restores the previous one. It exists so packages that
// consume PageFaultHandler (the interrupt core's vector-14 delegation) can
// exercise it without executing a real, ring-0-only read of CR2.
func SetFaultAddrReaderForTesting(fn func() uintptr) (restore func()) {
	orig := readFaultFn
	readFaultFn = fn
	return func() { readFaultFn = orig }
}

// PageFaultHandler reads the faulting address from CR2 and returns it; it
// logs nothing itself (the interrupt core's vector-14 handler prints the
// returned address). There is no fix-up or recovery logic: demand paging, copy-on-write and swapping
// are explicitly out of scope for this kernel.
func PageFaultHandler() uintptr {
	return readFaultFn()
}
