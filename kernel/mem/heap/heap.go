// Package heap implements the kernel's bootstrap allocator: a first-fit,
// splitting, coalescing free-list carved out of a single contiguous
// physical region handed to Init by the boot sequence.
//
// The allocator is a process-wide singleton, following the same
// init/operational lifecycle as every other piece of global kernel state:
// Init must run exactly once, after which Alloc/Free/AllocAligned are safe
// to call from anywhere, including from inside an interrupt handler that
// has masked interrupts around its own critical section.
package heap

import (
	"unsafe"

	"github.com/zizidong/custom-linux/kernel"
	"github.com/zizidong/custom-linux/kernel/cpu"
	"github.com/zizidong/custom-linux/kernel/mem"
)

var (
	errOutOfMemory = &kernel.Error{Module: "heap", Message: "out of memory"}
	errBadAlign    = &kernel.Error{Module: "heap", Message: "alignment must be a non-zero power of two"}

	// saveAndDisableFn/restoreInterruptsFn indirect through cpu.* so tests
	// can exercise Alloc/Free without executing a real CLI/STI, which
	// would fault immediately outside ring 0.
	saveAndDisableFn    = cpu.SaveAndDisableInterrupts
	restoreInterruptsFn = cpu.RestoreInterrupts
)

// block is the in-band free-list node. It sits at the very start of the
// region it describes; the bytes available to the caller begin immediately
// after it. Fields are deliberately machine-word sized so the layout is
// stable regardless of struct padding rules.
type block struct {
	size      mem.Size // payload size in bytes, excluding this header
	allocated uint32   // 0 = free, 1 = allocated
	next      uintptr  // address of the next block's header, 0 if none
}

var headerSize = mem.Size(unsafe.Sizeof(block{}))

func blockAt(addr uintptr) *block {
	return (*block)(unsafe.Pointer(addr))
}

func (b *block) addr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

func (b *block) payload() uintptr {
	return b.addr() + uintptr(headerSize)
}

func (b *block) isFree() bool {
	return b.allocated == 0
}

// Manager is the singleton bootstrap heap. The zero value is not usable;
// call Init before any other method.
type Manager struct {
	head        uintptr // address of the first block header, 0 once Init runs on an empty region is impossible: there is always at least one block
	total       mem.Size
	used        mem.Size
	heapStart   uintptr
	heapEnd     uintptr
	initialized bool
}

// global is the process-wide heap instance every package-level function in
// this package operates on.
var global Manager

// Init carves out a single free block covering [start+headerSize, start+size)
// and must be called exactly once, before any call to Alloc/Free, with
// interrupts already disabled by the boot sequence.
func Init(start uintptr, size mem.Size) {
	global.heapStart = start
	global.heapEnd = start + uintptr(size)
	global.total = size - headerSize
	global.used = 0

	first := blockAt(start)
	first.size = size - headerSize
	first.allocated = 0
	first.next = 0

	global.head = start
	global.initialized = true
}

// Alloc reserves size bytes (rounded up to a multiple of 4) using a
// first-fit search of the free list and returns the payload address. It
// returns errOutOfMemory if no free block is large enough.
func Alloc(size mem.Size) (uintptr, *kernel.Error) {
	if size == 0 {
		return 0, nil
	}
	size = (size + 3) &^ 3

	defer restoreInterruptsFn(saveAndDisableFn())

	cur := global.head
	for cur != 0 {
		b := blockAt(cur)
		if b.isFree() && b.size >= size {
			allocated := splitOrTake(b, size)
			b.allocated = 1
			global.used += allocated
			return b.payload(), nil
		}
		cur = b.next
	}

	return 0, errOutOfMemory
}

// splitOrTake decides whether b should be split into a used portion of size
// requested and a new free remainder block, or handed out whole. It returns
// the number of bytes that end up marked allocated in b (== requested unless
// the block was too small to split, in which case the whole block is used
// to avoid creating an unreachable fragment).
func splitOrTake(b *block, requested mem.Size) mem.Size {
	remainder := b.size - requested
	if remainder <= headerSize {
		return b.size
	}

	newBlockAddr := b.payload() + uintptr(requested)
	newBlock := blockAt(newBlockAddr)
	newBlock.size = remainder - headerSize
	newBlock.allocated = 0
	newBlock.next = b.next

	b.size = requested
	b.next = newBlockAddr

	return requested
}

// Free releases the block whose payload address equals ptr, coalescing it
// with an adjacent free predecessor and/or successor. Freeing the NULL
// pointer or an address that is not a live payload address is a silent
// no-op.
func Free(ptr uintptr) {
	if ptr == 0 {
		return
	}

	defer restoreInterruptsFn(saveAndDisableFn())

	var prev *block
	cur := global.head
	for cur != 0 {
		b := blockAt(cur)
		if b.payload() == ptr {
			b.allocated = 0
			global.used -= b.size

			if next := b.next; next != 0 {
				n := blockAt(next)
				if n.isFree() {
					b.size += headerSize + n.size
					b.next = n.next
				}
			}
			if prev != nil && prev.isFree() {
				prev.size += headerSize + b.size
				prev.next = b.next
			}
			return
		}
		prev = b
		cur = b.next
	}
}

// alignedHeaderSize is the number of bytes reserved immediately before the
// address returned by AllocAligned to record the true block base that
// FreeAligned must pass back to Free.
const alignedHeaderSize = uintptr(unsafe.Sizeof(uintptr(0)))

// AllocAligned allocates size bytes such that the returned address is a
// multiple of alignment (a non-zero power of two). Unlike a naive
// implementation that simply rounds an interior pointer, it reserves space
// for a small header immediately before the aligned address that records
// the original block's payload address, so FreeAligned can recover it.
func AllocAligned(size mem.Size, alignment uintptr) (uintptr, *kernel.Error) {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return 0, errBadAlign
	}

	raw, err := Alloc(size + mem.Size(alignment-1) + mem.Size(alignedHeaderSize))
	if err != nil {
		return 0, err
	}

	aligned := mem.AlignUp(raw+alignedHeaderSize, alignment)
	*(*uintptr)(unsafe.Pointer(aligned - alignedHeaderSize)) = raw

	return aligned, nil
}

// FreeAligned releases a block previously returned by AllocAligned. Freeing
// NULL is a no-op.
func FreeAligned(ptr uintptr) {
	if ptr == 0 {
		return
	}
	raw := *(*uintptr)(unsafe.Pointer(ptr - alignedHeaderSize))
	Free(raw)
}

// DisableInterruptGating replaces the CLI/STI-backed critical section with
// a no-op. It exists so other packages' tests can drive the heap (directly,
// or transitively through AllocAligned) without executing a real CLI/STI
// outside ring 0; production boot code never calls it.
func DisableInterruptGating() {
	saveAndDisableFn = func() bool { return false }
	restoreInterruptsFn = func(bool) {}
}

// Total returns the total number of bytes available for allocation,
// excluding header overhead.
func Total() mem.Size { return global.total }

// Used returns the number of bytes currently handed out to callers.
func Used() mem.Size { return global.used }

// FreeBytes returns the number of bytes not currently allocated. It is
// named FreeBytes rather than Free to avoid colliding with the Free
// function that releases a pointer.
func FreeBytes() mem.Size { return global.total - global.used }
