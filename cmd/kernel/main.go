// Command kernel is the linker entry point for the freestanding kernel
// binary. It is a trampoline only: the rt0 assembly stage (not part of
// this repository's core) sets up a minimal stack and GDT, then jumps
// here with the physical bounds of the region this kernel may use as its
// bootstrap heap.
package main

import (
	"github.com/zizidong/custom-linux/kernel/kmain"
	"github.com/zizidong/custom-linux/kernel/mem"
)

// heapStart and heapSize describe the physical region the boot stage
// reserves for the kernel's bootstrap heap; a real boot sequence derives
// these from the multiboot/BIOS memory map instead of hard-coding them.
const (
	heapStart uintptr  = 0x100000
	heapSize  mem.Size = 16 * mem.Mb
)

func main() {
	kmain.Kmain(heapStart, heapSize)
}
