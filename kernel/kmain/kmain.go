// Package kmain assembles the four core subsystems and the thin
// collaborators (filesystem stub, syscall table) into the kernel's single
// entry point. It is the only package that knows the boot-time bring-up
// order; every subsystem it calls is otherwise independent of the others
// except for the layering the import graph already encodes.
package kmain

import (
	"github.com/zizidong/custom-linux/kernel"
	"github.com/zizidong/custom-linux/kernel/cpu"
	"github.com/zizidong/custom-linux/kernel/driver/console"
	"github.com/zizidong/custom-linux/kernel/fs"
	"github.com/zizidong/custom-linux/kernel/hal"
	"github.com/zizidong/custom-linux/kernel/irq"
	"github.com/zizidong/custom-linux/kernel/kfmt/early"
	"github.com/zizidong/custom-linux/kernel/mem"
	"github.com/zizidong/custom-linux/kernel/mem/heap"
	"github.com/zizidong/custom-linux/kernel/mem/vmm"
	"github.com/zizidong/custom-linux/kernel/sched"
	"github.com/zizidong/custom-linux/kernel/syscall"
)

// scrollbackSize bounds the in-memory console that collects every boot and
// diagnostic line until a real display driver exists; a debugger can dump
// it out of the kernel image after the fact.
const scrollbackSize = 16 * 1024

// Kmain is the kernel's entry point once a prior boot stage has dropped
// into 32-bit protected mode with interrupts disabled, the kernel code
// and data selectors (0x08/0x10) installed, and a contiguous physical
// region available for the bootstrap heap. It brings up the core
// subsystems bottom-up (heap, paging, interrupts, scheduler), with the
// filesystem collaborator and syscall table wired in before the
// scheduler since the exit path needs both already live.
//
// Kmain never returns. If it does, the caller (the rt0 trampoline) is
// expected to halt the CPU.
func Kmain(heapStart uintptr, heapSize mem.Size) {
	hal.SetConsole(console.NewMem(scrollbackSize))

	heap.Init(heapStart, heapSize)

	if _, err := vmm.Init(); err != nil {
		kernel.Panic(err)
	}

	irq.Init()
	fs.Init()
	syscall.Install()
	sched.Init()

	early.Printf("custom-linux: boot complete\n")
	irq.EnableInterrupts()

	for {
		cpu.Halt()
	}
}
