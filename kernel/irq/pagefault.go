package irq

import (
	"github.com/zizidong/custom-linux/kernel/kfmt/early"
	"github.com/zizidong/custom-linux/kernel/mem/vmm"
)

const pageFaultVector = 14

// pageFaultHandler delegates to the paging manager to read the faulting
// address, logs it alongside the instruction that caused it, and halts.
// There is no fix-up: demand paging and copy-on-write are out of scope for
// this kernel, so a page fault is always fatal.
func pageFaultHandler(ctx *Context) {
	addr := vmm.PageFaultHandler()
	early.Printf("page fault at %x, eip=%x, errcode=%x\n", addr, ctx.EIP, ctx.ErrCode)
	fatalHaltFn()
}
