package irq

import (
	"github.com/zizidong/custom-linux/kernel/cpu"
	"github.com/zizidong/custom-linux/kernel/kfmt/early"
)

// ExceptionHandler handles one of the 32 CPU exception vectors.
type ExceptionHandler func(*Context)

// IRQHandler handles one of the 16 remapped hardware interrupt lines.
type IRQHandler func(*Context)

// GenericHandler handles any vector at or above 48, including the syscall
// gate at 0x80.
type GenericHandler func(*Context)

var (
	exceptionHandlers [32]ExceptionHandler
	irqHandlers       [16]IRQHandler
	genericHandlers   [numVectors]GenericHandler
)

// resetHandlerTables clears every registered handler; Init calls this
// before rebuilding the IDT so a re-init never leaves a stale handler
// installed under a vector it no longer owns.
func resetHandlerTables() {
	for i := range exceptionHandlers {
		exceptionHandlers[i] = nil
	}
	for i := range irqHandlers {
		irqHandlers[i] = nil
	}
	for i := range genericHandlers {
		genericHandlers[i] = nil
	}
}

// HandleException installs handler for CPU exception vector (0-31).
func HandleException(vector uint8, handler ExceptionHandler) {
	exceptionHandlers[vector] = handler
}

// HandleIRQ installs handler for hardware interrupt line (0-15) and
// unmasks it at the PIC. The handler runs with interrupts still disabled;
// it must not block.
func HandleIRQ(line uint8, handler IRQHandler) {
	irqHandlers[line] = handler
	picUnmaskIRQ(line)
}

// HandleGeneric installs handler for any vector at or above 48.
func HandleGeneric(vector uint8, handler GenericHandler) {
	genericHandlers[vector] = handler
}

// dispatch is called by the assembly trampoline with a pointer to the
// freshly built Context. It never allocates: every path through it runs
// with interrupts disabled and, for exceptions and IRQs, the corresponding
// CPU line still masked.
func dispatch(ctx *Context) {
	switch {
	case ctx.Vector < 32:
		dispatchException(ctx)
	case ctx.Vector < 48:
		dispatchIRQ(ctx)
	default:
		dispatchGeneric(ctx)
	}
}

func dispatchException(ctx *Context) {
	if ctx.Vector == uint32(pageFaultVector) {
		pageFaultHandler(ctx)
		return
	}

	if h := exceptionHandlers[ctx.Vector]; h != nil {
		h(ctx)
		return
	}

	early.Printf("fatal: unhandled CPU exception %d, errcode=%x\n", ctx.Vector, ctx.ErrCode)
	ctx.Frame.Print()
	ctx.Regs.Print()
	fatalHaltFn()
}

func dispatchIRQ(ctx *Context) {
	line := uint8(ctx.Vector - 32)
	if h := irqHandlers[line]; h != nil {
		h(ctx)
	}
	picSendEOI(line)
}

func dispatchGeneric(ctx *Context) {
	if h := genericHandlers[ctx.Vector]; h != nil {
		h(ctx)
	}
}

// fatalHaltFn is substituted in tests so an unhandled-exception path
// doesn't actually stop the test process.
var fatalHaltFn = cpu.Halt
