package irq

import (
	"unsafe"

	"github.com/zizidong/custom-linux/kernel/cpu"
)

const (
	numVectors = 256

	// kernelCodeSelector is the selector installed by the boot stage
	// before this core ever runs; every gate targets ring 0 through it.
	kernelCodeSelector = 0x08

	// gateType32Interrupt is the type/attribute byte for a present,
	// ring-0, 32-bit interrupt gate: P=1, DPL=00, type=0xE.
	gateType32Interrupt = 0x8E
)

// gate is a single IDT entry in the fixed x86 32-bit gate format: the
// handler offset split across a low and high half, a segment selector, a
// reserved zero byte and a type/attribute byte.
type gate struct {
	offsetLow  uint16
	selector   uint16
	zero       uint8
	typeAttr   uint8
	offsetHigh uint16
}

func (g *gate) set(handler uintptr, selector uint16, typeAttr uint8) {
	g.offsetLow = uint16(handler)
	g.offsetHigh = uint16(handler >> 16)
	g.selector = selector
	g.zero = 0
	g.typeAttr = typeAttr
}

// descriptor holds the 6-byte value loaded into the IDTR: a 16-bit limit
// (table size in bytes minus one) followed by the table's 32-bit linear
// base address. The leading padding field places limit at offset 2 so that
// limit and base are contiguous; LIDT is given the address of limit.
type descriptor struct {
	_     uint16
	limit uint16
	base  uint32
}

var (
	idt  [numVectors]gate
	idtr descriptor

	// loadIDTRFn is overridden in tests: LIDT is a ring-0-only instruction
	// and would fault immediately in a hosted test process.
	loadIDTRFn = cpu.LoadIDTR
)

// funcAddr returns the entry address of a body-less, non-closure Go
// function. Every stubN trampoline declared in stub_table.go is exactly
// that: a func value whose first word is its code pointer.
func funcAddr(fn func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&fn))
}

// stubForVector returns the assembly trampoline installed for vector, or
// stubUnhandled if this kernel does not dedicate one to it.
func stubForVector(vector int) func() {
	switch {
	case vector >= 0 && vector < 48:
		return exceptionAndIRQStubs[vector]
	case vector == 0x80:
		return stub128
	default:
		return stubUnhandled
	}
}

// exceptionAndIRQStubs maps vectors 0-47 (the 32 CPU exceptions followed by
// the 16 remapped IRQ lines) to their dedicated trampolines.
var exceptionAndIRQStubs = [48]func(){
	stub0, stub1, stub2, stub3, stub4, stub5, stub6, stub7,
	stub8, stub9, stub10, stub11, stub12, stub13, stub14, stub15,
	stub16, stub17, stub18, stub19, stub20, stub21, stub22, stub23,
	stub24, stub25, stub26, stub27, stub28, stub29, stub30, stub31,
	stub32, stub33, stub34, stub35, stub36, stub37, stub38, stub39,
	stub40, stub41, stub42, stub43, stub44, stub45, stub46, stub47,
}

// Init zeroes every handler table, builds every IDT gate (used vectors get
// their dedicated trampoline, the rest get the shared catch-all), remaps
// and masks the PIC, registers the syscall gate at 0x80, then loads the
// IDTR. Interrupts are still disabled when Init returns; the caller enables
// them once the rest of boot has finished.
func Init() {
	resetHandlerTables()

	for v := 0; v < numVectors; v++ {
		idt[v].set(funcAddr(stubForVector(v)), kernelCodeSelector, gateType32Interrupt)
	}

	picInit()
	HandleGeneric(syscallVector, syscallGate)

	idtr.limit = uint16(unsafe.Sizeof(idt)) - 1
	idtr.base = uint32(uintptr(unsafe.Pointer(&idt[0])))
	loadIDTRFn(uintptr(unsafe.Pointer(&idtr.limit)))
}

// EnableInterrupts sets the CPU interrupt-enable flag.
func EnableInterrupts() { cpu.EnableInterrupts() }

// DisableInterrupts clears the CPU interrupt-enable flag.
func DisableInterrupts() { cpu.DisableInterrupts() }
