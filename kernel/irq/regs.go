package irq

import "github.com/zizidong/custom-linux/kernel/kfmt/early"

// Regs is a snapshot of the general-purpose registers at the moment an
// interrupt, exception or syscall occurred.
type Regs struct {
	EDI uint32
	ESI uint32
	EBP uint32
	ESP uint32
	EBX uint32
	EDX uint32
	ECX uint32
	EAX uint32
}

// Print dumps the register snapshot to the active console.
func (r *Regs) Print() {
	early.Printf("EAX=%x EBX=%x ECX=%x EDX=%x\n", r.EAX, r.EBX, r.ECX, r.EDX)
	early.Printf("ESI=%x EDI=%x EBP=%x ESP=%x\n", r.ESI, r.EDI, r.EBP, r.ESP)
}

// Frame is the portion of the interrupt frame the CPU pushes automatically:
// the return address, code selector and flags register. This kernel never
// changes privilege level on an interrupt, so there is no stack-segment
// switch and therefore no saved user ESP/SS to track here.
type Frame struct {
	EIP    uint32
	CS     uint32
	EFlags uint32
}

// Print dumps the exception frame to the active console.
func (f *Frame) Print() {
	early.Printf("EIP=%x CS=%x EFLAGS=%x\n", f.EIP, f.CS, f.EFlags)
}

// Context is the full state handed to the portable dispatcher by the
// assembly trampoline: the saved registers, the vector and (possibly
// synthetic) error code, and the CPU-pushed frame, in the exact order the
// trampoline lays them out on the stack.
type Context struct {
	Regs
	Vector  uint32
	ErrCode uint32
	Frame
}
