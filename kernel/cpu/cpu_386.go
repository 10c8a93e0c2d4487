// Package cpu provides the target-specific primitives (port I/O, interrupt
// flag control, TLB/CR3 manipulation) that the portable parts of the kernel
// are built on top of. Every exported function here is a thin Go
// declaration backed by a hand-written assembly implementation in
// cpu_386.s; none of them allocate or call back into Go code, which makes
// them safe to use from inside an interrupt handler.
package cpu

// Outb writes value to the given I/O port.
func Outb(port uint16, value uint8)

// Inb reads a single byte from the given I/O port.
func Inb(port uint16) uint8

// EnableInterrupts sets the CPU interrupt-enable flag (STI).
func EnableInterrupts()

// DisableInterrupts clears the CPU interrupt-enable flag (CLI).
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt arrives, then
// halts again. It never returns.
func Halt()

// InvalidateTLBEntry flushes the TLB entry that caches the translation for
// virtAddr. It must be called after any modification to a page-table entry
// that is (or might be) currently mapped.
func InvalidateTLBEntry(virtAddr uintptr)

// LoadIDTR loads the interrupt descriptor table register from the 6-byte
// {limit, base} descriptor at descAddr.
func LoadIDTR(descAddr uintptr)

// WriteCR3 installs physAddr as the current page-directory base register.
func WriteCR3(physAddr uintptr)

// ReadCR3 returns the physical address currently installed in CR3.
func ReadCR3() uintptr

// ReadCR2 returns the faulting linear address recorded by the CPU for the
// page fault currently being serviced.
func ReadCR2() uintptr

// EnablePaging sets the CR0.PG bit, turning on paged address translation.
func EnablePaging()

// InterruptsEnabled reports whether the interrupt-enable flag is currently
// set, by reading back EFLAGS.
func InterruptsEnabled() bool

// SaveAndDisableInterrupts disables interrupts and returns whether they were
// enabled beforehand, so the caller can restore the prior state with
// RestoreInterrupts. This is the primitive every guaranteed-release
// critical section in the kernel is built on.
func SaveAndDisableInterrupts() (wasEnabled bool) {
	wasEnabled = InterruptsEnabled()
	DisableInterrupts()
	return wasEnabled
}

// RestoreInterrupts re-enables interrupts iff wasEnabled is true. It is the
// counterpart to SaveAndDisableInterrupts and is typically deferred
// immediately after it:
//
//	defer cpu.RestoreInterrupts(cpu.SaveAndDisableInterrupts())
func RestoreInterrupts(wasEnabled bool) {
	if wasEnabled {
		EnableInterrupts()
	}
}
