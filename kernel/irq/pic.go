package irq

import "github.com/zizidong/custom-linux/kernel/cpu"

const (
	picMasterCommand = 0x20
	picMasterData    = 0x21
	picSlaveCommand  = 0xA0
	picSlaveData     = 0xA1

	icw1Init     = 0x11
	icw4Mode8086 = 0x01

	// masterOffset and slaveOffset remap the master and slave PICs so
	// their vectors land just past the 32 CPU exception vectors.
	masterOffset = 0x20
	slaveOffset  = 0x28

	picEOI = 0x20
)

// outbFn/inbFn/saveAndDisableFn/restoreInterruptsFn indirect through cpu.*
// so tests can drive PIC programming and masking without executing real
// port I/O or a CLI/STI, neither of which a hosted test process may do
// outside ring 0.
var (
	outbFn              = cpu.Outb
	inbFn               = cpu.Inb
	saveAndDisableFn    = cpu.SaveAndDisableInterrupts
	restoreInterruptsFn = cpu.RestoreInterrupts
)

// picInit remaps both 8259A controllers and masks every IRQ line; callers
// unmask individual lines with picUnmaskIRQ once their handler is
// registered.
func picInit() {
	outbFn(picMasterCommand, icw1Init)
	outbFn(picSlaveCommand, icw1Init)

	outbFn(picMasterData, masterOffset)
	outbFn(picSlaveData, slaveOffset)

	// ICW3: tell the master a slave sits on IRQ line 2, and tell the
	// slave its own cascade identity.
	outbFn(picMasterData, 0x04)
	outbFn(picSlaveData, 0x02)

	outbFn(picMasterData, icw4Mode8086)
	outbFn(picSlaveData, icw4Mode8086)

	outbFn(picMasterData, 0xFF)
	outbFn(picSlaveData, 0xFF)
}

// picSendEOI signals end-of-interrupt for irqLine (0-15). The slave must be
// acknowledged before the master whenever the IRQ came from the slave.
func picSendEOI(irqLine uint8) {
	if irqLine >= 8 {
		outbFn(picSlaveCommand, picEOI)
	}
	outbFn(picMasterCommand, picEOI)
}

// picMaskIRQ sets the mask bit for irqLine, disabling it at the
// controller. The data port is read before it is written so the other 7
// lines on that controller are left untouched.
func picMaskIRQ(irqLine uint8) {
	defer restoreInterruptsFn(saveAndDisableFn())

	port, bit := picPortAndBit(irqLine)
	mask := inbFn(port)
	outbFn(port, mask|bit)
}

// picUnmaskIRQ clears the mask bit for irqLine, enabling it at the
// controller.
func picUnmaskIRQ(irqLine uint8) {
	defer restoreInterruptsFn(saveAndDisableFn())

	port, bit := picPortAndBit(irqLine)
	mask := inbFn(port)
	outbFn(port, mask&^bit)
}

func picPortAndBit(irqLine uint8) (port uint16, bit uint8) {
	if irqLine >= 8 {
		return picSlaveData, 1 << (irqLine - 8)
	}
	return picMasterData, 1 << irqLine
}
