package sched

import "github.com/zizidong/custom-linux/kernel/cpu"

const (
	pitChannel0   = 0x40
	pitCommand    = 0x43
	pitModeSquare = 0x36
	pitInputClock = 1193180
	tickHz        = 100
)

// pitOutbFn indirects through cpu.Outb so tests can program the PIT without
// executing real port I/O, which traps outside ring 0.
var pitOutbFn = cpu.Outb

// pitInit programs channel 0 of the 8254 for periodic mode at hz ticks per
// second, deriving the 16-bit divisor from the PIT's fixed 1.193180 MHz
// input clock.
func pitInit(hz uint32) {
	divisor := uint16(pitInputClock / hz)

	pitOutbFn(pitCommand, pitModeSquare)
	pitOutbFn(pitChannel0, uint8(divisor&0xFF))
	pitOutbFn(pitChannel0, uint8(divisor>>8))
}

// timerTick runs on every PIT interrupt: it advances the tick counter and
// the running process's cumulative run time, invokes the MLFQ policy once
// per quantum boundary, then wakes any sleeping process whose deadline has
// passed. It is installed as IRQ 0's handler by Init.
func timerTick() {
	global.tick++

	if cur := global.current; cur != nil && cur.State == Running {
		cur.cumulativeRunTicks++
	}

	if global.tick%uint64(global.quantum) == 0 {
		Schedule()
	}

	wakeDueSleepers()
}

// wakeDueSleepers walks a snapshot of the sleeping queue exactly once and
// moves every process whose wakeAt deadline has arrived back to ready.
// Walking a snapshot rather than the live list lets it safely remove
// entries mid-walk instead of needing a second pass or special-casing the
// node it just unlinked.
func wakeDueSleepers() {
	global.sleeping.forEach(func(p *PCB) {
		if p.wakeAt > global.tick {
			return
		}
		global.sleeping.remove(p)
		p.State = Ready
		p.remainingSlice = global.quantum
		global.ready.insertByPriority(p)
	})
}
