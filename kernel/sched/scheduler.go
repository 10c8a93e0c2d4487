package sched

import (
	"unsafe"

	"github.com/zizidong/custom-linux/kernel"
	"github.com/zizidong/custom-linux/kernel/irq"
	"github.com/zizidong/custom-linux/kernel/mem"
	"github.com/zizidong/custom-linux/kernel/mem/heap"
	"github.com/zizidong/custom-linux/kernel/mem/vmm"
)

const (
	// quantumTicks is both the tick interval at which timerTick runs the
	// MLFQ policy and the number of policy steps in one slice: a process's
	// remainingSlice starts at quantumTicks and loses one per step, and
	// demotion and rotation happen on the step that finds it at zero.
	quantumTicks = 10

	kernelStackSize = 4096
	kernelCodeSel   = 0x08
	initialEFlags   = 0x202
)

// scheduler is the process-wide singleton.
type scheduler struct {
	current *PCB

	ready    queue
	blocked  queue
	sleeping queue

	nextID       uint32
	processCount int
	quantum      uint32

	tick uint64
}

var global scheduler

// contextSwitchFn and picEOI-adjacent primitives are mockable so tests can
// drive scheduling policy without ever touching CR3 or IRET.
var contextSwitchFn = contextSwitch

// Init zeroes scheduler state, arms the PIT for 100 Hz ticks, installs the
// timer IRQ handler and unmasks IRQ 0. It must run once, after the
// interrupt core and paging manager are both initialized.
func Init() {
	global = scheduler{quantum: quantumTicks}
	pitInit(tickHz)
	irq.HandleIRQ(0, func(*irq.Context) { timerTick() })
}

// initialFrame mirrors the layout contextSwitch's shared epilogue expects
// to find on a process's kernel stack: eight zeroed GP-register slots (the
// values this process starts with), the same zeroed vector/errcode pair a
// synthetic switch frame carries, and the EIP/CS/EFLAGS triple IRET
// consumes to enter the process for the first time.
type initialFrame struct {
	edi, esi, ebp, espPlaceholder, ebx, edx, ecx, eax uint32
	vector, errCode                                   uint32
	eip, cs, eflags                                   uint32
}

// ProcessCreate allocates a PCB, a 4 KiB kernel stack and a fresh page
// directory, pushes an initial frame so the first dispatch begins
// executing at entry, and inserts the new process into the ready queue at
// its priority. It returns the sentinel out-of-memory error if any of
// those allocations fail.
func ProcessCreate(name string, entry uintptr, prio Priority) (*PCB, *kernel.Error) {
	pcbAddr, err := heap.Alloc(mem.Size(unsafe.Sizeof(PCB{})))
	if err != nil {
		return nil, err
	}
	p := (*PCB)(unsafe.Pointer(pcbAddr))
	*p = PCB{}
	p.setName(name)

	stackAddr, err := heap.AllocAligned(mem.Size(kernelStackSize), 16)
	if err != nil {
		heap.Free(pcbAddr)
		return nil, err
	}

	dir, err := vmm.NewAddressSpace()
	if err != nil {
		heap.FreeAligned(stackAddr)
		heap.Free(pcbAddr)
		return nil, err
	}

	p.stackBottom = stackAddr
	p.stackTop = stackAddr + kernelStackSize
	p.pageDirectory = uintptr(unsafe.Pointer(dir))

	frameAddr := p.stackTop - uintptr(unsafe.Sizeof(initialFrame{}))
	frame := (*initialFrame)(unsafe.Pointer(frameAddr))
	*frame = initialFrame{
		eip:    uint32(entry),
		cs:     kernelCodeSel,
		eflags: initialEFlags,
	}

	p.regs.esp = frameAddr
	p.Priority = prio
	p.State = Ready
	p.remainingSlice = global.quantum

	global.nextID++
	p.ID = global.nextID
	global.processCount++

	global.ready.insertByPriority(p)
	return p, nil
}

// ProcessDestroy detaches p from whatever queue holds it (a no-op if p is
// the running process, which holds no queue membership), frees its stack,
// page-directory root and PCB, and decrements the live-process count. Any
// page tables hanging off the directory are not reclaimed, matching the
// paging manager's own bounded-leak tradeoff.
func ProcessDestroy(p *PCB) {
	switch p.State {
	case Ready:
		global.ready.remove(p)
	case Blocked:
		global.blocked.remove(p)
	case Sleeping:
		global.sleeping.remove(p)
	}

	p.State = Zombie
	if global.current == p {
		global.current = nil
	}

	heap.FreeAligned(p.stackBottom)
	heap.FreeAligned(p.pageDirectory)
	global.processCount--
	heap.Free(uintptr(unsafe.Pointer(p)))
}

// ProcessBlock removes p from its current queue and appends it to the
// blocked queue. Blocking the running process is a suspension point: the
// scheduler is invoked to hand the CPU to the next ready process.
func ProcessBlock(p *PCB) {
	switch p.State {
	case Ready:
		global.ready.remove(p)
	case Sleeping:
		global.sleeping.remove(p)
	}
	p.State = Blocked
	global.blocked.appendFIFO(p)

	if p == global.current {
		Schedule()
	}
}

// ProcessUnblock moves p from the blocked queue back to the ready queue.
// Unblocking a process that is not currently blocked is a silent no-op.
func ProcessUnblock(p *PCB) {
	if p.State != Blocked {
		return
	}
	global.blocked.remove(p)
	p.State = Ready
	p.remainingSlice = global.quantum
	global.ready.insertByPriority(p)
}

// Current returns the running process, or nil if none is running.
func Current() *PCB { return global.current }

// Yield voluntarily hands the CPU to the ready-queue head, re-queueing the
// caller at its priority. Unlike a quantum expiry it carries no demotion: a
// process that gives up the CPU before its slice runs out keeps its tier,
// the same treatment an I/O-bound process gets when it blocks early. With
// an empty ready queue the caller simply keeps running.
func Yield() {
	cur := global.current

	if global.ready.empty() {
		return
	}

	next := global.ready.head
	global.ready.remove(next)

	if cur != nil {
		cur.State = Ready
		global.ready.insertByPriority(cur)
	}

	next.State = Running
	global.current = next
	dispatch(cur, next)
}

// TimerSleep moves the running process to the sleeping queue with a
// wake-tick deadline of the current tick plus ticks, then reschedules.
func TimerSleep(ticks uint64) {
	p := global.current
	if p == nil {
		return
	}
	p.wakeAt = global.tick + ticks
	p.State = Sleeping
	global.sleeping.appendFIFO(p)
	Schedule()
}

// SetPriority is the only way a process's priority moves up; the MLFQ
// policy itself only ever demotes.
func SetPriority(p *PCB, prio Priority) {
	p.Priority = prio
}

// Schedule runs one step of the multilevel feedback queue policy:
//
//  1. If the current process still has quantum left, just decrement it.
//  2. Otherwise demote the current process (if above Low) and refresh its
//     quantum.
//  3. Rotate the ready queue.
//  4. If the new head differs from the current process, switch to it.
//
// If the ready queue is empty, the running process (if any) simply keeps
// running uninterrupted rather than halting until the next interrupt.
func Schedule() {
	cur := global.current

	// A current process that has just parked itself (Sleeping via
	// TimerSleep, Blocked via ProcessBlock) is already linked into its
	// destination queue; it must neither consume slice, be demoted, nor be
	// re-inserted into ready. Only a still-Running current gets the full
	// policy treatment.
	running := cur != nil && cur.State == Running

	if running && cur.remainingSlice > 0 {
		cur.remainingSlice--
		return
	}

	if running {
		if cur.Priority > Low {
			cur.Priority--
		}
		cur.remainingSlice = global.quantum
	}

	global.ready.rotate()

	if global.ready.empty() {
		return
	}

	next := global.ready.head
	if next == cur {
		return
	}

	if running {
		// cur is the running process: per the RUNNING-is-never-queued
		// invariant it is not a member of ready and must not be passed
		// to remove, only inserted as the process re-enters Ready.
		cur.State = Ready
		global.ready.insertByPriority(cur)
		// Inserting cur moved the head we just rotated to; restore it.
		global.ready.head = next
	}

	global.ready.remove(next)
	next.State = Running
	global.current = next

	dispatch(cur, next)
}

// dispatch performs the actual context switch, recording the outgoing
// process's stack pointer (if any) and resuming the incoming one. A
// self-switch is a guaranteed no-op: contextSwitch is never invoked when
// cur == next.
func dispatch(cur, next *PCB) {
	if cur == next {
		return
	}

	var outSlot *uintptr
	if cur != nil {
		outSlot = &cur.regs.esp
	} else {
		var discard uintptr
		outSlot = &discard
	}

	contextSwitchFn(outSlot, next.regs.esp, next.pageDirectory)
}
