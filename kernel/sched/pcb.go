// Package sched implements process lifecycle management and the
// multilevel feedback queue that decides which process runs next. It is
// the top of the dependency stack: it allocates process state from the
// heap, asks the paging manager for an address space, and installs its
// own handlers into the interrupt core.
package sched

const maxNameLen = 31

// State is a process's position in its lifecycle.
type State uint8

const (
	// Ready means the process is waiting for the CPU in the ready queue.
	Ready State = iota
	// Running means the process currently holds the CPU; a running
	// process is never present in any queue.
	Running
	// Blocked means the process is waiting on an external event and sits
	// in the blocked queue until ProcessUnblock moves it back to ready.
	Blocked
	// Sleeping means the process is waiting for a wake-tick deadline and
	// sits in the sleeping queue.
	Sleeping
	// Zombie means the process has been destroyed; its PCB, stack and
	// address space have been released.
	Zombie
)

// Priority is one of the four MLFQ classes. Lower numeric value is lower
// priority; only SetPriority moves a process up.
type Priority uint8

const (
	Low Priority = iota
	Normal
	High
	Realtime
)

// savedRegs is the minimal register snapshot the scheduler needs to resume
// a process that is not currently running: the stack pointer doubles as
// the save slot for every other register, since contextSwitch spills them
// onto the process's own kernel stack before recording esp.
type savedRegs struct {
	esp    uintptr
	ebp    uintptr
	eip    uintptr
	eflags uint32
}

// PCB is one schedulable unit of execution.
type PCB struct {
	ID   uint32
	name [maxNameLen]byte
	nlen uint8

	State    State
	Priority Priority

	// remainingSlice counts down the scheduling steps left in the current
	// quantum while Ready or Running (one step per Schedule call, which
	// timerTick makes every quantumTicks ticks); wakeAt holds the tick to
	// wake at while Sleeping.
	// The source kernel this is modeled on overloads a single field for
	// both purposes; they are split here because they are never
	// meaningful at the same time.
	remainingSlice uint32
	wakeAt         uint64

	cumulativeRunTicks uint64

	regs savedRegs

	stackBottom uintptr
	stackTop    uintptr

	// pageDirectory is the physical (== virtual, identity-mapped) address
	// of this process's page-directory root, installed into CR3 on
	// dispatch.
	pageDirectory uintptr

	next, prev *PCB
}

// Name returns the process's short name.
func (p *PCB) Name() string {
	return string(p.name[:p.nlen])
}

func (p *PCB) setName(name string) {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	p.nlen = uint8(copy(p.name[:], name))
}
