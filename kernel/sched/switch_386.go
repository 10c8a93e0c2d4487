package sched

// contextSwitch saves the stack pointer of the currently executing process
// into *outSP, switches to the incoming process's stack and address space,
// and resumes it. It never returns into its caller directly: it returns
// only when some later switch resumes outSP's process again, at which
// point execution continues right after the call site as if it were a
// normal function return.
//
// It must be called with interrupts already disabled. It does not check for
// a self-switch itself; dispatch never calls it with the outgoing and
// incoming process being the same.
func contextSwitch(outSP *uintptr, inSP uintptr, inCR3 uintptr)
