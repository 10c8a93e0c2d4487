// Package syscall registers the software-interrupt 0x80 ABI table against
// the interrupt core's syscall gateway, wiring each numbered entry to the
// filesystem collaborator (kernel/fs) or the scheduler. It owns no state of its own: Install is idempotent and safe
// to call once during boot.
package syscall

import (
	"reflect"
	"unsafe"

	"github.com/zizidong/custom-linux/kernel/fs"
	"github.com/zizidong/custom-linux/kernel/irq"
	"github.com/zizidong/custom-linux/kernel/sched"
)

const (
	numRead  = 0
	numWrite = 1
	numOpen  = 2
	numClose = 3
	numFork  = 4
	numExec  = 5
	numExit  = 6
)

// maxPathLen bounds the number of bytes scanned for a NUL terminator when
// reading a path argument; a path longer than this is treated as
// malformed input rather than risking an unbounded scan over whatever
// memory happens to follow a bad pointer.
const maxPathLen = 4096

// exitFn is substituted in tests: exercising the real ProcessDestroy path
// requires a live scheduler process, which most syscall-table tests have
// no need to set up.
var exitFn = func() {
	if p := sched.Current(); p != nil {
		sched.ProcessDestroy(p)
	}
	sched.Schedule()
}

// Install registers the syscall ABI table with the interrupt core. It
// must run after irq.Init and fs.Init and before interrupts are enabled.
func Install() {
	irq.RegisterSyscall(numRead, sysRead)
	irq.RegisterSyscall(numWrite, sysWrite)
	irq.RegisterSyscall(numOpen, sysOpen)
	irq.RegisterSyscall(numClose, sysClose)
	irq.RegisterSyscall(numFork, sysFork)
	irq.RegisterSyscall(numExec, sysExec)
	irq.RegisterSyscall(numExit, sysExit)
}

// bytesAt returns a []byte view over size bytes starting at addr, without
// copying. This gateway has no user/kernel address-space separation, so a
// syscall argument pointer is trusted as-is and read in place.
func bytesAt(addr uintptr, size uint32) []byte {
	if addr == 0 || size == 0 {
		return nil
	}
	return *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Data: addr,
		Len:  int(size),
		Cap:  int(size),
	}))
}

// cStringAt reads a NUL-terminated path string starting at addr.
func cStringAt(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	raw := bytesAt(addr, maxPathLen)
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

func sysRead(fdArg, bufAddr, size uint32) int32 {
	return fs.Read(int32(fdArg), bytesAt(uintptr(bufAddr), size))
}

func sysWrite(fdArg, bufAddr, size uint32) int32 {
	return fs.Write(int32(fdArg), bytesAt(uintptr(bufAddr), size))
}

func sysOpen(pathAddr, mode, _ uint32) int32 {
	return fs.Open(cStringAt(uintptr(pathAddr)), fs.OpenMode(mode))
}

func sysClose(fdArg, _, _ uint32) int32 {
	return fs.Close(int32(fdArg))
}

// sysFork is not yet implemented; it always fails.
func sysFork(_, _, _ uint32) int32 {
	return -1
}

// sysExec is not yet implemented; it always fails.
func sysExec(_, _, _ uint32) int32 {
	return -1
}

// sysExit tears down the calling process and reschedules. When another
// process is ready it never returns to the caller. When the ready queue is
// empty the reschedule returns, and sysExit hands -1 back to the gateway.
func sysExit(_, _, _ uint32) int32 {
	exitFn()
	return -1
}
