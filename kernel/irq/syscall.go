package irq

const syscallVector = 0x80

const maxSyscalls = 256

// Syscall implements one entry of the syscall table: given the ebx/ecx/edx
// argument registers, it returns the value to place back in eax.
type Syscall func(arg1, arg2, arg3 uint32) int32

var syscallTable [maxSyscalls]Syscall

// RegisterSyscall installs fn at number, overwriting whatever was there.
func RegisterSyscall(number uint8, fn Syscall) {
	syscallTable[number] = fn
}

// syscallGate dispatches by eax into the syscall table, passing
// ebx/ecx/edx as the up-to-three integer arguments, and writes the result
// back into eax. An unregistered number returns -1.
func syscallGate(ctx *Context) {
	number := ctx.EAX
	if number >= maxSyscalls || syscallTable[number] == nil {
		var errVal int32 = -1
		ctx.EAX = uint32(errVal)
		return
	}

	result := syscallTable[number](ctx.EBX, ctx.ECX, ctx.EDX)
	ctx.EAX = uint32(result)
}
