package kernel

import (
	"github.com/zizidong/custom-linux/kernel/cpu"
	"github.com/zizidong/custom-linux/kernel/kfmt/early"
)

var (
	// cpuHaltFn is substituted by tests so Panic can be exercised without
	// actually halting the test process.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic prints diagnostic information about err (when non-nil) and halts the
// CPU. Panic never returns. Kmain calls it when a boot step fails; the
// interrupt core's unhandled-exception and page-fault paths do not call
// it, they print their own diagnostics and halt directly.
func Panic(err interface{}) {
	var e *Error

	switch v := err.(type) {
	case *Error:
		e = v
	case string:
		errRuntimePanic.Message = v
		e = errRuntimePanic
	case error:
		errRuntimePanic.Message = v.Error()
		e = errRuntimePanic
	}

	early.Printf("\n--------------------------------\n")
	if e != nil {
		early.Printf("[%s] unrecoverable error: %s\n", e.Module, e.Message)
	}
	early.Printf("*** kernel panic: system halted ***\n")
	early.Printf("--------------------------------\n")

	cpuHaltFn()
}
