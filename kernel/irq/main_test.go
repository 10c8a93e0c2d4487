package irq

import (
	"os"
	"testing"
)

// TestMain replaces every privileged primitive (port I/O, LIDT, CLI/STI)
// with a no-op default for the whole package: these tests run as an
// ordinary hosted process, where executing any of them would fault
// immediately outside ring 0.
func TestMain(m *testing.M) {
	loadIDTRFn = func(uintptr) {}
	outbFn = func(uint16, uint8) {}
	inbFn = func(uint16) uint8 { return 0 }
	saveAndDisableFn = func() bool { return false }
	restoreInterruptsFn = func(bool) {}
	os.Exit(m.Run())
}
