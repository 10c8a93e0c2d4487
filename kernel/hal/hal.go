// Package hal exposes the small set of hardware-abstraction hooks that the
// rest of the kernel depends on without needing to know about the concrete
// driver backing them.
package hal

// Console is the minimal sink every early-boot and diagnostic writer targets.
// It intentionally mirrors the low-level surface a text-mode or serial
// console offers rather than the richer io.Writer contract, since the
// caller may run before the heap allocator (and therefore before slices of
// unknown provenance) can be trusted.
type Console interface {
	WriteByte(b byte)
	Write(p []byte)
}

// nullConsole discards everything written to it. It is installed as the
// default ActiveConsole so that calls made before SetConsole are harmless
// instead of nil-dereferencing.
type nullConsole struct{}

func (nullConsole) WriteByte(byte) {}
func (nullConsole) Write([]byte)   {}

// ActiveConsole is the console every kernel log line is written to. Boot
// code replaces it once a real driver (serial line, VGA text buffer, ...)
// has been brought up.
var ActiveConsole Console = nullConsole{}

// SetConsole installs c as the active console. Passing nil restores the
// no-op console.
func SetConsole(c Console) {
	if c == nil {
		ActiveConsole = nullConsole{}
		return
	}
	ActiveConsole = c
}
