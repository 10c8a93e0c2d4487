// Package early implements a minimal, allocation-free Printf that the
// kernel can call from the moment hal.ActiveConsole is wired up, long
// before anything resembling a working heap exists.
package early

import "github.com/zizidong/custom-linux/kernel/hal"

var (
	tagMissingArg = []byte("(MISSING)")
	tagBadType    = []byte("%!(WRONGTYPE)")
	tagNoVerb     = []byte("%!(NOVERB)")
	tagExtraArgs  = []byte("%!(EXTRA)")
	tagTrue       = []byte("true")
	tagFalse      = []byte("false")
)

// Printf writes format to hal.ActiveConsole, substituting args for the
// recognized verbs. It never allocates and never touches the heap, which
// makes it safe to call before the allocator has been initialized.
//
// Supported verbs:
//
//	%s  string or []byte, left-padded with spaces to an optional width
//	%c  a single byte, printed as a character
//	%o  integer, base 8, zero-padded to an optional width
//	%d  integer, base 10, space-padded to an optional width
//	%x  integer, base 16 (lower-case), zero-padded to an optional width,
//	    then prefixed with "0x"
//	%t  bool, printed as "true"/"false"
//	%%  a literal percent sign
//
// Pointers (%p) are deliberately unsupported: formatting one would need the
// reflect package, which pulls in runtime.convT2E / runtime.newobject and
// therefore an allocator we may not have yet.
func Printf(format string, args ...interface{}) {
	w := writer{args: args}
	n := len(format)

	literalStart := 0
	for i := 0; i < n; i++ {
		if format[i] != '%' {
			continue
		}

		if literalStart < i {
			hal.ActiveConsole.Write([]byte(format[literalStart:i]))
		}

		consumed := w.emitVerb(format[i+1:])
		i += consumed
		literalStart = i + 1
	}

	if literalStart < n {
		hal.ActiveConsole.Write([]byte(format[literalStart:n]))
	}

	for ; w.nextArg < len(args); w.nextArg++ {
		hal.ActiveConsole.Write(tagExtraArgs)
	}
}

// writer tracks the positional argument cursor across the verbs found in a
// single Printf call.
type writer struct {
	args    []interface{}
	nextArg int
}

// emitVerb parses and renders a single "%..." sequence found at the start of
// rest (the leading '%' already consumed) and returns how many bytes of
// rest it consumed, not counting the leading '%'.
func (w *writer) emitVerb(rest string) int {
	width := 0
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c >= '0' && c <= '9':
			width = width*10 + int(c-'0')
			continue
		case c == '%':
			hal.ActiveConsole.Write([]byte{'%'})
			return i + 1
		case c == 's' || c == 'c' || c == 'd' || c == 'o' || c == 'x' || c == 't':
			if w.nextArg >= len(w.args) {
				hal.ActiveConsole.Write(tagMissingArg)
				return i + 1
			}
			arg := w.args[w.nextArg]
			w.nextArg++
			switch c {
			case 's':
				writeString(arg, width)
			case 'c':
				writeChar(arg)
			case 't':
				writeBool(arg)
			default:
				writeInt(arg, verbBase(c), width)
			}
			return i + 1
		default:
			hal.ActiveConsole.Write(tagNoVerb)
			return i
		}
	}
	hal.ActiveConsole.Write(tagNoVerb)
	return len(rest)
}

func verbBase(verb byte) int {
	switch verb {
	case 'o':
		return 8
	case 'x':
		return 16
	default:
		return 10
	}
}

func writeBool(v interface{}) {
	b, ok := v.(bool)
	if !ok {
		hal.ActiveConsole.Write(tagBadType)
		return
	}
	if b {
		hal.ActiveConsole.Write(tagTrue)
	} else {
		hal.ActiveConsole.Write(tagFalse)
	}
}

func writeChar(v interface{}) {
	switch c := v.(type) {
	case byte:
		hal.ActiveConsole.WriteByte(c)
	case rune:
		hal.ActiveConsole.WriteByte(byte(c))
	default:
		hal.ActiveConsole.Write(tagBadType)
	}
}

func writeString(v interface{}, width int) {
	var s []byte
	switch casted := v.(type) {
	case string:
		s = []byte(casted)
	case []byte:
		s = casted
	default:
		hal.ActiveConsole.Write(tagBadType)
		return
	}
	for i := len(s); i < width; i++ {
		hal.ActiveConsole.WriteByte(' ')
	}
	hal.ActiveConsole.Write(s)
}

// writeInt renders v (any built-in integer type) in the given base,
// left-padding to width with spaces (base 10) or zeroes (base 8/16).
func writeInt(v interface{}, base, width int) {
	uval, neg, ok := toUint64(v)
	if !ok {
		hal.ActiveConsole.Write(tagBadType)
		return
	}

	var digits [24]byte
	pos := len(digits)
	for {
		rem := uval % uint64(base)
		if rem < 10 {
			pos--
			digits[pos] = byte(rem) + '0'
		} else {
			pos--
			digits[pos] = byte(rem-10) + 'a'
		}
		uval /= uint64(base)
		if uval == 0 {
			break
		}
	}

	digitCount := len(digits) - pos
	padCh := byte(' ')
	if base != 10 {
		padCh = '0'
	}
	for pad := digitCount; pad < width; pad++ {
		pos--
		digits[pos] = padCh
	}

	if neg {
		if pos > 0 && digits[pos] == ' ' {
			pos++
			digits[pos-1] = '-'
		} else {
			pos--
			digits[pos] = '-'
		}
	}

	if base == 16 {
		pos -= 2
		digits[pos] = '0'
		digits[pos+1] = 'x'
	}

	hal.ActiveConsole.Write(digits[pos:])
}

// toUint64 normalizes any built-in integer type to its unsigned magnitude,
// reporting whether the original value was negative.
func toUint64(v interface{}) (val uint64, neg bool, ok bool) {
	switch casted := v.(type) {
	case uint8:
		return uint64(casted), false, true
	case uint16:
		return uint64(casted), false, true
	case uint32:
		return uint64(casted), false, true
	case uint64:
		return casted, false, true
	case uintptr:
		return uint64(casted), false, true
	case int:
		return absUint64(int64(casted))
	case int8:
		return absUint64(int64(casted))
	case int16:
		return absUint64(int64(casted))
	case int32:
		return absUint64(int64(casted))
	case int64:
		return absUint64(casted)
	default:
		return 0, false, false
	}
}

func absUint64(v int64) (uint64, bool, bool) {
	if v < 0 {
		return uint64(-v), true, true
	}
	return uint64(v), false, true
}
