package mem

import (
	"reflect"
	"unsafe"
)

// Memset fills size bytes starting at addr with value. Doubling the
// already-written prefix on each pass (instead of a plain byte loop) keeps
// the number of copy calls down to log2(size), which matters here since
// this runs on every freshly allocated page table.
func Memset(addr uintptr, value byte, size Size) {
	if size == 0 {
		return
	}

	target := *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(size),
		Cap:  int(size),
		Data: addr,
	}))

	target[0] = value
	for written := Size(1); written < size; written *= 2 {
		copy(target[written:], target[:written])
	}
}
