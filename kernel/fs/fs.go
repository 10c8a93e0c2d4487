// Package fs implements the placeholder filesystem collaborator the
// syscall gateway dispatches into. It is intentionally thin: a
// fixed-size file-descriptor table backed by growable in-memory byte
// buffers, with stdio pre-opened at fd 0/1/2. A path given to Open is
// recorded but never resolved: there is no inode tree, no directory
// structure, and nothing persists across Init. A real disk-backed
// filesystem is out of scope for this kernel.
package fs

import "github.com/zizidong/custom-linux/kernel/hal"

// OpenMode mirrors the low bits of the original filesystem's open-mode
// flags; this stub records the mode on each descriptor but never consults
// it (stdio routing is decided by descriptor number).
type OpenMode uint32

const (
	ModeRead  OpenMode = 1 << 0
	ModeWrite OpenMode = 1 << 1
)

// maxFiles bounds the descriptor table, matching the fixed-size
// MAX_FILES table this kernel's filesystem is modeled on.
const maxFiles = 1024

// firstUserFD is the first descriptor number handed out by Open; 0-2 are
// reserved for the pre-opened stdio handles.
const firstUserFD = 3

type file struct {
	inUse  bool
	path   string
	mode   OpenMode
	offset int
	data   []byte
}

var table [maxFiles]file

// Init resets the descriptor table and re-installs stdin/stdout/stderr as
// pre-opened, refcounted-in-spirit (but not actually refcounted, since
// this kernel never dup()s a descriptor) stdio handles.
func Init() {
	for i := range table {
		table[i] = file{}
	}
	table[0] = file{inUse: true, mode: ModeRead}
	table[1] = file{inUse: true, mode: ModeWrite}
	table[2] = file{inUse: true, mode: ModeWrite}
}

// Open allocates the first free descriptor at or above firstUserFD and
// backs it with an empty in-memory buffer. path is recorded on the
// descriptor but otherwise unused: this stub has no directory tree to
// resolve it against. It returns -1 if every slot in the fixed-size table
// is in use.
func Open(path string, mode OpenMode) int32 {
	for i := firstUserFD; i < maxFiles; i++ {
		if !table[i].inUse {
			table[i] = file{inUse: true, path: path, mode: mode}
			return int32(i)
		}
	}
	return -1
}

// Close releases fd. Closing an unopened or out-of-range descriptor is
// reported as failure (-1), not silently ignored: unlike the allocator's
// free-of-unknown-pointer policy, a filesystem close of a bad fd is a
// caller bug the syscall layer surfaces through its return value.
func Close(fd int32) int32 {
	f, ok := slot(fd)
	if !ok || !f.inUse {
		return -1
	}
	f.inUse = false
	f.data = nil
	f.offset = 0
	return 0
}

// Read copies up to len(buf) bytes from fd's backing buffer starting at
// its current offset, advances the offset, and returns the number of
// bytes copied, or -1 if fd is not open. Stdio fds have no input source
// on this target and always return 0.
func Read(fd int32, buf []byte) int32 {
	f, ok := slot(fd)
	if !ok || !f.inUse {
		return -1
	}
	if fd < firstUserFD {
		return 0
	}

	n := copy(buf, f.data[f.offset:])
	f.offset += n
	return int32(n)
}

// Write copies buf into fd's backing buffer at its current offset,
// growing the buffer as needed, advances the offset, and returns the
// number of bytes written, or -1 if fd is not open. Writes to stdout/
// stderr go to the active console instead of a backing buffer; a write to
// stdin returns -1.
func Write(fd int32, buf []byte) int32 {
	f, ok := slot(fd)
	if !ok || !f.inUse {
		return -1
	}
	if fd == 1 || fd == 2 {
		hal.ActiveConsole.Write(buf)
		return int32(len(buf))
	}
	if fd == 0 {
		return -1
	}

	need := f.offset + len(buf)
	if need > len(f.data) {
		grown := make([]byte, need)
		copy(grown, f.data)
		f.data = grown
	}
	n := copy(f.data[f.offset:], buf)
	f.offset += n
	return int32(n)
}

func slot(fd int32) (*file, bool) {
	if fd < 0 || int(fd) >= maxFiles {
		return nil, false
	}
	return &table[fd], true
}
