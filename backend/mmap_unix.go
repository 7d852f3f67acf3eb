//go:build unix

package backend

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// codeRegion is one mmap'd executable code page, owning the bytes
// backing zero or more finalized functions (this backend finalizes
// functions one at a time, each getting its own region, mirroring how
// Cranelift-JIT hands back one finalized pointer per declared
// function in the original program).
type codeRegion struct {
	mem []byte
}

// allocExecutable mmaps a private, anonymous region large enough for
// code, copies code into it, then mprotects it from RW to RX. Never
// mapping a page both writable and executable at once is the W^X
// discipline spec.md §4.4 calls for.
func allocExecutable(code []byte) (*codeRegion, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("backend: cannot finalize empty function body")
	}

	size := pageAlign(len(code))
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("backend: mmap: %w", err)
	}

	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("backend: mprotect RX: %w", err)
	}

	return &codeRegion{mem: mem}, nil
}

func (r *codeRegion) entry() uintptr {
	return uintptr(unsafe.Pointer(&r.mem[0]))
}

func (r *codeRegion) release() error {
	if r.mem == nil {
		return nil
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	return err
}

func pageAlign(n int) int {
	const pageSize = 4096
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}
