// Package hostfn exposes the one function this language can call out
// to the host for: print. spec.md §4.6 requires it to behave exactly
// like the reference implementation's `print_i64` (see
// original_source/src/main.rs): print the argument followed by a
// newline, then return it unchanged so `print(x)` still evaluates to
// x as a statement value.
//
// The JIT backend (package backend) emits a bare `call` to an
// absolute address - there is no linker, loader or symbol table
// involved - so that address has to be a genuine C-ABI function
// pointer. Go's own calling convention for ordinary functions isn't
// one, so this package uses cgo to mint one: goPrintI64 is exported
// to C, and PrintI64Addr returns the C-callable address of a small
// shim that forwards to it.
package hostfn

/*
#include <stdint.h>

extern int64_t goPrintI64(int64_t);

static int64_t print_i64_shim(int64_t x) {
	return goPrintI64(x);
}

static void *print_i64_addr(void) {
	return (void *)print_i64_shim;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

//export goPrintI64
func goPrintI64(x C.int64_t) C.int64_t {
	fmt.Println(int64(x))
	return x
}

// PrintI64Addr returns the C-ABI-callable address of print_i64,
// suitable for backend.Module.DeclareImport.
func PrintI64Addr() unsafe.Pointer {
	return C.print_i64_addr()
}
