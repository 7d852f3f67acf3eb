// Package backend is the façade described in spec.md §4.4: it wraps
// everything architecture-specific behind a narrow surface so the
// rest of this repo (package compiler) never has to know it's talking
// to a hand-rolled amd64 encoder rather than a real code-generation
// library.
//
// The original program this repo was modelled on binds the same
// contract to Cranelift (see original_source/src/codegen.rs). No
// Cranelift-equivalent package exists anywhere in the examples this
// repo was built from, so this façade is backed by the alternative
// spec.md §9 names explicitly: "a custom x86-64 emitter." It mmaps a
// writable buffer, encodes machine code into it directly, flips it to
// executable (W^X) with mprotect, and hands back a bare function
// pointer - the same hand-off shape Cranelift-JIT provides, minus the
// library.
package backend
