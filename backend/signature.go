package backend

// Type is a value type in the backend's narrow type system. The
// language only ever operates on 64-bit signed integers (booleans are
// 0/1 in that same domain), so I64 is the only inhabitant - it exists
// as a named type rather than being elided entirely so the Signature
// shape mirrors what a real code-generation library's API looks like.
type Type int

// I64 is the only value type this backend supports.
const I64 Type = iota

// Signature describes a function's parameter and return types.
type Signature struct {
	Params  []Type
	Returns []Type
}

// FuncID identifies a function (imported or locally defined) within a
// Module.
type FuncID uint32

// IntCC is a signed-integer comparison condition, named the way
// Cranelift names them so a reader coming from the original program's
// codegen.rs recognizes the six variants immediately.
type IntCC int

const (
	Equal IntCC = iota
	NotEqual
	SignedLessThan
	SignedLessThanOrEqual
	SignedGreaterThan
	SignedGreaterThanOrEqual
)

// Value is a handle to a computed result. This backend evaluates
// expressions on the hardware stack (push/pop), so a Value carries no
// data of its own - it exists purely so Builder's API reads the way a
// register-based IR builder's would, and so callers don't need to
// know that every operation actually happens to leave its result on
// top of the machine stack.
type Value struct{}

// Slot identifies a stack-allocated local.
type Slot struct {
	offset int // byte offset from rbp, always negative
}
