package backend

import (
	"fmt"

	"github.com/afnanksalal/frag/instructions"
)

// Builder assembles machine code for a single function. It models
// expression evaluation as a two-register (rax/rbx) stack machine
// operating on the hardware stack: every op documented below leaves
// exactly the result count spec.md's lowering table says it should on
// top of that stack, so callers can chain them the way they'd chain
// calls against a real SSA builder even though nothing here is SSA.
type Builder struct {
	m    *Module
	id   FuncID
	code asm

	patchAt   int // byte offset of the prologue's `sub rsp, imm32` operand
	frameSize int32
	nextSlot  int32 // next negative byte offset to hand out
	slotBytes int32 // width CreateStackSlot advances nextSlot by

	depth int // number of 8-byte words pushed since the post-prologue baseline

	trace *instructions.Trace // optional; nil unless tracing is enabled
}

func newBuilder(m *Module, id FuncID, trace *instructions.Trace, slotBytes int32) *Builder {
	b := &Builder{m: m, id: id, trace: trace, slotBytes: slotBytes}
	b.patchAt = b.code.prologue()
	return b
}

func (b *Builder) record(op instructions.Opcode, detail string) {
	if b.trace != nil {
		b.trace.Record(op, detail)
	}
}

// CreateStackSlot allocates a local of b.slotBytes width (spec.md §4.3's
// default is 8; config.Config.StackSlotBytes widens it) for a LetDecl.
func (b *Builder) CreateStackSlot() Slot {
	b.nextSlot -= b.slotBytes
	if -b.nextSlot > b.frameSize {
		b.frameSize = -b.nextSlot
	}
	b.record(instructions.StackAlloc, fmt.Sprintf("slot@%d", b.nextSlot))
	return Slot{offset: int(b.nextSlot)}
}

// Iconst pushes a 64-bit signed constant.
func (b *Builder) Iconst(n int64) Value {
	b.code.movImm64(regRAX, n)
	b.code.pushReg(regRAX)
	b.depth++
	b.record(instructions.Const, fmt.Sprintf("%d", n))
	return Value{}
}

// StackStore writes the current top-of-stack value into slot without
// consuming it - per spec.md §4.3 a LetDecl's statement value is the
// value that was stored, so leaving it in place is exactly what's
// needed.
func (b *Builder) StackStore(_ Value, slot Slot) {
	b.code.peekTop()
	b.code.storeSlot(int32(slot.offset))
	b.record(instructions.StackStore, fmt.Sprintf("slot@%d", slot.offset))
}

// StackLoad reads slot and pushes its value.
func (b *Builder) StackLoad(slot Slot) Value {
	b.code.loadSlot(int32(slot.offset))
	b.code.pushReg(regRAX)
	b.depth++
	b.record(instructions.StackLoad, fmt.Sprintf("slot@%d", slot.offset))
	return Value{}
}

// popPair pops the two most recently pushed values into rax (the
// left/earlier operand) and rbx (the right/later operand).
func (b *Builder) popPair() {
	b.code.popReg(regRBX)
	b.code.popReg(regRAX)
	b.depth -= 2
}

func (b *Builder) pushResult() {
	b.code.pushReg(regRAX)
	b.depth++
}

// Iadd, Isub, Imul, Sdiv, Srem implement the five arithmetic
// operators per spec.md's lowering table.
func (b *Builder) Iadd(_, _ Value) Value {
	b.popPair()
	b.code.addRaxRbx()
	b.pushResult()
	b.record(instructions.Add, "")
	return Value{}
}

func (b *Builder) Isub(_, _ Value) Value {
	b.popPair()
	b.code.subRaxRbx()
	b.pushResult()
	b.record(instructions.Sub, "")
	return Value{}
}

func (b *Builder) Imul(_, _ Value) Value {
	b.popPair()
	b.code.imulRaxRbx()
	b.pushResult()
	b.record(instructions.Mul, "")
	return Value{}
}

func (b *Builder) Sdiv(_, _ Value) Value {
	b.popPair()
	b.code.cqo()
	b.code.idivRbx()
	b.pushResult()
	b.record(instructions.Div, "")
	return Value{}
}

func (b *Builder) Srem(_, _ Value) Value {
	b.popPair()
	b.code.cqo()
	b.code.idivRbx()
	// idiv leaves the remainder in rdx; move it where pushResult
	// expects it (rax) before pushing.
	b.code.emit(0x48, 0x89, 0xD0) // mov rax, rdx
	b.pushResult()
	b.record(instructions.Mod, "")
	return Value{}
}

// Icmp implements the six comparison operators, zero-extending the
// 1-bit result to 64 bits as spec.md §4.3 requires.
func (b *Builder) Icmp(cond IntCC, _, _ Value) Value {
	b.popPair()
	b.code.cmpRaxRbx()
	b.code.setCCAlAndExtendRax(cond)
	b.pushResult()
	b.record(instructions.Cmp, fmt.Sprintf("cond=%d", cond))
	return Value{}
}

// Uextend zero-extends a 1-bit value to 64 bits. Every op in this
// backend that produces a boolean already zero-extends it as part of
// its own encoding (setCC is always immediately followed by movzx),
// so this is a pass-through kept for façade-contract completeness -
// a backend whose Icmp returned a genuine 1-bit value would need a
// real instruction here.
func (b *Builder) Uextend(v Value) Value {
	b.record(instructions.Uextend, "")
	return v
}

// booleanizeRax / booleanizeRbx turn a raw operand into 0/1 in place.
func (b *Builder) booleanizeRax() {
	b.code.testRaxRax()
	b.code.setNeAlAndExtendRax()
}

func (b *Builder) booleanizeRbx() {
	b.code.testRbxRbx()
	b.code.setNeBlAndExtendRbx()
}

// Band, Bor implement the non-short-circuit && and || per spec.md
// §4.3: both operands are always evaluated (the caller, compiler.go,
// is what guarantees that by lowering both sides unconditionally
// before calling here), each is compared to zero, then combined.
func (b *Builder) Band(_, _ Value) Value {
	b.popPair()
	b.booleanizeRax()
	b.booleanizeRbx()
	b.code.andRaxRbx()
	b.pushResult()
	b.record(instructions.And, "")
	return Value{}
}

func (b *Builder) Bor(_, _ Value) Value {
	b.popPair()
	b.booleanizeRax()
	b.booleanizeRbx()
	b.code.orRaxRbx()
	b.pushResult()
	b.record(instructions.Or, "")
	return Value{}
}

// Neg implements unary '-'.
func (b *Builder) Neg(_ Value) Value {
	b.code.popReg(regRAX)
	b.depth--
	b.code.negRax()
	b.pushResult()
	b.record(instructions.Neg, "")
	return Value{}
}

// Not implements unary '!' by comparing to zero and zero-extending.
func (b *Builder) Not(_ Value) Value {
	b.code.popReg(regRAX)
	b.depth--
	b.code.testRaxRax()
	b.code.setEqAlAndExtendRax()
	b.pushResult()
	b.record(instructions.Uextend, "not")
	return Value{}
}

// DropTop discards a pending statement value that turned out not to
// be the program's last one.
func (b *Builder) DropTop() {
	b.code.dropTop()
	b.depth--
}

// Call invokes the import bound to id with args already evaluated and
// sitting on top of the evaluation stack (most recent push is the
// last argument). Only arity 1 is meaningful in this language
// (print); anything else is a façade-level misuse, not a
// compiler.go-reachable state, so it panics rather than threading an
// error through every builder method's signature.
func (b *Builder) Call(id FuncID, args []Value) Value {
	if len(args) != 1 {
		panic("backend: Call only supports a single argument in this language")
	}

	target, ok := b.m.importTarget(id)
	if !ok {
		panic("backend: Call referenced an unknown import")
	}

	b.code.popRdi()
	b.depth--

	// The SysV ABI requires rsp % 16 == 0 immediately before `call`.
	// The post-prologue baseline (depth 0) sits at rsp % 16 == 8 -
	// alignFrame keeps the prologue's frame subtraction an odd
	// multiple of 8 specifically so that holds - and each push/pop
	// toggles it, so rsp % 16 == 8 again whenever depth is even.
	padded := b.depth%2 == 0
	if padded {
		b.code.subRsp8()
	}
	b.code.callAbs(target)
	if padded {
		b.code.addRsp8()
	}

	b.pushResult()
	b.record(instructions.Call, fmt.Sprintf("func#%d", id))
	return Value{}
}

// Return finalizes the function body: hasValue selects between
// returning the pending last statement value and returning 0 for an
// empty program, then emits the epilogue and back-patches the frame
// size the prologue reserved.
func (b *Builder) Return(hasValue bool) {
	if hasValue {
		b.code.popReg(regRAX)
		b.depth--
	} else {
		b.code.movImm64(regRAX, 0)
	}
	b.record(instructions.Return, "")

	frame := alignFrame(b.frameSize)
	b.code.patchImm32(b.patchAt, frame)
	b.code.epilogue()
}

// alignFrame rounds n up so that, combined with the 8 bytes `push
// rbp` subtracts, the post-prologue rsp lands on the same 16-byte
// alignment class the function was entered with.
func alignFrame(n int32) int32 {
	if n <= 0 {
		return 8
	}
	rounded := ((n + 15) / 16) * 16
	return rounded + 8
}
