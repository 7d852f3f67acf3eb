package backend

import "encoding/binary"

// amd64 register encodings used by this encoder. Only rax, rbx, rdx,
// rdi, rbp and rsp ever appear - the evaluation model is a two-register
// stack machine (rax/rbx), rdx is touched only by cqo/idiv and the
// remainder move after them, and rdi serves the one calling convention
// this backend needs to honor (passing print_i64 its single argument).
const (
	regRAX = 0
	regRBX = 3
	regRSP = 4
	regRBP = 5
	regRDI = 7
)

// asm is a tiny in-order byte emitter. It has no notion of labels or
// relocations beyond the one backpatch the prologue needs (the stack
// frame size isn't known until every let-binding has been seen).
type asm struct {
	buf []byte
}

func (a *asm) emit(bs ...byte) {
	a.buf = append(a.buf, bs...)
}

func (a *asm) emitImm32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	a.buf = append(a.buf, b[:]...)
}

func (a *asm) emitImm64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	a.buf = append(a.buf, b[:]...)
}

func (a *asm) len() int { return len(a.buf) }

// patchImm32 overwrites a previously-emitted imm32 operand in place,
// used to back-fill the frame size once it's known.
func (a *asm) patchImm32(at int, v int32) {
	binary.LittleEndian.PutUint32(a.buf[at:at+4], uint32(v))
}

// --- function framing ---

// pushReg / popReg: 0x50+r / 0x58+r.
func (a *asm) pushReg(r byte) { a.emit(0x50 + r) }
func (a *asm) popReg(r byte)  { a.emit(0x58 + r) }

// prologue emits `push rbp; mov rbp, rsp; sub rsp, 0` (placeholder)
// and returns the byte offset of the imm32 operand to patch once the
// frame size is known.
func (a *asm) prologue() (patchAt int) {
	a.pushReg(regRBP)               // push rbp
	a.emit(0x48, 0x89, 0xE5)        // mov rbp, rsp
	a.emit(0x48, 0x81, 0xEC)        // sub rsp, imm32
	patchAt = a.len()
	a.emitImm32(0)
	return patchAt
}

// epilogue emits `mov rsp, rbp; pop rbp; ret`.
func (a *asm) epilogue() {
	a.emit(0x48, 0x89, 0xEC) // mov rsp, rbp
	a.popReg(regRBP)         // pop rbp
	a.emit(0xC3)             // ret
}

// --- constants / stack slots ---

// movImm64 emits `mov r64, imm64` (the movabs form).
func (a *asm) movImm64(r byte, v int64) {
	a.emit(0x48, 0xB8+r)
	a.emitImm64(v)
}

// peekTop emits `mov rax, [rsp]` - read the top of the evaluation
// stack without popping it.
func (a *asm) peekTop() {
	a.emit(0x48, 0x8B, 0x04, 0x24)
}

// storeSlot emits `mov [rbp+disp], rax`, choosing the 8-bit or 32-bit
// displacement form depending on magnitude.
func (a *asm) storeSlot(disp int32) {
	if disp >= -128 && disp <= 127 {
		a.emit(0x48, 0x89, 0x45, byte(int8(disp)))
		return
	}
	a.emit(0x48, 0x89, 0x85)
	a.emitImm32(disp)
}

// loadSlot emits `mov rax, [rbp+disp]`.
func (a *asm) loadSlot(disp int32) {
	if disp >= -128 && disp <= 127 {
		a.emit(0x48, 0x8B, 0x45, byte(int8(disp)))
		return
	}
	a.emit(0x48, 0x8B, 0x85)
	a.emitImm32(disp)
}

// --- arithmetic (rax, rbx) -> rax ---

func (a *asm) addRaxRbx() { a.emit(0x48, 0x01, 0xD8) } // add rax, rbx
func (a *asm) subRaxRbx() { a.emit(0x48, 0x29, 0xD8) } // sub rax, rbx
func (a *asm) imulRaxRbx() {
	a.emit(0x48, 0x0F, 0xAF, 0xC3) // imul rax, rbx
}
func (a *asm) cqo()       { a.emit(0x48, 0x99) }       // sign-extend rax into rdx:rax
func (a *asm) idivRbx()   { a.emit(0x48, 0xF7, 0xFB) } // idiv rbx
func (a *asm) negRax()    { a.emit(0x48, 0xF7, 0xD8) } // neg rax
func (a *asm) andRaxRbx() { a.emit(0x48, 0x21, 0xD8) } // and rax, rbx
func (a *asm) orRaxRbx()  { a.emit(0x48, 0x09, 0xD8) } // or rax, rbx

// --- comparisons ---

func (a *asm) cmpRaxRbx() { a.emit(0x48, 0x39, 0xD8) } // cmp rax, rbx

// testRaxRax / testRbxRbx set ZF when the register is zero.
func (a *asm) testRaxRax() { a.emit(0x48, 0x85, 0xC0) }
func (a *asm) testRbxRbx() { a.emit(0x48, 0x85, 0xDB) }

// setCC writes the one-byte SETcc opcode for cond into al, followed
// by movzx rax, al to zero-extend the result to 64 bits.
func (a *asm) setCCAlAndExtendRax(cond IntCC) {
	a.emit(0x0F, setccOpcode(cond), 0xC0) // setCC al
	a.emit(0x48, 0x0F, 0xB6, 0xC0)        // movzx rax, al
}

// setNeBlAndExtendRbx booleanizes rbx in place (used by &&/||).
func (a *asm) setNeBlAndExtendRbx() {
	a.emit(0x0F, 0x95, 0xC3) // setne bl
	a.emit(0x48, 0x0F, 0xB6, 0xDB)
}

// setNeAlAndExtendRax booleanizes rax in place.
func (a *asm) setNeAlAndExtendRax() {
	a.emit(0x0F, 0x95, 0xC0) // setne al
	a.emit(0x48, 0x0F, 0xB6, 0xC0)
}

// setEqAlAndExtendRax: rax = (rax == 0) ? 1 : 0, used for unary '!'.
func (a *asm) setEqAlAndExtendRax() {
	a.emit(0x0F, 0x94, 0xC0) // sete al
	a.emit(0x48, 0x0F, 0xB6, 0xC0)
}

func setccOpcode(cond IntCC) byte {
	switch cond {
	case Equal:
		return 0x94
	case NotEqual:
		return 0x95
	case SignedLessThan:
		return 0x9C
	case SignedLessThanOrEqual:
		return 0x9E
	case SignedGreaterThan:
		return 0x9F
	case SignedGreaterThanOrEqual:
		return 0x9D
	default:
		panic("backend: unsupported comparison condition")
	}
}

// --- calls ---

// popRdi emits `pop rdi`.
func (a *asm) popRdi() { a.popReg(regRDI) }

// subRsp8 / addRsp8: alignment padding around a call.
func (a *asm) subRsp8() { a.emit(0x48, 0x83, 0xEC, 0x08) }
func (a *asm) addRsp8() { a.emit(0x48, 0x83, 0xC4, 0x08) }

// dropTop discards the top of the evaluation stack without reading it.
func (a *asm) dropTop() { a.emit(0x48, 0x83, 0xC4, 0x08) }

// callAbs emits `mov rax, imm64(target); call rax`.
func (a *asm) callAbs(target uintptr) {
	a.movImm64(regRAX, int64(target))
	a.emit(0xFF, 0xD0) // call rax
}
