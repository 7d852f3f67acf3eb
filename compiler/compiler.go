// The compiler-package contains the core of our JIT pipeline.
//
// In brief we go through a three-step process, per compile_and_run:
//
//  1.  Declare an anonymous, zero-argument, i64-returning function on
//      the backend, plus the pre-registered "print_i64" import.
//
//  2.  Walk the already-parsed AST, lowering each statement and
//      expression into calls against the backend's Builder facade.
//
//  3.  Finalize the function, obtain its machine-code entry point,
//      and invoke it in-process.
//
// There is only one local complication worth noting: because the
// backend's logical operators don't short-circuit, both operands of
// && and || are lowered unconditionally, in source order, before the
// combine step runs.
package compiler

import (
	"fmt"
	"unsafe"

	"github.com/afnanksalal/frag/ast"
	"github.com/afnanksalal/frag/backend"
	"github.com/afnanksalal/frag/hostfn"
	"github.com/afnanksalal/frag/instructions"
	"github.com/afnanksalal/frag/token"
)

// printImport is the human-readable name the backend tracks the
// print_i64 host symbol under; it has no other meaning to the module.
const printImport = "print_i64"

// JITCompiler owns one backend module and the import binding for
// print_i64. Concurrent calls to CompileAndRun on the same instance
// are not supported - just like the backend Module it wraps.
type JITCompiler struct {
	module    *backend.Module
	printFunc backend.FuncID
	trace     *instructions.Trace
	slotBytes int32 // width CreateStackSlot uses; 0 defers to backend's own default
}

// New creates a JIT compiler, declaring the host ISA (implicitly, via
// backend.NewModule) and registering print_i64 before any function is
// built - matching §5's requirement that the host symbol be resolvable
// at JIT link time, not lazily bound.
func New() (*JITCompiler, error) {
	m, err := backend.NewModule()
	if err != nil {
		return nil, err
	}

	sig := backend.Signature{Params: []backend.Type{backend.I64}, Returns: []backend.Type{backend.I64}}
	id, err := m.DeclareImport(printImport, sig, hostfn.PrintI64Addr())
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}

	return &JITCompiler{module: m, printFunc: id}, nil
}

// SetTrace attaches an instruction trace that every subsequently
// compiled function records its lowering into - nil disables tracing.
func (c *JITCompiler) SetTrace(tr *instructions.Trace) {
	c.trace = tr
	c.module.WithTrace(tr)
}

// SetStackSlotBytes configures the width backend.Builder.CreateStackSlot
// hands out to every LetDecl in every subsequently compiled function -
// this is where config.Config.StackSlotBytes actually takes effect. A
// value <= 0 defers to backend's own 8-byte default.
func (c *JITCompiler) SetStackSlotBytes(n int) {
	c.slotBytes = int32(n)
}

// Close releases the backend module's JIT memory. A JITCompiler must
// not be used after Close.
func (c *JITCompiler) Close() error {
	return c.module.Close()
}

// CompileAndRun lowers prog to machine code, finalizes it, and invokes
// it, returning the value of its last statement (or 0 for an empty
// program) per §4.3 and §4.5.
func (c *JITCompiler) CompileAndRun(prog *ast.Program) (int64, error) {
	sig := backend.Signature{Returns: []backend.Type{backend.I64}}
	id, b := c.module.NewFunction(sig, c.slotBytes)

	lowerer := &lowering{c: c, b: b, slots: make(map[string]backend.Slot)}

	hasValue := false
	for i, stmt := range prog.Stmts {
		if hasValue {
			b.DropTop()
		}
		if err := lowerer.stmt(stmt); err != nil {
			return 0, fmt.Errorf("compiler: statement %d: %w", i, err)
		}
		hasValue = true
	}

	b.Return(hasValue)

	if err := c.module.Finalize(id, b); err != nil {
		return 0, err
	}

	entry, err := c.module.GetFinalizedFunction(id)
	if err != nil {
		return 0, err
	}

	fn := *(*func() int64)(unsafe.Pointer(&entry))
	return fn(), nil
}

// lowering walks one function's AST, tracking the name-to-slot
// mapping LetDecl shadowing needs.
type lowering struct {
	c     *JITCompiler
	b     *backend.Builder
	slots map[string]backend.Slot
}

func (l *lowering) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := l.expr(n.Expr)
		return err

	case *ast.LetDecl:
		v, err := l.expr(n.Value)
		if err != nil {
			return err
		}
		slot := l.b.CreateStackSlot()
		l.b.StackStore(v, slot)
		l.slots[n.Name] = slot // later LetDecl with the same name overwrites
		return nil

	default:
		return fmt.Errorf("unhandled statement type %T", s)
	}
}

func (l *lowering) expr(e ast.Expr) (backend.Value, error) {
	switch n := e.(type) {
	case *ast.Number:
		return l.b.Iconst(n.Value), nil

	case *ast.Bool:
		if n.Value {
			return l.b.Iconst(1), nil
		}
		return l.b.Iconst(0), nil

	case *ast.Variable:
		slot, ok := l.slots[n.Name]
		if !ok {
			return backend.Value{}, fmt.Errorf("undefined variable %q", n.Name)
		}
		return l.b.StackLoad(slot), nil

	case *ast.Call:
		return l.call(n)

	case *ast.Binary:
		return l.binary(n)

	case *ast.Unary:
		return l.unary(n)

	default:
		return backend.Value{}, fmt.Errorf("unhandled expression type %T", e)
	}
}

func (l *lowering) call(n *ast.Call) (backend.Value, error) {
	if n.Name != "print" {
		return backend.Value{}, fmt.Errorf("unknown function %q", n.Name)
	}
	if len(n.Args) != 1 {
		return backend.Value{}, fmt.Errorf("print expects exactly 1 argument, got %d", len(n.Args))
	}

	arg, err := l.expr(n.Args[0])
	if err != nil {
		return backend.Value{}, err
	}
	return l.b.Call(l.c.printFunc, []backend.Value{arg}), nil
}

func (l *lowering) binary(n *ast.Binary) (backend.Value, error) {
	left, err := l.expr(n.Left)
	if err != nil {
		return backend.Value{}, err
	}
	right, err := l.expr(n.Right)
	if err != nil {
		return backend.Value{}, err
	}

	switch n.Op {
	case token.PLUS:
		return l.b.Iadd(left, right), nil
	case token.MINUS:
		return l.b.Isub(left, right), nil
	case token.STAR:
		return l.b.Imul(left, right), nil
	case token.SLASH:
		return l.b.Sdiv(left, right), nil
	case token.PERCENT:
		return l.b.Srem(left, right), nil
	case token.EQUALEQUAL:
		return l.b.Icmp(backend.Equal, left, right), nil
	case token.NOTEQUAL:
		return l.b.Icmp(backend.NotEqual, left, right), nil
	case token.LESS:
		return l.b.Icmp(backend.SignedLessThan, left, right), nil
	case token.LESSEQUAL:
		return l.b.Icmp(backend.SignedLessThanOrEqual, left, right), nil
	case token.GREATER:
		return l.b.Icmp(backend.SignedGreaterThan, left, right), nil
	case token.GREATEREQUAL:
		return l.b.Icmp(backend.SignedGreaterThanOrEqual, left, right), nil
	case token.ANDAND:
		return l.b.Band(left, right), nil
	case token.OROR:
		return l.b.Bor(left, right), nil
	default:
		return backend.Value{}, fmt.Errorf("unhandled binary operator %q", n.Op)
	}
}

func (l *lowering) unary(n *ast.Unary) (backend.Value, error) {
	v, err := l.expr(n.Expr)
	if err != nil {
		return backend.Value{}, err
	}

	switch n.Op {
	case token.MINUS:
		return l.b.Neg(v), nil
	case token.NOT:
		return l.b.Not(v), nil
	default:
		return backend.Value{}, fmt.Errorf("unhandled unary operator %q", n.Op)
	}
}
