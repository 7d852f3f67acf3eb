package backend

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/afnanksalal/frag/instructions"
	"github.com/afnanksalal/frag/stack"
)

// compiledFunc is a function that has been built but not yet
// finalized (its bytes still live in the Builder's own buffer, not
// yet copied into executable memory).
type compiledFunc struct {
	sig  Signature
	code []byte
}

// Module is the façade's top-level handle: one per compilation,
// mirroring the single `cranelift_jit::JITModule` the original
// program builds per run (see original_source/src/codegen.rs). It
// owns every mmap'd code region created on its behalf and tears them
// down in Close, LIFO, via the generic stack package.
type Module struct {
	mu sync.Mutex

	nextID  FuncID
	names   map[FuncID]string
	imports map[FuncID]uintptr
	defs    map[FuncID]*compiledFunc
	entries map[FuncID]uintptr

	regions *stack.Stack[*codeRegion]

	trace *instructions.Trace
}

// NewModule constructs an empty module. It only works on amd64: the
// encoder in amd64.go hand-emits that architecture's machine code
// directly, so running this façade on any other GOARCH would silently
// produce garbage instructions rather than failing loudly - refuse
// up front instead.
func NewModule() (*Module, error) {
	if runtime.GOARCH != "amd64" {
		return nil, fmt.Errorf("backend: unsupported GOARCH %q, this JIT only targets amd64", runtime.GOARCH)
	}
	return &Module{
		names:   make(map[FuncID]string),
		imports: make(map[FuncID]uintptr),
		defs:    make(map[FuncID]*compiledFunc),
		entries: make(map[FuncID]uintptr),
		regions: stack.New[*codeRegion](),
	}, nil
}

// WithTrace enables instruction-trace recording for every function
// subsequently built via NewFunction. Passing nil disables it again.
func (m *Module) WithTrace(tr *instructions.Trace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = tr
}

// DeclareImport registers a host function - spec.md §4.6's print_i64
// is the only one this repo ever declares - binding name and sig to
// the real, callable C-ABI address hostPtr. This is the façade's
// analog of Cranelift's `Module::declare_function` plus
// `define_function` for an import, minus the symbol table: this
// backend emits a direct `call` to an absolute address instead of
// resolving a relocation, since there's no linker in the loop.
func (m *Module) DeclareImport(name string, sig Signature, hostPtr unsafe.Pointer) (FuncID, error) {
	if hostPtr == nil {
		return 0, fmt.Errorf("backend: DeclareImport(%q): nil host pointer", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.names[id] = name
	m.imports[id] = uintptr(hostPtr)
	return id, nil
}

// NewFunction begins a new locally-defined function and returns a
// Builder to assemble its body. slotBytes sets the width CreateStackSlot
// hands out for every local in this function (spec.md §4.3's default is
// 8; config.Config.StackSlotBytes is how a caller widens it) - values
// <= 0 fall back to 8 rather than producing an unusable zero-width slot.
// The caller must call Builder.Return exactly once to close out the
// body, then pass the returned FuncID to Finalize.
func (m *Module) NewFunction(sig Signature, slotBytes int32) (FuncID, *Builder) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	tr := m.trace
	m.mu.Unlock()

	if slotBytes <= 0 {
		slotBytes = 8
	}

	b := newBuilder(m, id, tr, slotBytes)
	return id, b
}

// Finalize copies b's assembled bytes into a fresh mmap'd,
// write-then-exec region and records the resulting entry point. It
// corresponds to Cranelift's `define_function` + `module.finalize_definitions`.
func (m *Module) Finalize(id FuncID, b *Builder) error {
	region, err := allocExecutable(b.code.buf)
	if err != nil {
		return fmt.Errorf("backend: finalize func#%d: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions.Push(region)
	m.entries[id] = region.entry()
	m.defs[id] = &compiledFunc{code: b.code.buf}
	return nil
}

// GetFinalizedFunction returns the callable entry point for a
// previously Finalize'd function, as an unsafe.Pointer ready to be
// cast through a Go function-pointer type by the caller (package
// compiler does this to obtain a `func() int64`-shaped value).
func (m *Module) GetFinalizedFunction(id FuncID) (unsafe.Pointer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("backend: func#%d was never finalized", id)
	}
	return unsafe.Pointer(entry), nil
}

// importTarget resolves id to the absolute address Call should emit,
// whether id names a host import or another finalized local function.
func (m *Module) importTarget(id FuncID) (uintptr, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if addr, ok := m.imports[id]; ok {
		return addr, true
	}
	if addr, ok := m.entries[id]; ok {
		return addr, true
	}
	return 0, false
}

// Close releases every mmap'd region this module allocated, in LIFO
// order, using the stack package (which started out holding strings
// for an RPN expression compiler), repurposed here for deterministic
// JIT-memory teardown.
func (m *Module) Close() error {
	var firstErr error
	for !m.regions.Empty() {
		r, err := m.regions.Pop()
		if err != nil {
			break
		}
		if err := r.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
