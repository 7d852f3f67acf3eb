// Package ast defines the tree-shaped program representation the
// parser builds and the compiler lowers. Every node owns its children
// exclusively - there is no sharing and no cycles, since the language
// has no loops or recursive definitions that could introduce either.
package ast

import "github.com/afnanksalal/frag/token"

// Expr is any expression node. exprNode is unexported so only the
// types in this package can satisfy the interface.
type Expr interface {
	exprNode()
}

// Number is an integer literal.
type Number struct {
	Value int64
}

func (*Number) exprNode() {}

// Bool is a boolean literal.
type Bool struct {
	Value bool
}

func (*Bool) exprNode() {}

// Variable is a reference to a let-bound name.
type Variable struct {
	Name string
}

func (*Variable) exprNode() {}

// Call is a function call; args are evaluated left to right.
type Call struct {
	Name string
	Args []Expr
}

func (*Call) exprNode() {}

// Binary is a binary operation. Op is constrained at construction
// time (by the parser) to the operator subset token.IsBinaryOp
// recognizes.
type Binary struct {
	Op    token.Type
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Unary is a unary operation. Op is constrained at construction time
// to the operator subset token.IsUnaryOp recognizes.
type Unary struct {
	Op   token.Type
	Expr Expr
}

func (*Unary) exprNode() {}

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
}

// ExprStmt is a standalone expression used as a statement.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// LetDecl binds Value to Name. A later LetDecl with the same Name
// shadows this one - the compiler overwrites its slot mapping rather
// than stacking bindings.
type LetDecl struct {
	Name  string
	Value Expr
}

func (*LetDecl) stmtNode() {}

// Program is an ordered sequence of statements.
type Program struct {
	Stmts []Stmt
}
