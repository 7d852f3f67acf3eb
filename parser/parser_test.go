package parser

import (
	"testing"

	"github.com/afnanksalal/frag/ast"
	"github.com/afnanksalal/frag/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	p := New(lexer.New(src))
	return p.ParseProgram()
}

func TestEmptyProgram(t *testing.T) {
	prog, err := parse(t, "")
	require.NoError(t, err)
	assert.Empty(t, prog.Stmts)
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	prog, err := parse(t, "1 + 2 * 3")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)

	stmt := prog.Stmts[0].(*ast.ExprStmt)
	bin, ok := stmt.Expr.(*ast.Binary)
	require.True(t, ok, "top-level node should be the '+' from term level")
	assert.Equal(t, "+", string(bin.Op))

	left, ok := bin.Left.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, int64(1), left.Value)

	right, ok := bin.Right.(*ast.Binary)
	require.True(t, ok, "right side should be the tighter-binding '*'")
	assert.Equal(t, "*", string(right.Op))
}

func TestLeftAssociativityWithinALevel(t *testing.T) {
	// "1 - 2 - 3" must parse as "(1 - 2) - 3", not "1 - (2 - 3)".
	prog, err := parse(t, "1 - 2 - 3")
	require.NoError(t, err)

	stmt := prog.Stmts[0].(*ast.ExprStmt)
	outer := stmt.Expr.(*ast.Binary)
	assert.Equal(t, "-", string(outer.Op))

	inner, ok := outer.Left.(*ast.Binary)
	require.True(t, ok, "the left-hand child should itself be a '-', not the right")
	assert.Equal(t, "-", string(inner.Op))

	_, rightIsNumber := outer.Right.(*ast.Number)
	assert.True(t, rightIsNumber)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	prog, err := parse(t, "(1 + 2) * 3")
	require.NoError(t, err)

	stmt := prog.Stmts[0].(*ast.ExprStmt)
	bin := stmt.Expr.(*ast.Binary)
	assert.Equal(t, "*", string(bin.Op))

	_, leftIsPlus := bin.Left.(*ast.Binary)
	assert.True(t, leftIsPlus)
}

func TestLetDeclAndShadowing(t *testing.T) {
	prog, err := parse(t, "let x = 1; let x = 2; x")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 3)

	first, ok := prog.Stmts[0].(*ast.LetDecl)
	require.True(t, ok)
	assert.Equal(t, "x", first.Name)

	second, ok := prog.Stmts[1].(*ast.LetDecl)
	require.True(t, ok)
	assert.Equal(t, "x", second.Name)
}

func TestFunctionCallWithArgs(t *testing.T) {
	prog, err := parse(t, "print(1, 2, 3)")
	require.NoError(t, err)

	stmt := prog.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "print", call.Name)
	assert.Len(t, call.Args, 3)
}

// TestSingleTrailingSemicolonIsAccepted matches the reference parser
// exactly: the statement loop consumes a semicolon right after the
// final statement and then exits on Eof without ever trying to parse
// another statement, so "1;" is not actually rejected despite the
// grammar reading as if it should be. See DESIGN.md's Open Question
// decision #3.
func TestSingleTrailingSemicolonIsAccepted(t *testing.T) {
	prog, err := parse(t, "1;")
	require.NoError(t, err)
	assert.Len(t, prog.Stmts, 1)
}

// TestLoneSemicolonProgramIsRejected is the real "trailing semicolon"
// boundary case from spec.md §8: a semicolon with no statement before
// it is parsed as a statement in its own right, and a statement can't
// start with ';'.
func TestLoneSemicolonProgramIsRejected(t *testing.T) {
	_, err := parse(t, ";")
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnexpectedToken, perr.Kind)
}

// TestDoubleTrailingSemicolonIsRejected: the second ';' is itself
// parsed as a statement and rejected the same way.
func TestDoubleTrailingSemicolonIsRejected(t *testing.T) {
	_, err := parse(t, "1;;")
	assert.Error(t, err)
}

func TestMissingSemicolonBetweenStatementsIsRejected(t *testing.T) {
	_, err := parse(t, "1 2")
	assert.Error(t, err)
}

func TestUnexpectedTokenError(t *testing.T) {
	_, err := parse(t, "+ 1")
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UnexpectedToken, perr.Kind)
}

func TestExpectedTokenError(t *testing.T) {
	_, err := parse(t, "(1")
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ExpectedToken, perr.Kind)
}

func TestDoubleUnary(t *testing.T) {
	prog, err := parse(t, "-(-3)")
	require.NoError(t, err)

	stmt := prog.Stmts[0].(*ast.ExprStmt)
	outer, ok := stmt.Expr.(*ast.Unary)
	require.True(t, ok)
	assert.Equal(t, "-", string(outer.Op))
}
