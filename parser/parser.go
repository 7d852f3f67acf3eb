// Package parser builds an ast.Program from a token stream via
// recursive-descent precedence climbing. It is single-pass: the first
// error encountered aborts parsing, there is no error recovery.
package parser

import (
	"fmt"

	"github.com/afnanksalal/frag/ast"
	"github.com/afnanksalal/frag/lexer"
	"github.com/afnanksalal/frag/token"
)

// ErrorKind distinguishes the two error shapes the parser produces.
type ErrorKind int

const (
	// UnexpectedToken means a primary expression couldn't start with
	// the token that was seen.
	UnexpectedToken ErrorKind = iota
	// ExpectedToken means a specific token was required and a
	// different one was seen.
	ExpectedToken
)

// Error is a parse failure. It carries enough to format either of the
// two kinds spec.md §4.2 names.
type Error struct {
	Kind     ErrorKind
	Expected string
	Seen     string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ExpectedToken:
		return fmt.Sprintf("expected %s, but found %s", e.Expected, e.Seen)
	default:
		return fmt.Sprintf("unexpected token: %s", e.Seen)
	}
}

// Parser consumes a lexer's token stream with one token of lookahead.
type Parser struct {
	l          *lexer.Lexer
	cur        token.Token
	havePeeked bool
	peeked     token.Token
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// peek returns the next token without consuming it.
func (p *Parser) peek() token.Token {
	if !p.havePeeked {
		p.peeked = p.l.NextToken()
		p.havePeeked = true
	}
	return p.peeked
}

// bump consumes and returns the next token.
func (p *Parser) bump() token.Token {
	if p.havePeeked {
		p.havePeeked = false
		p.cur = p.peeked
		return p.cur
	}
	p.cur = p.l.NextToken()
	return p.cur
}

// expect consumes the next token and requires it to have type t.
func (p *Parser) expect(t token.Type) (token.Token, error) {
	tok := p.bump()
	if tok.Type != t {
		return tok, &Error{Kind: ExpectedToken, Expected: string(t), Seen: describeToken(tok)}
	}
	return tok, nil
}

func describeToken(t token.Token) string {
	if t.Type == token.EOF {
		return "end of file"
	}
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return string(t.Type)
}

// ParseProgram parses the entire token stream into an ast.Program.
//
//	program := (stmt (';' stmt)* )?
//
// A semicolon is only required while more input remains: one trailing
// ';' right after the last statement is consumed here and then the
// loop exits on Eof, but a ';' with no statement before it fails
// inside parseStmt with UnexpectedToken.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.peek().Type != token.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)

		if p.peek().Type != token.EOF {
			if _, err := p.expect(token.SEMICOLON); err != nil {
				return nil, err
			}
		}
	}
	return prog, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	if p.peek().Type == token.LET {
		return p.parseLetDecl()
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr}, nil
}

func (p *Parser) parseLetDecl() (ast.Stmt, error) {
	if _, err := p.expect(token.LET); err != nil {
		return nil, err
	}

	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, &Error{Kind: ExpectedToken, Expected: "identifier", Seen: describeToken(name)}
	}

	if _, err := p.expect(token.EQUAL); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.LetDecl{Name: name.Literal, Value: value}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.OROR {
		op := p.bump()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.ANDAND {
		op := p.bump()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.EQUALEQUAL || p.peek().Type == token.NOTEQUAL {
		op := p.bump()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for isComparisonOp(p.peek().Type) {
		op := p.bump()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func isComparisonOp(t token.Type) bool {
	switch t {
	case token.LESS, token.LESSEQUAL, token.GREATER, token.GREATEREQUAL:
		return true
	}
	return false
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.PLUS || p.peek().Type == token.MINUS {
		op := p.bump()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for isFactorOp(p.peek().Type) {
		op := p.bump()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func isFactorOp(t token.Type) bool {
	switch t {
	case token.STAR, token.SLASH, token.PERCENT:
		return true
	}
	return false
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.peek().Type == token.MINUS || p.peek().Type == token.NOT {
		op := p.bump()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op.Type, Expr: expr}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.bump()

	switch tok.Type {
	case token.NUMBER:
		return &ast.Number{Value: tok.Num}, nil
	case token.BOOL:
		return &ast.Bool{Value: tok.Num != 0}, nil
	case token.IDENTIFIER:
		if p.peek().Type == token.LEFTPAREN {
			return p.parseCall(tok.Literal)
		}
		return &ast.Variable{Name: tok.Literal}, nil
	case token.LEFTPAREN:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RIGHTPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, &Error{Kind: UnexpectedToken, Seen: describeToken(tok)}
	}
}

func (p *Parser) parseCall(name string) (ast.Expr, error) {
	if _, err := p.expect(token.LEFTPAREN); err != nil {
		return nil, err
	}

	var args []ast.Expr
	if p.peek().Type != token.RIGHTPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type != token.COMMA {
				break
			}
			p.bump()
		}
	}

	if _, err := p.expect(token.RIGHTPAREN); err != nil {
		return nil, err
	}

	return &ast.Call{Name: name, Args: args}, nil
}
