// Package parser builds the AST pkg/sema and pkg/codegen walk, using
// the teacher's hand-written recursive-descent style: one function per
// grammar production, precedence-climbing for binary expressions.
package parser

import (
	"strconv"

	"github.com/xplshn/cflatc/pkg/ast"
	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/token"
)

type Parser struct {
	tokens  []token.Token
	pos     int
	current token.Token
	sink    *report.Sink
}

func New(tokens []token.Token, sink *report.Sink) *Parser {
	p := &Parser{tokens: tokens, sink: sink}
	if len(tokens) > 0 {
		p.current = tokens[0]
	}
	return p
}

func (p *Parser) advance() token.Token {
	prev := p.current
	if p.pos < len(p.tokens)-1 {
		p.pos++
		p.current = p.tokens[p.pos]
	}
	return prev
}

func (p *Parser) check(t token.Type) bool { return p.current.Type == t }

func (p *Parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.sink.Errorf(p.current.Pos, "%s (got %s)", message, p.current.Type)
	return p.current
}

// Parse consumes the whole token stream and returns a Program node.
func (p *Parser) Parse() *ast.Node {
	var decls []*ast.Node
	for !p.check(token.EOF) {
		decls = append(decls, p.topLevelDecl())
	}
	return ast.NewProgram(decls)
}

func (p *Parser) topLevelDecl() *ast.Node {
	if p.check(token.KwStruct) && p.peekIsStructDecl() {
		return p.structDecl()
	}
	pos := p.current.Pos
	typ := p.typeName()
	name := p.expect(token.Ident, "Expected a name after type").Value
	if p.check(token.LParen) {
		return p.funcDeclTail(pos, name, typ)
	}
	p.expect(token.Semi, "Expected ';' after variable declaration")
	return ast.NewVarDecl(pos, name, typ)
}

// peekIsStructDecl distinguishes "struct S { ... }" (a declaration)
// from "struct S x;" (a variable of struct type), both of which start
// with the struct keyword.
func (p *Parser) peekIsStructDecl() bool {
	return p.pos+2 < len(p.tokens) && p.tokens[p.pos+2].Type == token.LBrace
}

func (p *Parser) structDecl() *ast.Node {
	pos := p.expect(token.KwStruct, "Expected 'struct'").Pos
	name := p.expect(token.Ident, "Expected struct name").Value
	p.expect(token.LBrace, "Expected '{' after struct name")
	var fields []*ast.Node
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		fpos := p.current.Pos
		ftyp := p.typeName()
		fname := p.expect(token.Ident, "Expected field name").Value
		p.expect(token.Semi, "Expected ';' after field declaration")
		fields = append(fields, ast.NewVarDecl(fpos, fname, ftyp))
	}
	p.expect(token.RBrace, "Expected '}' after struct body")
	p.expect(token.Semi, "Expected ';' after struct declaration")
	return ast.NewStructDecl(pos, name, fields)
}

// typeName parses a declared type, including "struct S" and void. It
// accepts void in every position; name analysis rejects a void
// variable, formal, or field.
func (p *Parser) typeName() ast.TypeName {
	return p.typeNameImpl()
}

func (p *Parser) typeNameImpl() ast.TypeName {
	pos := p.current.Pos
	switch {
	case p.match(token.KwInt):
		return ast.TypeName{Prim: token.KwInt, Pos: pos}
	case p.match(token.KwBool):
		return ast.TypeName{Prim: token.KwBool, Pos: pos}
	case p.match(token.KwVoid):
		return ast.TypeName{Prim: token.KwVoid, Pos: pos}
	case p.match(token.KwString):
		return ast.TypeName{Prim: token.KwString, Pos: pos}
	case p.match(token.KwStruct):
		tag := p.expect(token.Ident, "Expected struct name after 'struct'").Value
		return ast.TypeName{Prim: token.KwStruct, StructTag: tag, Pos: pos}
	}
	p.sink.Errorf(pos, "Expected a type name (got %s)", p.current.Type)
	p.advance()
	return ast.TypeName{Prim: token.KwInt, Pos: pos}
}

func (p *Parser) funcDeclTail(pos token.Pos, name string, ret ast.TypeName) *ast.Node {
	p.expect(token.LParen, "Expected '(' after function name")
	var formals []*ast.Node
	if !p.check(token.RParen) {
		formals = append(formals, p.formalDecl())
		for p.match(token.Comma) {
			formals = append(formals, p.formalDecl())
		}
	}
	p.expect(token.RParen, "Expected ')' after formal list")
	body := p.block()
	return ast.NewFuncDecl(pos, name, formals, ret, body)
}

func (p *Parser) formalDecl() *ast.Node {
	pos := p.current.Pos
	typ := p.typeName()
	name := p.expect(token.Ident, "Expected formal name").Value
	return ast.NewFormalDecl(pos, name, typ)
}

func (p *Parser) block() *ast.Node {
	pos := p.expect(token.LBrace, "Expected '{' to start a block").Pos
	var decls, stmts []*ast.Node
	for p.startsVarDecl() {
		decls = append(decls, p.varDeclStmt())
	}
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		stmts = append(stmts, p.stmt())
	}
	p.expect(token.RBrace, "Expected '}' to end a block")
	return ast.NewBlock(pos, decls, stmts)
}

func (p *Parser) startsVarDecl() bool {
	switch p.current.Type {
	case token.KwInt, token.KwBool, token.KwString:
		return true
	case token.KwStruct:
		return p.pos+2 < len(p.tokens) && p.tokens[p.pos+2].Type != token.LBrace
	default:
		return false
	}
}

func (p *Parser) varDeclStmt() *ast.Node {
	pos := p.current.Pos
	typ := p.typeName()
	name := p.expect(token.Ident, "Expected variable name").Value
	p.expect(token.Semi, "Expected ';' after variable declaration")
	return ast.NewVarDecl(pos, name, typ)
}

func (p *Parser) stmt() *ast.Node {
	switch p.current.Type {
	case token.LBrace:
		return p.block()
	case token.KwIf:
		return p.ifStmt()
	case token.KwWhile:
		return p.whileStmt()
	case token.KwRepeat:
		return p.repeatStmt()
	case token.KwCin:
		return p.readStmt()
	case token.KwCout:
		return p.writeStmt()
	case token.KwReturn:
		return p.returnStmt()
	default:
		return p.simpleStmt()
	}
}

func (p *Parser) ifStmt() *ast.Node {
	pos := p.expect(token.KwIf, "Expected 'if'").Pos
	p.expect(token.LParen, "Expected '(' after 'if'")
	cond := p.expr()
	p.expect(token.RParen, "Expected ')' after if condition")
	then := p.block()
	if p.match(token.KwElse) {
		els := p.block()
		return ast.NewIfElseStmt(pos, cond, then, els)
	}
	return ast.NewIfStmt(pos, cond, then)
}

func (p *Parser) whileStmt() *ast.Node {
	pos := p.expect(token.KwWhile, "Expected 'while'").Pos
	p.expect(token.LParen, "Expected '(' after 'while'")
	cond := p.expr()
	p.expect(token.RParen, "Expected ')' after while condition")
	body := p.block()
	return ast.NewWhileStmt(pos, cond, body)
}

func (p *Parser) repeatStmt() *ast.Node {
	pos := p.expect(token.KwRepeat, "Expected 'repeat'").Pos
	p.expect(token.LParen, "Expected '(' after 'repeat'")
	count := p.expr()
	p.expect(token.RParen, "Expected ')' after repeat count")
	body := p.block()
	return ast.NewRepeatStmt(pos, count, body)
}

// readStmt parses "cin >> target;" per the grammar's stream-style I/O.
func (p *Parser) readStmt() *ast.Node {
	pos := p.expect(token.KwCin, "Expected 'cin'").Pos
	p.expect(token.ShiftR, "Expected '>>' after 'cin'")
	target := p.expr()
	p.expect(token.Semi, "Expected ';' after read statement")
	return ast.NewReadStmt(pos, target)
}

// writeStmt parses "cout << expr;".
func (p *Parser) writeStmt() *ast.Node {
	pos := p.expect(token.KwCout, "Expected 'cout'").Pos
	p.expect(token.ShiftL, "Expected '<<' after 'cout'")
	expr := p.expr()
	p.expect(token.Semi, "Expected ';' after write statement")
	return ast.NewWriteStmt(pos, expr)
}

func (p *Parser) returnStmt() *ast.Node {
	pos := p.expect(token.KwReturn, "Expected 'return'").Pos
	if p.match(token.Semi) {
		return ast.NewReturnStmt(pos, nil)
	}
	e := p.expr()
	p.expect(token.Semi, "Expected ';' after return value")
	return ast.NewReturnStmt(pos, e)
}

// simpleStmt covers the three statement shapes that begin with an
// expression: assignment, increment/decrement, and a bare call.
func (p *Parser) simpleStmt() *ast.Node {
	pos := p.current.Pos
	lhs := p.expr()
	switch {
	case p.match(token.Assign):
		rhs := p.expr()
		p.expect(token.Semi, "Expected ';' after assignment")
		return ast.NewAssignStmt(pos, ast.NewAssignExpr(pos, lhs, rhs))
	case p.check(token.PlusPlus), p.check(token.MinusMinus):
		op := p.advance().Type
		p.expect(token.Semi, "Expected ';' after increment/decrement")
		return ast.NewIncDecStmt(pos, lhs, op)
	default:
		p.expect(token.Semi, "Expected ';' after statement")
		if lhs.Kind == ast.CallExpr {
			return ast.NewCallStmt(pos, lhs)
		}
		p.sink.Errorf(pos, "Expected an assignment, call, or increment/decrement statement")
		return ast.NewCallStmt(pos, lhs)
	}
}

// --- Expressions, precedence-climbing over the binary operators ---

func binaryPrecedence(t token.Type) int {
	switch t {
	case token.Star, token.Slash:
		return 5
	case token.Plus, token.Minus:
		return 4
	case token.Lt, token.Gt, token.Lte, token.Gte:
		return 3
	case token.Eq, token.Neq:
		return 2
	case token.AndAnd:
		return 1
	case token.OrOr:
		return 0
	default:
		return -1
	}
}

func (p *Parser) expr() *ast.Node {
	return p.binaryExpr(0)
}

func (p *Parser) binaryExpr(minPrec int) *ast.Node {
	left := p.unaryExpr()
	for {
		prec := binaryPrecedence(p.current.Type)
		if prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.binaryExpr(prec + 1)
		left = ast.NewBinaryExpr(op.Pos, op.Type, left, right)
	}
}

func (p *Parser) unaryExpr() *ast.Node {
	if p.check(token.Minus) || p.check(token.Not) {
		op := p.advance()
		operand := p.unaryExpr()
		return ast.NewUnaryExpr(op.Pos, op.Type, operand)
	}
	return p.postfixExpr()
}

// postfixExpr handles dot-access chains and call arguments layered
// onto a primary expression.
func (p *Parser) postfixExpr() *ast.Node {
	n := p.primaryExpr()
	for {
		switch {
		case p.match(token.Dot):
			fieldPos := p.current.Pos
			field := p.expect(token.Ident, "Expected field name after '.'").Value
			n = ast.NewDotAccessExpr(n.Pos, n, field, fieldPos)
		case p.check(token.LParen) && n.Kind == ast.IdExpr:
			n = p.callExprTail(n)
		default:
			return n
		}
	}
}

func (p *Parser) callExprTail(callee *ast.Node) *ast.Node {
	pos := p.expect(token.LParen, "Expected '('").Pos
	var args []*ast.Node
	if !p.check(token.RParen) {
		args = append(args, p.expr())
		for p.match(token.Comma) {
			args = append(args, p.expr())
		}
	}
	p.expect(token.RParen, "Expected ')' after call arguments")
	return ast.NewCallExpr(pos, callee, args)
}

func (p *Parser) primaryExpr() *ast.Node {
	tok := p.current
	switch {
	case p.match(token.IntLit):
		v, _ := strconv.ParseInt(tok.Value, 10, 64)
		return ast.NewIntLit(tok.Pos, v)
	case p.match(token.StrLit):
		return ast.NewStringLit(tok.Pos, tok.Value)
	case p.match(token.KwTrue):
		return ast.NewBoolLit(tok.Pos, true)
	case p.match(token.KwFalse):
		return ast.NewBoolLit(tok.Pos, false)
	case p.match(token.Ident):
		return ast.NewIdExpr(tok.Pos, tok.Value)
	case p.match(token.LParen):
		e := p.expr()
		p.expect(token.RParen, "Expected ')' after expression")
		return e
	}
	p.sink.Errorf(tok.Pos, "Expected an expression (got %s)", tok.Type)
	p.advance()
	return ast.NewIntLit(tok.Pos, 0)
}
