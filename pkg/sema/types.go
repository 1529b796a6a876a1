package sema

import (
	"github.com/xplshn/cflatc/pkg/ast"
	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/token"
	"github.com/xplshn/cflatc/pkg/types"
)

// Checker performs type checking. It assumes name analysis has
// already run over the same tree and linked every Node.Sym it will
// need; it never touches the symbol table itself.
type Checker struct {
	sink *report.Sink

	// currentRet is the enclosing function's declared return type,
	// consulted by return statements.
	currentRet types.Type
}

func NewChecker(sink *report.Sink) *Checker {
	return &Checker{sink: sink}
}

func (c *Checker) Check(prog *ast.Node) {
	data := prog.Data.(ast.ProgramData)
	for _, d := range data.Decls {
		c.decl(d)
	}
}

func (c *Checker) decl(n *ast.Node) {
	switch n.Kind {
	case ast.VarDecl:
		if n.Sym != nil {
			n.Typ = n.Sym.Type
		} else {
			n.Typ = types.TError
		}
	case ast.FuncDecl:
		c.funcDecl(n)
	case ast.StructDecl:
		if n.Sym != nil {
			n.Typ = n.Sym.Type
		} else {
			n.Typ = types.TError
		}
	}
}

func (c *Checker) funcDecl(n *ast.Node) {
	d := n.Data.(ast.FuncDeclData)
	var retType types.Type
	if n.Sym != nil {
		retType = n.Sym.Type.Return()
	} else {
		retType = types.TError
	}
	n.Typ = retType

	saved := c.currentRet
	c.currentRet = retType
	bd := d.Body.Data.(ast.BlockData)
	c.declsAndStmts(bd.Decls, bd.Stmts)
	c.currentRet = saved
}

func (c *Checker) block(n *ast.Node) {
	bd := n.Data.(ast.BlockData)
	c.declsAndStmts(bd.Decls, bd.Stmts)
}

func (c *Checker) declsAndStmts(decls, stmts []*ast.Node) {
	for _, d := range decls {
		c.decl(d)
	}
	for _, s := range stmts {
		c.stmt(s)
	}
}

func (c *Checker) stmt(n *ast.Node) {
	switch n.Kind {
	case ast.Block:
		c.block(n)
	case ast.AssignStmt:
		d := n.Data.(ast.AssignStmtData)
		c.expr(d.Assign)
	case ast.IncDecStmt:
		d := n.Data.(ast.IncDecStmtData)
		t := c.expr(d.Target)
		if !t.IsError() && !t.IsInt() {
			c.sink.Errorf(d.Target.Pos, "Arithmetic operator applied to non-numeric operand")
		}
	case ast.ReadStmt:
		d := n.Data.(ast.ReadStmtData)
		t := c.expr(d.Target)
		c.checkReadWriteTarget(d.Target.Pos, t, "read")
	case ast.WriteStmt:
		d := n.Data.(ast.WriteStmtData)
		t := c.expr(d.Expr)
		c.checkReadWriteTarget(d.Expr.Pos, t, "write")
		if t.IsVoid() {
			c.sink.Errorf(d.Expr.Pos, "Attempt to write void")
		}
	case ast.IfStmt:
		d := n.Data.(ast.IfStmtData)
		t := c.expr(d.Cond)
		if !t.IsError() && !t.IsBool() {
			c.sink.Errorf(d.Cond.Pos, "Non-bool expression used as an if condition")
		}
		c.block(d.Then)
	case ast.IfElseStmt:
		d := n.Data.(ast.IfElseStmtData)
		t := c.expr(d.Cond)
		if !t.IsError() && !t.IsBool() {
			c.sink.Errorf(d.Cond.Pos, "Non-bool expression used as an if condition")
		}
		c.block(d.Then)
		c.block(d.Else)
	case ast.WhileStmt:
		d := n.Data.(ast.WhileStmtData)
		t := c.expr(d.Cond)
		if !t.IsError() && !t.IsBool() {
			c.sink.Errorf(d.Cond.Pos, "Non-bool expression used as a while condition")
		}
		c.block(d.Body)
	case ast.RepeatStmt:
		d := n.Data.(ast.RepeatStmtData)
		t := c.expr(d.Count)
		if !t.IsError() && !t.IsInt() {
			c.sink.Errorf(d.Count.Pos, "Non-integer expression used as a repeat clause")
		}
		c.block(d.Body)
	case ast.CallStmt:
		d := n.Data.(ast.CallStmtData)
		c.expr(d.Call)
	case ast.ReturnStmt:
		d := n.Data.(ast.ReturnStmtData)
		if d.Expr != nil {
			t := c.expr(d.Expr)
			switch {
			case c.currentRet.IsVoid():
				c.sink.Errorf(d.Expr.Pos, "Return with a value in a void function")
			case !c.currentRet.IsError() && !t.IsError() && !c.currentRet.Equal(t):
				c.sink.Errorf(d.Expr.Pos, "Bad return value")
			}
		} else if !c.currentRet.IsVoid() {
			c.sink.Errorf(token.Pos{}, "Missing return value")
		}
	}
}

// checkReadWriteTarget implements the shared restriction cin/cout
// place on their operand: no function, struct name, or struct value
// may be read or written directly.
func (c *Checker) checkReadWriteTarget(pos token.Pos, t types.Type, verb string) {
	switch {
	case t.IsFn():
		c.sink.Errorf(pos, "Attempt to %s a function", verb)
	case t.IsStructDef():
		c.sink.Errorf(pos, "Attempt to %s a struct name", verb)
	case t.IsStruct():
		c.sink.Errorf(pos, "Attempt to %s a struct variable", verb)
	}
}

// expr type-checks n, sets n.Typ, and returns it.
func (c *Checker) expr(n *ast.Node) types.Type {
	switch n.Kind {
	case ast.IntLit:
		n.Typ = types.TInt
	case ast.StringLit:
		n.Typ = types.TString
	case ast.BoolLit:
		n.Typ = types.TBool
	case ast.IdExpr:
		n.Typ = symType(n)
	case ast.DotAccessExpr:
		// Name analysis already linked n.Sym to the resolved field;
		// type check has no further work to do.
		n.Typ = symType(n)
	case ast.AssignExpr:
		n.Typ = c.assignExpr(n)
	case ast.UnaryExpr:
		n.Typ = c.unaryExpr(n)
	case ast.BinaryExpr:
		n.Typ = c.binaryExpr(n)
	case ast.CallExpr:
		n.Typ = c.callExpr(n)
	default:
		n.Typ = types.TError
	}
	return n.Typ
}

func symType(n *ast.Node) types.Type {
	if n.Sym == nil {
		return types.TError
	}
	return n.Sym.Type
}

func (c *Checker) assignExpr(n *ast.Node) types.Type {
	d := n.Data.(ast.AssignExprData)
	lt := c.expr(d.Lhs)
	rt := c.expr(d.Rhs)
	res := lt

	if lt.IsFn() && rt.IsFn() {
		c.sink.Errorf(n.Pos, "Function assignment")
		res = types.TError
	}
	if lt.IsStructDef() && rt.IsStructDef() {
		c.sink.Errorf(n.Pos, "Struct name assignment")
		res = types.TError
	}
	if lt.IsStruct() && rt.IsStruct() {
		c.sink.Errorf(n.Pos, "Struct variable assignment")
		res = types.TError
	}
	if !lt.Equal(rt) && !lt.IsError() && !rt.IsError() {
		c.sink.Errorf(n.Pos, "Type mismatch")
		res = types.TError
	}
	if lt.IsError() || rt.IsError() {
		res = types.TError
	}
	return res
}

func (c *Checker) unaryExpr(n *ast.Node) types.Type {
	d := n.Data.(ast.UnaryExprData)
	ot := c.expr(d.Operand)
	switch d.Op {
	case token.Minus:
		if ot.IsError() {
			return types.TError
		}
		if !ot.IsInt() {
			c.sink.Errorf(n.Pos, "Arithmetic operator applied to non-numeric operand")
			return types.TError
		}
		return types.TInt
	case token.Not:
		if ot.IsError() {
			return types.TError
		}
		if !ot.IsBool() {
			c.sink.Errorf(n.Pos, "Logical operator applied to non-bool operand")
			return types.TError
		}
		return types.TBool
	}
	return types.TError
}

func (c *Checker) binaryExpr(n *ast.Node) types.Type {
	d := n.Data.(ast.BinaryExprData)
	lt := c.expr(d.Left)
	rt := c.expr(d.Right)

	switch d.Op {
	case token.Plus, token.Minus, token.Star, token.Slash:
		return c.bothOfKind(n, d.Left.Pos, d.Right.Pos, lt, rt, types.Type.IsInt,
			"Arithmetic operator applied to non-numeric operand", types.TInt)
	case token.AndAnd, token.OrOr:
		return c.bothOfKind(n, d.Left.Pos, d.Right.Pos, lt, rt, types.Type.IsBool,
			"Logical operator applied to non-bool operand", types.TBool)
	case token.Lt, token.Gt, token.Lte, token.Gte:
		return c.bothOfKind(n, d.Left.Pos, d.Right.Pos, lt, rt, types.Type.IsInt,
			"Relational operator applied to non-numeric operand", types.TBool)
	case token.Eq, token.Neq:
		return c.equality(n, lt, rt)
	}
	return types.TError
}

// bothOfKind implements the shared shape of the arithmetic, logical,
// and relational rules: each operand is checked independently against
// want, both diagnosed if both are bad, and the whole expression turns
// to Error if either operand already was.
func (c *Checker) bothOfKind(n *ast.Node, leftPos, rightPos token.Pos, lt, rt types.Type, want func(types.Type) bool, msg string, ok types.Type) types.Type {
	res := ok
	if !lt.IsError() && !want(lt) {
		c.sink.Errorf(leftPos, "%s", msg)
		res = types.TError
	}
	if !rt.IsError() && !want(rt) {
		c.sink.Errorf(rightPos, "%s", msg)
		res = types.TError
	}
	if lt.IsError() || rt.IsError() {
		res = types.TError
	}
	return res
}

func (c *Checker) equality(n *ast.Node, lt, rt types.Type) types.Type {
	res := types.TBool
	if lt.IsVoid() && rt.IsVoid() {
		c.sink.Errorf(n.Pos, "Equality operator applied to void functions")
		res = types.TError
	}
	if lt.IsFn() && rt.IsFn() {
		c.sink.Errorf(n.Pos, "Equality operator applied to functions")
		res = types.TError
	}
	if lt.IsStructDef() && rt.IsStructDef() {
		c.sink.Errorf(n.Pos, "Equality operator applied to struct names")
		res = types.TError
	}
	if lt.IsStruct() && rt.IsStruct() {
		c.sink.Errorf(n.Pos, "Equality operator applied to struct variables")
		res = types.TError
	}
	if !lt.Equal(rt) && !lt.IsError() && !rt.IsError() {
		c.sink.Errorf(n.Pos, "Type mismatch")
		res = types.TError
	}
	if lt.IsError() || rt.IsError() {
		res = types.TError
	}
	return res
}

func (c *Checker) callExpr(n *ast.Node) types.Type {
	d := n.Data.(ast.CallExprData)
	ct := c.expr(d.Callee)
	for _, arg := range d.Args {
		c.expr(arg)
	}

	if !ct.IsFn() {
		if !ct.IsError() {
			c.sink.Errorf(d.Callee.Pos, "Attempt to call a non-function")
		}
		return types.TError
	}

	params := ct.Params()
	if len(d.Args) != len(params) {
		c.sink.Errorf(d.Callee.Pos, "Function call with wrong number of args")
		return ct.Return()
	}
	for i, arg := range d.Args {
		if arg.Typ.IsError() {
			continue
		}
		if !arg.Typ.Equal(params[i]) {
			c.sink.Errorf(arg.Pos, "Type of actual does not match type of formal")
		}
	}
	return ct.Return()
}
