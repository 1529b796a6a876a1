package parser

import (
	"os"
	"testing"

	"github.com/xplshn/cflatc/pkg/ast"
	"github.com/xplshn/cflatc/pkg/lexer"
	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/token"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	sink := report.New(os.Stderr)
	lx := lexer.New([]rune(src), sink)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	prog := New(toks, sink).Parse()
	if sink.FatalCount() > 0 {
		t.Fatalf("unexpected parse error(s) for %q", src)
	}
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parse(t, "int x;")
	decls := prog.Data.(ast.ProgramData).Decls
	if len(decls) != 1 || decls[0].Kind != ast.VarDecl {
		t.Fatalf("got %+v, want a single VarDecl", decls)
	}
	d := decls[0].Data.(ast.VarDeclData)
	if d.Name != "x" || d.Type.Prim != token.KwInt {
		t.Errorf("got %+v, want name=x type=int", d)
	}
}

func TestParseFuncDeclWithFormals(t *testing.T) {
	prog := parse(t, "int add(int a, int b) { return a + b; }")
	decls := prog.Data.(ast.ProgramData).Decls
	if len(decls) != 1 || decls[0].Kind != ast.FuncDecl {
		t.Fatalf("got %+v, want a single FuncDecl", decls)
	}
	d := decls[0].Data.(ast.FuncDeclData)
	if d.Name != "add" || len(d.Formals) != 2 {
		t.Fatalf("got name=%s formals=%d, want add/2", d.Name, len(d.Formals))
	}
	body := d.Body.Data.(ast.BlockData)
	if len(body.Stmts) != 1 || body.Stmts[0].Kind != ast.ReturnStmt {
		t.Fatalf("got %+v, want a single ReturnStmt", body.Stmts)
	}
	ret := body.Stmts[0].Data.(ast.ReturnStmtData)
	if ret.Expr == nil || ret.Expr.Kind != ast.BinaryExpr {
		t.Fatalf("got %+v, want a BinaryExpr return value", ret.Expr)
	}
}

func TestBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), not (1 + 2) * 3.
	prog := parse(t, "int x; void f() { x = 1 + 2 * 3; }")
	decls := prog.Data.(ast.ProgramData).Decls
	fn := decls[1].Data.(ast.FuncDeclData)
	body := fn.Body.Data.(ast.BlockData)
	assign := body.Stmts[0].Data.(ast.AssignStmtData).Assign.Data.(ast.AssignExprData)
	top := assign.Rhs.Data.(ast.BinaryExprData)
	if top.Op != token.Plus {
		t.Fatalf("top-level op = %v, want +", top.Op)
	}
	right := top.Right.Data.(ast.BinaryExprData)
	if right.Op != token.Star {
		t.Fatalf("right operand op = %v, want *", right.Op)
	}
}

func TestDotAccessChain(t *testing.T) {
	prog := parse(t, "void f() { a.b.c = 1; }")
	fn := prog.Data.(ast.ProgramData).Decls[0].Data.(ast.FuncDeclData)
	body := fn.Body.Data.(ast.BlockData)
	assign := body.Stmts[0].Data.(ast.AssignStmtData).Assign.Data.(ast.AssignExprData)
	outer := assign.Lhs.Data.(ast.DotAccessExprData)
	if outer.Field != "c" {
		t.Fatalf("outer field = %q, want c", outer.Field)
	}
	inner := outer.Base.Data.(ast.DotAccessExprData)
	if inner.Field != "b" || inner.Base.Kind != ast.IdExpr {
		t.Fatalf("got %+v, want base a, field b", inner)
	}
}

func TestStructDeclVsStructVarDecl(t *testing.T) {
	prog := parse(t, "struct Point { int x; int y; }; struct Point p;")
	decls := prog.Data.(ast.ProgramData).Decls
	if len(decls) != 2 {
		t.Fatalf("got %d decls, want 2", len(decls))
	}
	if decls[0].Kind != ast.StructDecl {
		t.Errorf("decls[0].Kind = %v, want StructDecl", decls[0].Kind)
	}
	if decls[1].Kind != ast.VarDecl {
		t.Errorf("decls[1].Kind = %v, want VarDecl", decls[1].Kind)
	}
}

func TestRepeatAndCallStatements(t *testing.T) {
	prog := parse(t, "void f() { repeat (3) { g(); } }")
	fn := prog.Data.(ast.ProgramData).Decls[0].Data.(ast.FuncDeclData)
	stmt := fn.Body.Data.(ast.BlockData).Stmts[0]
	if stmt.Kind != ast.RepeatStmt {
		t.Fatalf("got %v, want RepeatStmt", stmt.Kind)
	}
	body := stmt.Data.(ast.RepeatStmtData).Body.Data.(ast.BlockData)
	if len(body.Stmts) != 1 || body.Stmts[0].Kind != ast.CallStmt {
		t.Fatalf("got %+v, want a single CallStmt", body.Stmts)
	}
}
