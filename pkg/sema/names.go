// Package sema implements the two semantic passes of spec.md: name
// analysis (this file) and type checking (types.go). Both walk the
// same ast.Node tree and write their results into the tree's Sym/Typ
// annotation fields (name analysis also records each function's
// ExitLabel); neither pass reshapes the tree.
package sema

import (
	"fmt"

	"github.com/xplshn/cflatc/pkg/ast"
	"github.com/xplshn/cflatc/pkg/config"
	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/symtab"
	"github.com/xplshn/cflatc/pkg/token"
	"github.com/xplshn/cflatc/pkg/types"
)

// Analyzer performs name analysis: it resolves every identifier to a
// declaration, rejects duplicate declarations, and assigns the stack
// offsets and frame sizes code generation needs.
type Analyzer struct {
	sink *report.Sink
	cfg  *config.Config
	syms *symtab.Table

	// structDefs maps a struct's identity to the symbol carrying its
	// field table, so dot-access can look up fields of a variable
	// declared with "struct S" without re-searching enclosing scopes.
	structDefs map[types.StructID]*symtab.Symbol
}

func NewAnalyzer(sink *report.Sink, cfg *config.Config) *Analyzer {
	return &Analyzer{
		sink:       sink,
		cfg:        cfg,
		syms:       symtab.New(),
		structDefs: make(map[types.StructID]*symtab.Symbol),
	}
}

// wordsFor returns the storage size, in words, of a value of type t.
// Every type is one word except a struct instance when -Fstructs
// inlines its fields directly into the enclosing frame or globals
// area.
func (a *Analyzer) wordsFor(t types.Type) int {
	if a.cfg != nil && a.cfg.FeatureEnabled(config.FeatStructs) && t.IsStruct() {
		if def, ok := a.structDefs[t.StructID()]; ok && def.FieldCount > 0 {
			return def.FieldCount
		}
	}
	return 1
}

// Symbols returns the global symbol table, which the type checker and
// code generator both need for struct field layout and global sizes.
func (a *Analyzer) Symbols() *symtab.Table { return a.syms }

// Analyze walks prog's top-level declarations in order, exactly as
// spec.md's single-pass name analysis requires: a function may only
// call functions declared earlier in the file. It returns whether a
// top-level function named "main" was declared, diagnosing "No main
// function" at (0,0) when it was not; per spec.md §9 this flag is
// returned rather than held as generator-context mutable state.
func (a *Analyzer) Analyze(prog *ast.Node) bool {
	data := prog.Data.(ast.ProgramData)
	foundMain := false
	for _, d := range data.Decls {
		a.decl(d)
		if d.Kind == ast.FuncDecl {
			fd := d.Data.(ast.FuncDeclData)
			if fd.Name == "main" {
				foundMain = true
			}
		}
	}
	if !foundMain {
		a.sink.Errorf(token.Pos{}, "No main function")
	}
	return foundMain
}

func (a *Analyzer) decl(n *ast.Node) {
	switch n.Kind {
	case ast.VarDecl:
		a.varDecl(n)
	case ast.FuncDecl:
		a.funcDecl(n)
	case ast.StructDecl:
		a.structDecl(n)
	}
}

// resolveDeclType resolves the surface type of a variable, formal, or
// field declaration. void is never valid here.
func (a *Analyzer) resolveDeclType(t ast.TypeName) (types.Type, bool) {
	switch t.Prim {
	case token.KwInt:
		return types.TInt, true
	case token.KwBool:
		return types.TBool, true
	case token.KwString:
		return types.TString, true
	case token.KwStruct:
		sym := a.syms.LookupGlobal(t.StructTag)
		if sym == nil || sym.Kind != symtab.StructDef {
			a.sink.Errorf(t.Pos, "Invalid name of struct type")
			return types.Type{}, false
		}
		return types.NewStructInst(sym.Type.StructID()), true
	default: // token.KwVoid
		return types.Type{}, false
	}
}

// resolveTypeAllowVoid is resolveDeclType plus void, for function
// return types only.
func (a *Analyzer) resolveTypeAllowVoid(t ast.TypeName) (types.Type, bool) {
	if t.Prim == token.KwVoid {
		return types.TVoid, true
	}
	return a.resolveDeclType(t)
}

// checkShadow implements -Wshadow: the base language legally allows a
// formal or local to shadow a global (spec.md §3.3's addDecl only
// checks the innermost scope), but a lint may still flag it.
func (a *Analyzer) checkShadow(pos token.Pos, name string) {
	if a.cfg == nil || !a.cfg.WarningEnabled(config.WarnShadow) {
		return
	}
	if outer := a.syms.LookupGlobal(name); outer != nil && outer.IsGlobal {
		a.sink.Warnf(pos, "declaration of %q shadows a global", name)
	}
}

func (a *Analyzer) varDecl(n *ast.Node) {
	d := n.Data.(ast.VarDeclData)
	typ, ok := a.resolveDeclType(d.Type)
	if !ok {
		if d.Type.Prim == token.KwVoid {
			a.sink.Errorf(n.Pos, "Non-function declared void")
		}
		n.Sym = nil
		return
	}

	sym := &symtab.Symbol{Name: d.Name, Kind: symtab.Var, Type: typ, IsGlobal: a.syms.IsGlobalScope(), Words: 1}
	if typ.IsStruct() {
		sym.Kind = symtab.StructInstance
		sym.DeclStruct = typ.StructID()
		sym.Words = a.wordsFor(typ)
	}
	if !sym.IsGlobal {
		sym.Offset = a.syms.NextLocalOffsetN(sym.Words)
		a.checkShadow(n.Pos, d.Name)
	}

	if err := a.syms.AddDecl(d.Name, sym); err != nil {
		a.sink.Errorf(n.Pos, "Multiply declared identifier")
		n.Sym = nil
		return
	}
	n.Sym = sym
}

// funcDecl adds the function's own symbol to the enclosing scope
// before analyzing its body, so recursive calls resolve (functions
// declared later in the file are not yet visible), then walks formals and body in
// a single function-level scope (spec.md §4.1: formals and locals
// share one frame, not nested scopes) to compute paramSize and
// localSize for the activation record.
func (a *Analyzer) funcDecl(n *ast.Node) {
	d := n.Data.(ast.FuncDeclData)

	retType, ok := a.resolveTypeAllowVoid(d.ReturnType)
	if !ok {
		// resolveDeclType already reported the diagnostic (void is
		// short-circuited to ok=true above and never reaches it).
		retType = types.TError
	}

	paramTypes := make([]types.Type, 0, len(d.Formals))
	for _, f := range d.Formals {
		fd := f.Data.(ast.FormalDeclData)
		ft, fok := a.resolveDeclType(fd.Type)
		if !fok {
			if fd.Type.Prim == token.KwVoid {
				a.sink.Errorf(f.Pos, "Non-function declared void")
			}
			ft = types.TError
		}
		paramTypes = append(paramTypes, ft)
	}

	fnSym := &symtab.Symbol{Name: d.Name, Kind: symtab.Fn, Type: types.NewFn(paramTypes, retType), IsGlobal: true, ParamTypes: paramTypes}
	if err := a.syms.AddDecl(d.Name, fnSym); err != nil {
		a.sink.Errorf(n.Pos, "Multiply declared identifier")
		n.Sym = nil
		fnSym = nil
	} else {
		n.Sym = fnSym
	}

	a.syms.AddScope()
	wasGlobal := a.syms.IsGlobalScope()
	a.syms.SetGlobalScope(false)
	a.syms.SetOffset(0)

	for i, f := range d.Formals {
		fd := f.Data.(ast.FormalDeclData)
		ft := paramTypes[i]
		fsym := &symtab.Symbol{Name: fd.Name, Kind: symtab.Var, Type: ft, Words: 1}
		if ft.IsStruct() {
			fsym.Kind = symtab.StructInstance
			fsym.DeclStruct = ft.StructID()
			fsym.Words = a.wordsFor(ft)
		}
		fsym.Offset = a.syms.NextLocalOffsetN(fsym.Words)
		a.checkShadow(f.Pos, fd.Name)
		if err := a.syms.AddDecl(fd.Name, fsym); err != nil {
			a.sink.Errorf(f.Pos, "Multiply declared identifier")
			f.Sym = nil
			continue
		}
		f.Sym = fsym
	}

	paramSize := -a.syms.CurrentOffset()
	if fnSym != nil {
		fnSym.ParamSize = paramSize
	}
	// Reserve the two words the prologue pushes below the formals:
	// saved RA and saved FP.
	a.syms.SetOffset(a.syms.CurrentOffset() - 2*symtab.WordSize)

	preBody := a.syms.CurrentOffset()
	bd := d.Body.Data.(ast.BlockData)
	a.declsAndStmts(bd.Decls, bd.Stmts)
	localSize := preBody - a.syms.CurrentOffset()
	if fnSym != nil {
		fnSym.LocalSize = localSize
	}

	a.syms.SetGlobalScope(wasGlobal)
	a.syms.RemoveScope()

	d.ExitLabel = fmt.Sprintf("_%s_Exit", d.Name)
	n.Data = d
}

// structDecl analyzes the struct's fields against the enclosing scope
// (so a field can name another already-declared struct type) into a
// fresh, flat field table, then declares the struct name itself.
// Fields are analyzed even when the struct's own name turns out to be
// a duplicate, matching the source language's normal "keep analyzing
// after an error" discipline.
func (a *Analyzer) structDecl(n *ast.Node) {
	d := n.Data.(ast.StructDeclData)
	id := types.NewStructID(d.Name)
	fields := symtab.New()

	// Field offsets are assigned positionally, one word per field,
	// regardless of whether -Fstructs is enabled: cheap to compute,
	// and only consulted when that feature actually generates code.
	// Nested struct-typed fields are not flattened; they occupy one
	// word like any other field (see DESIGN.md).
	for i, f := range d.Fields {
		fd := f.Data.(ast.VarDeclData)
		ft, ok := a.resolveDeclType(fd.Type)
		if !ok {
			if fd.Type.Prim == token.KwVoid {
				a.sink.Errorf(f.Pos, "Non-function declared void")
			}
			f.Sym = nil
			continue
		}
		fsym := &symtab.Symbol{Name: fd.Name, Kind: symtab.Var, Type: ft, Words: 1, Offset: i * symtab.WordSize}
		if ft.IsStruct() {
			fsym.Kind = symtab.StructInstance
			fsym.DeclStruct = ft.StructID()
		}
		if err := fields.AddDecl(fd.Name, fsym); err != nil {
			a.sink.Errorf(f.Pos, "Multiply declared field")
			f.Sym = nil
			continue
		}
		f.Sym = fsym
	}

	defSym := &symtab.Symbol{Name: d.Name, Kind: symtab.StructDef, Type: types.NewStructDef(id), IsGlobal: true, Fields: fields, FieldCount: len(d.Fields)}
	if err := a.syms.AddDecl(d.Name, defSym); err != nil {
		a.sink.Errorf(n.Pos, "Multiply declared identifier")
		n.Sym = nil
		return
	}
	n.Sym = defSym
	a.structDefs[id] = defSym
}

func (a *Analyzer) block(n *ast.Node) {
	a.syms.AddScope()
	bd := n.Data.(ast.BlockData)
	a.declsAndStmts(bd.Decls, bd.Stmts)
	a.syms.RemoveScope()
}

func (a *Analyzer) declsAndStmts(decls, stmts []*ast.Node) {
	for _, d := range decls {
		a.varDecl(d)
	}
	for _, s := range stmts {
		a.stmt(s)
	}
}

func (a *Analyzer) stmt(n *ast.Node) {
	switch n.Kind {
	case ast.Block:
		a.block(n)
	case ast.AssignStmt:
		d := n.Data.(ast.AssignStmtData)
		a.expr(d.Assign)
	case ast.IncDecStmt:
		d := n.Data.(ast.IncDecStmtData)
		a.expr(d.Target)
	case ast.ReadStmt:
		d := n.Data.(ast.ReadStmtData)
		a.expr(d.Target)
	case ast.WriteStmt:
		d := n.Data.(ast.WriteStmtData)
		a.expr(d.Expr)
	case ast.IfStmt:
		d := n.Data.(ast.IfStmtData)
		a.expr(d.Cond)
		a.block(d.Then)
	case ast.IfElseStmt:
		d := n.Data.(ast.IfElseStmtData)
		a.expr(d.Cond)
		a.block(d.Then)
		a.block(d.Else)
	case ast.WhileStmt:
		d := n.Data.(ast.WhileStmtData)
		a.expr(d.Cond)
		a.block(d.Body)
	case ast.RepeatStmt:
		d := n.Data.(ast.RepeatStmtData)
		a.expr(d.Count)
		a.block(d.Body)
	case ast.CallStmt:
		d := n.Data.(ast.CallStmtData)
		a.expr(d.Call)
	case ast.ReturnStmt:
		d := n.Data.(ast.ReturnStmtData)
		if d.Expr != nil {
			a.expr(d.Expr)
		}
	}
}

func (a *Analyzer) expr(n *ast.Node) {
	switch n.Kind {
	case ast.IntLit, ast.StringLit, ast.BoolLit:
		// no identifiers to resolve
	case ast.IdExpr:
		d := n.Data.(ast.IdExprData)
		sym := a.syms.LookupGlobal(d.Name)
		if sym == nil {
			a.sink.Errorf(n.Pos, "Undeclared identifier")
			n.Sym = nil
			return
		}
		n.Sym = sym
	case ast.DotAccessExpr:
		a.dotAccessExpr(n)
	case ast.AssignExpr:
		d := n.Data.(ast.AssignExprData)
		a.expr(d.Lhs)
		a.expr(d.Rhs)
	case ast.UnaryExpr:
		d := n.Data.(ast.UnaryExprData)
		a.expr(d.Operand)
	case ast.BinaryExpr:
		d := n.Data.(ast.BinaryExprData)
		a.expr(d.Left)
		a.expr(d.Right)
	case ast.CallExpr:
		d := n.Data.(ast.CallExprData)
		a.expr(d.Callee)
		for _, arg := range d.Args {
			a.expr(arg)
		}
	}
}

// dotAccessExpr resolves a.b, linking n.Sym to the field's own symbol
// so type check can read its type directly, and diagnosing the two
// name-analysis-time errors the field access can produce. Chained
// access (a.b.c) works because structTableOf accepts a DotAccessExpr
// base whose Sym was linked by a prior call to this same function.
func (a *Analyzer) dotAccessExpr(n *ast.Node) {
	d := n.Data.(ast.DotAccessExprData)
	a.expr(d.Base)

	def, ok := a.structTableOf(d.Base)
	if !ok {
		n.Sym = nil
		return
	}

	fieldSym := def.Fields.LookupGlobal(d.Field)
	if fieldSym == nil {
		a.sink.Errorf(d.FieldPos, "Invalid struct field name")
		n.Sym = nil
		return
	}
	n.Sym = fieldSym
}

// structTableOf returns the struct-definition symbol backing the
// value n denotes, so a dot-access on n can look up a field. It
// reports "Dot-access of non-struct type" itself when n does not
// denote a struct-typed value, so callers only need to check ok.
func (a *Analyzer) structTableOf(n *ast.Node) (*symtab.Symbol, bool) {
	switch n.Kind {
	case ast.IdExpr, ast.DotAccessExpr:
		if n.Sym == nil {
			return nil, false // already diagnosed by the caller's resolution
		}
		if n.Sym.Kind != symtab.StructInstance {
			a.sink.Errorf(n.Pos, "Dot-access of non-struct type")
			return nil, false
		}
		def, ok := a.structDefs[n.Sym.DeclStruct]
		if !ok {
			return nil, false
		}
		return def, true
	default:
		a.sink.Errorf(n.Pos, "Dot-access of non-struct type")
		return nil, false
	}
}
