// Package ast defines the abstract syntax tree the three semantic
// passes walk. Following spec.md §9 ("deep hierarchy of AST node
// kinds"), the tree is a closed tagged sum: one NodeKind per shape,
// dispatched on by each pass, rather than an open class hierarchy.
//
// Per spec.md §9 ("pass annotation of AST"), name analysis and type
// check do not mutate the tree's shape; they only fill in the two
// annotation fields every Node carries (Sym, Typ), plus a function's
// FuncDeclData.ExitLabel, which downstream passes read.
package ast

import (
	"github.com/xplshn/cflatc/pkg/symtab"
	"github.com/xplshn/cflatc/pkg/token"
	"github.com/xplshn/cflatc/pkg/types"
)

// Kind tags the shape of a Node.
type Kind int

const (
	Program Kind = iota

	// Declarations
	VarDecl
	FuncDecl
	StructDecl
	FormalDecl

	// Statements
	Block
	AssignStmt
	IncDecStmt
	ReadStmt
	WriteStmt
	IfStmt
	IfElseStmt
	WhileStmt
	RepeatStmt
	CallStmt
	ReturnStmt

	// Expressions
	IntLit
	StringLit
	BoolLit
	IdExpr
	DotAccessExpr
	AssignExpr
	UnaryExpr
	BinaryExpr
	CallExpr
)

// TypeName is the surface-syntax spelling of a declared type, before
// name analysis resolves "struct S" to a concrete struct identity.
type TypeName struct {
	Prim      token.Type // KwInt, KwBool, KwVoid, KwString, or KwStruct
	StructTag string     // set when Prim == KwStruct
	Pos       token.Pos
}

// Node is one AST node. Sym and Typ are the side annotations written
// by name analysis and type check respectively; Data holds the
// node-kind-specific payload.
type Node struct {
	Kind Kind
	Pos  token.Pos
	Data interface{}

	Sym *symtab.Symbol
	Typ types.Type
}

// --- Declaration payloads ---

type ProgramData struct {
	Decls []*Node
}

type VarDeclData struct {
	Name string
	Type TypeName
}

type FormalDeclData struct {
	Name string
	Type TypeName
}

type FuncDeclData struct {
	Name       string
	Formals    []*Node // FormalDecl
	ReturnType TypeName
	Body       *Node // Block

	// filled by name analysis for use by code generation
	ExitLabel string
}

type StructDeclData struct {
	Name   string
	Fields []*Node // VarDecl
}

// --- Statement payloads ---

type BlockData struct {
	Decls []*Node
	Stmts []*Node
}

type AssignStmtData struct {
	Assign *Node // AssignExpr
}

type IncDecStmtData struct {
	Target *Node
	Op     token.Type // PlusPlus or MinusMinus
}

type ReadStmtData struct {
	Target *Node
}

type WriteStmtData struct {
	Expr *Node
}

type IfStmtData struct {
	Cond *Node
	Then *Node // Block
}

type IfElseStmtData struct {
	Cond *Node
	Then *Node // Block
	Else *Node // Block
}

type WhileStmtData struct {
	Cond *Node
	Body *Node // Block
}

type RepeatStmtData struct {
	Count *Node
	Body  *Node // Block
}

type CallStmtData struct {
	Call *Node // CallExpr
}

type ReturnStmtData struct {
	Expr *Node // nil for bare "return"
}

// --- Expression payloads ---

type IntLitData struct{ Value int64 }
type StringLitData struct{ Value string }
type BoolLitData struct{ Value bool }

type IdExprData struct{ Name string }

type DotAccessExprData struct {
	Base     *Node
	Field    string
	FieldPos token.Pos
}

type AssignExprData struct {
	Lhs *Node
	Rhs *Node
}

type UnaryExprData struct {
	Op      token.Type // Minus or Not
	Operand *Node
}

type BinaryExprData struct {
	Op    token.Type
	Left  *Node
	Right *Node
}

type CallExprData struct {
	Callee *Node // IdExpr
	Args   []*Node
}

// --- Constructors ---

func NewProgram(decls []*Node) *Node {
	return &Node{Kind: Program, Data: ProgramData{Decls: decls}}
}

func NewVarDecl(pos token.Pos, name string, typ TypeName) *Node {
	return &Node{Kind: VarDecl, Pos: pos, Data: VarDeclData{Name: name, Type: typ}}
}

func NewFormalDecl(pos token.Pos, name string, typ TypeName) *Node {
	return &Node{Kind: FormalDecl, Pos: pos, Data: FormalDeclData{Name: name, Type: typ}}
}

func NewFuncDecl(pos token.Pos, name string, formals []*Node, ret TypeName, body *Node) *Node {
	return &Node{Kind: FuncDecl, Pos: pos, Data: FuncDeclData{Name: name, Formals: formals, ReturnType: ret, Body: body}}
}

func NewStructDecl(pos token.Pos, name string, fields []*Node) *Node {
	return &Node{Kind: StructDecl, Pos: pos, Data: StructDeclData{Name: name, Fields: fields}}
}

func NewBlock(pos token.Pos, decls []*Node, stmts []*Node) *Node {
	return &Node{Kind: Block, Pos: pos, Data: BlockData{Decls: decls, Stmts: stmts}}
}

func NewAssignExpr(pos token.Pos, lhs, rhs *Node) *Node {
	return &Node{Kind: AssignExpr, Pos: pos, Data: AssignExprData{Lhs: lhs, Rhs: rhs}}
}

func NewAssignStmt(pos token.Pos, assign *Node) *Node {
	return &Node{Kind: AssignStmt, Pos: pos, Data: AssignStmtData{Assign: assign}}
}

func NewIncDecStmt(pos token.Pos, target *Node, op token.Type) *Node {
	return &Node{Kind: IncDecStmt, Pos: pos, Data: IncDecStmtData{Target: target, Op: op}}
}

func NewReadStmt(pos token.Pos, target *Node) *Node {
	return &Node{Kind: ReadStmt, Pos: pos, Data: ReadStmtData{Target: target}}
}

func NewWriteStmt(pos token.Pos, expr *Node) *Node {
	return &Node{Kind: WriteStmt, Pos: pos, Data: WriteStmtData{Expr: expr}}
}

func NewIfStmt(pos token.Pos, cond, then *Node) *Node {
	return &Node{Kind: IfStmt, Pos: pos, Data: IfStmtData{Cond: cond, Then: then}}
}

func NewIfElseStmt(pos token.Pos, cond, then, els *Node) *Node {
	return &Node{Kind: IfElseStmt, Pos: pos, Data: IfElseStmtData{Cond: cond, Then: then, Else: els}}
}

func NewWhileStmt(pos token.Pos, cond, body *Node) *Node {
	return &Node{Kind: WhileStmt, Pos: pos, Data: WhileStmtData{Cond: cond, Body: body}}
}

func NewRepeatStmt(pos token.Pos, count, body *Node) *Node {
	return &Node{Kind: RepeatStmt, Pos: pos, Data: RepeatStmtData{Count: count, Body: body}}
}

func NewCallStmt(pos token.Pos, call *Node) *Node {
	return &Node{Kind: CallStmt, Pos: pos, Data: CallStmtData{Call: call}}
}

func NewReturnStmt(pos token.Pos, expr *Node) *Node {
	return &Node{Kind: ReturnStmt, Pos: pos, Data: ReturnStmtData{Expr: expr}}
}

func NewIntLit(pos token.Pos, v int64) *Node {
	return &Node{Kind: IntLit, Pos: pos, Data: IntLitData{Value: v}}
}

func NewStringLit(pos token.Pos, v string) *Node {
	return &Node{Kind: StringLit, Pos: pos, Data: StringLitData{Value: v}}
}

func NewBoolLit(pos token.Pos, v bool) *Node {
	return &Node{Kind: BoolLit, Pos: pos, Data: BoolLitData{Value: v}}
}

func NewIdExpr(pos token.Pos, name string) *Node {
	return &Node{Kind: IdExpr, Pos: pos, Data: IdExprData{Name: name}}
}

func NewDotAccessExpr(pos token.Pos, base *Node, field string, fieldPos token.Pos) *Node {
	return &Node{Kind: DotAccessExpr, Pos: pos, Data: DotAccessExprData{Base: base, Field: field, FieldPos: fieldPos}}
}

func NewUnaryExpr(pos token.Pos, op token.Type, operand *Node) *Node {
	return &Node{Kind: UnaryExpr, Pos: pos, Data: UnaryExprData{Op: op, Operand: operand}}
}

func NewBinaryExpr(pos token.Pos, op token.Type, left, right *Node) *Node {
	return &Node{Kind: BinaryExpr, Pos: pos, Data: BinaryExprData{Op: op, Left: left, Right: right}}
}

func NewCallExpr(pos token.Pos, callee *Node, args []*Node) *Node {
	return &Node{Kind: CallExpr, Pos: pos, Data: CallExprData{Callee: callee, Args: args}}
}
