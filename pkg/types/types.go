// Package types implements the closed type lattice of spec.md §3.1:
// primitives, named struct instances/definitions, function signatures,
// and the Error sentinel used to suppress cascading diagnostics.
package types

import "fmt"

// Kind tags the closed set of type shapes the language has.
type Kind int

const (
	Int Kind = iota
	Bool
	Void
	String
	StructInst // an instance of a named struct
	StructDef  // the struct name itself, used as a type constructor
	Fn
	Error // sentinel: a previously reported error, propagated without recheck
)

// StructID identifies a struct declaration by identity, not by its
// textual name, so that two different structs named the same way in
// different (illegal, but still analyzed) scopes never compare equal.
type StructID struct {
	name string
	seq  int
}

func (id StructID) String() string { return id.name }

var structSeq int

// NewStructID mints a fresh identity for a struct declaration named name.
func NewStructID(name string) StructID {
	structSeq++
	return StructID{name: name, seq: structSeq}
}

// Type is an immutable value in the type lattice. Zero value is not a
// valid type; use the constructors below.
type Type struct {
	kind    Kind
	strct   StructID
	params  []Type
	ret     *Type
}

func Prim(k Kind) Type {
	if k == StructInst || k == StructDef || k == Fn {
		panic("types: Prim used for a compound kind")
	}
	return Type{kind: k}
}

var (
	TInt    = Prim(Int)
	TBool   = Prim(Bool)
	TVoid   = Prim(Void)
	TString = Prim(String)
	TError  = Prim(Error)
)

// NewStructInst returns the type of a value of struct id.
func NewStructInst(id StructID) Type { return Type{kind: StructInst, strct: id} }

// NewStructDef returns the type of the struct name id itself (a type
// constructor, not a value type).
func NewStructDef(id StructID) Type { return Type{kind: StructDef, strct: id} }

// NewFn returns the type of a function with the given parameter types
// and return type.
func NewFn(params []Type, ret Type) Type {
	r := ret
	return Type{kind: Fn, params: params, ret: &r}
}

func (t Type) Kind() Kind       { return t.kind }
func (t Type) StructID() StructID { return t.strct }
func (t Type) Params() []Type   { return t.params }
func (t Type) Return() Type {
	if t.ret == nil {
		return TVoid
	}
	return *t.ret
}

func (t Type) IsInt() bool       { return t.kind == Int }
func (t Type) IsBool() bool      { return t.kind == Bool }
func (t Type) IsVoid() bool      { return t.kind == Void }
func (t Type) IsString() bool    { return t.kind == String }
func (t Type) IsStruct() bool    { return t.kind == StructInst }
func (t Type) IsStructDef() bool { return t.kind == StructDef }
func (t Type) IsFn() bool        { return t.kind == Fn }
func (t Type) IsError() bool     { return t.kind == Error }

// Equal implements the equality rule of spec.md §3.1: primitives
// compare by tag, struct instances compare by declaration identity,
// and Fn/StructDef are never equal to anything (including themselves)
// since the source language never compares them as values.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case StructInst:
		return t.strct == o.strct
	case Fn, StructDef:
		return false
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.kind {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Void:
		return "void"
	case String:
		return "string"
	case StructInst:
		return fmt.Sprintf("struct %s", t.strct)
	case StructDef:
		return fmt.Sprintf("struct-name %s", t.strct)
	case Fn:
		return fmt.Sprintf("fn(%v)->%s", t.params, t.Return())
	case Error:
		return "<error>"
	default:
		return "<invalid>"
	}
}
