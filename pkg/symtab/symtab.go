// Package symtab implements the symbol table and symbol records of
// spec.md §3.2/§3.3: an ordered stack of scopes, offset bookkeeping
// for locals and formals, and the four symbol kinds the source
// language declares.
package symtab

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/xplshn/cflatc/pkg/types"
)

// Kind is the declaration kind a Symbol records.
type Kind int

const (
	Var Kind = iota
	Fn
	StructInstance
	StructDef
)

// WordSize is the storage unit for locals/formals/globals (spec.md §4.3).
const WordSize = 4

// Symbol is the compiler's record for one declaration.
type Symbol struct {
	Name     string
	Kind     Kind
	Type     types.Type
	Offset   int  // FP-relative for locals/formals (meaningless for globals); byte offset within the struct for a field
	IsGlobal bool
	Words    int // storage size in words; 1 unless -Fstructs inlines a struct instance

	// Fn only
	ParamTypes []types.Type
	ParamSize  int
	LocalSize  int

	// StructInstance only: identity of the declaring struct type
	DeclStruct types.StructID

	// StructDef only: the struct body's own field table, plus the
	// field count used to size instances when -Fstructs is enabled
	Fields     *Table
	FieldCount int
}

// bucketCount is the fixed fan-out of each scope's hash table. Real
// programs declare few names per scope, so a small fixed table with
// chaining beats the bookkeeping of a resizable one.
const bucketCount = 16

type entry struct {
	name string
	sym  *Symbol
	next *entry
}

// scope is one lexical level: a chained hash table keyed by the
// xxhash of the identifier text, in the spirit of the way compilers in
// this idiom hand-roll scope lookup instead of reaching for a builtin
// map.
type scope struct {
	buckets [bucketCount]*entry
	parent  *scope
}

func newScope(parent *scope) *scope { return &scope{parent: parent} }

func bucketFor(name string) int {
	return int(xxhash.Sum64String(name) % bucketCount)
}

func (s *scope) get(name string) *Symbol {
	for e := s.buckets[bucketFor(name)]; e != nil; e = e.next {
		if e.name == name {
			return e.sym
		}
	}
	return nil
}

func (s *scope) put(name string, sym *Symbol) {
	b := bucketFor(name)
	s.buckets[b] = &entry{name: name, sym: sym, next: s.buckets[b]}
}

// ErrEmptyTable is returned by RemoveScope when there is no scope to pop.
var ErrEmptyTable = errors.New("symtab: no scope to remove")

// ErrDuplicate is returned by AddDecl when name already exists in the
// innermost scope.
var ErrDuplicate = errors.New("symtab: duplicate declaration")

// Table is the ordered stack of scopes described in spec.md §3.3. The
// front (innermost) scope is index 0 in traversal order; internally
// it is the head of a singly linked list of scopes so pushing/popping
// is O(1).
type Table struct {
	top          *scope
	isGlobal     bool
	currentOffset int
}

// New returns a table with one outer scope already pushed, global-scope
// flag true, and offset 0 — the state spec.md §3.3 mandates at
// construction.
func New() *Table {
	return &Table{top: newScope(nil), isGlobal: true}
}

func (t *Table) AddScope() { t.top = newScope(t.top) }

func (t *Table) RemoveScope() error {
	if t.top == nil {
		return ErrEmptyTable
	}
	t.top = t.top.parent
	return nil
}

// AddDecl inserts sym under name in the innermost scope. It returns
// ErrDuplicate if name is already declared there.
func (t *Table) AddDecl(name string, sym *Symbol) error {
	if t.top == nil {
		return ErrEmptyTable
	}
	if t.top.get(name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	t.top.put(name, sym)
	return nil
}

// LookupLocal searches only the innermost scope.
func (t *Table) LookupLocal(name string) *Symbol {
	if t.top == nil {
		return nil
	}
	return t.top.get(name)
}

// LookupGlobal searches inner-to-outer and returns the first hit,
// despite the name (kept from the original's SymTable.lookupGlobal,
// which searches every open scope, not just the file-level one).
func (t *Table) LookupGlobal(name string) *Symbol {
	for s := t.top; s != nil; s = s.parent {
		if sym := s.get(name); sym != nil {
			return sym
		}
	}
	return nil
}

func (t *Table) IsGlobalScope() bool       { return t.isGlobal }
func (t *Table) SetGlobalScope(v bool)     { t.isGlobal = v }
func (t *Table) CurrentOffset() int        { return t.currentOffset }
func (t *Table) SetOffset(n int)           { t.currentOffset = n }

// NextLocalOffset allocates and returns the offset for one more word
// of local/formal storage, per spec.md §4.1: assign currentOffset,
// then decrement it by WordSize.
func (t *Table) NextLocalOffset() int {
	return t.NextLocalOffsetN(1)
}

// NextLocalOffsetN allocates a contiguous block of words words wide
// and returns the offset of its first word, for a -Fstructs struct
// instance inlined into the frame.
func (t *Table) NextLocalOffsetN(words int) int {
	off := t.currentOffset
	t.currentOffset -= WordSize * words
	return off
}
