package symtab

import (
	"errors"
	"testing"

	"github.com/xplshn/cflatc/pkg/types"
)

func TestAddDeclDuplicateInSameScope(t *testing.T) {
	tab := New()
	sym := &Symbol{Name: "x", Kind: Var, Type: types.TInt}
	if err := tab.AddDecl("x", sym); err != nil {
		t.Fatalf("first AddDecl failed: %v", err)
	}
	if err := tab.AddDecl("x", sym); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second AddDecl err = %v, want ErrDuplicate", err)
	}
}

func TestShadowingAcrossScopesIsLegal(t *testing.T) {
	tab := New()
	outer := &Symbol{Name: "x", Kind: Var, Type: types.TInt, IsGlobal: true}
	if err := tab.AddDecl("x", outer); err != nil {
		t.Fatalf("outer AddDecl: %v", err)
	}

	tab.AddScope()
	inner := &Symbol{Name: "x", Kind: Var, Type: types.TBool}
	if err := tab.AddDecl("x", inner); err != nil {
		t.Fatalf("shadowing declaration must be legal, got: %v", err)
	}
	if got := tab.LookupGlobal("x"); got != inner {
		t.Error("LookupGlobal should find the innermost declaration first")
	}
	if got := tab.LookupLocal("x"); got != inner {
		t.Error("LookupLocal should find the innermost declaration")
	}

	if err := tab.RemoveScope(); err != nil {
		t.Fatalf("RemoveScope: %v", err)
	}
	if got := tab.LookupGlobal("x"); got != outer {
		t.Error("after popping the inner scope, the outer declaration should be visible again")
	}
}

func TestRemoveScopeOnEmptyTable(t *testing.T) {
	tab := &Table{}
	if err := tab.RemoveScope(); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("RemoveScope on empty table = %v, want ErrEmptyTable", err)
	}
}

func TestNextLocalOffsetDescends(t *testing.T) {
	tab := New()
	first := tab.NextLocalOffset()
	second := tab.NextLocalOffset()
	if first != 0 {
		t.Errorf("first offset = %d, want 0", first)
	}
	if second != -WordSize {
		t.Errorf("second offset = %d, want %d", second, -WordSize)
	}
}

func TestNextLocalOffsetNAllocatesContiguousBlock(t *testing.T) {
	tab := New()
	base := tab.NextLocalOffsetN(3)
	next := tab.NextLocalOffset()
	if base != 0 {
		t.Errorf("base offset = %d, want 0", base)
	}
	if next != -3*WordSize {
		t.Errorf("offset after a 3-word block = %d, want %d", next, -3*WordSize)
	}
}
