package asm

import (
	"strings"
	"testing"
)

func TestInstrFormatsCommaJoinedOperands(t *testing.T) {
	var buf strings.Builder
	w := New(&buf)
	w.Instr("add", "T0", "T0", "T1")
	if got, want := buf.String(), "\tadd\tT0, T0, T1\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInstrWithNoOperands(t *testing.T) {
	var buf strings.Builder
	w := New(&buf)
	w.Instr("syscall")
	if got, want := buf.String(), "\tsyscall\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSpaceSizesInBytes(t *testing.T) {
	var buf strings.Builder
	w := New(&buf)
	w.Space("_x", 3)
	if got, want := buf.String(), "_x:\t.space 12\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLabelAndDirectives(t *testing.T) {
	var buf strings.Builder
	w := New(&buf)
	w.Text()
	w.Globl("main")
	w.Label("main")
	got := buf.String()
	for _, want := range []string{".text\n", ".globl main\n", "main:\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}
