// Package asm is the assembly text sink of spec.md §2/§6: it formats
// directives, labels, and instructions to an output stream, and knows
// nothing about the AST or the compiler's semantics.
package asm

import (
	"fmt"
	"io"
	"strings"
)

// Writer emits SPIM-dialect assembly text. It preserves emission
// order exactly, per spec.md §5, since it is a thin wrapper over an
// io.Writer with no buffering or reordering of its own.
type Writer struct {
	out io.Writer
}

func New(out io.Writer) *Writer { return &Writer{out: out} }

func (w *Writer) Text()   { fmt.Fprintln(w.out, ".text") }
func (w *Writer) Data()   { fmt.Fprintln(w.out, ".data") }
func (w *Writer) Align2() { fmt.Fprintln(w.out, ".align 2") }

func (w *Writer) Globl(name string) { fmt.Fprintf(w.out, ".globl %s\n", name) }

func (w *Writer) Label(name string) { fmt.Fprintf(w.out, "%s:\n", name) }

// Space emits a labeled reservation of words words wide.
func (w *Writer) Space(label string, words int) {
	fmt.Fprintf(w.out, "%s:\t.space %d\n", label, words*4)
}

func (w *Writer) Asciiz(label, value string) {
	fmt.Fprintf(w.out, "%s:\t.asciiz %q\n", label, value)
}

// Instr emits one instruction or pseudo-instruction with comma-joined
// operands, e.g. Instr("add", "T0", "T0", "T1") -> "\tadd\tT0, T0, T1".
func (w *Writer) Instr(op string, args ...string) {
	if len(args) == 0 {
		fmt.Fprintf(w.out, "\t%s\n", op)
		return
	}
	fmt.Fprintf(w.out, "\t%s\t%s\n", op, strings.Join(args, ", "))
}

func (w *Writer) Comment(s string) { fmt.Fprintf(w.out, "\t# %s\n", s) }

func (w *Writer) Blank() { fmt.Fprintln(w.out) }
