// Package report implements the (line, col, message) diagnostic sink
// spec.md §6/§7 requires upstream and downstream of the core passes.
// Unlike the teacher's pkg/util, which drives colored diagnostics
// through package-level state, Sink is an injected value so a single
// process can run more than one compilation without shared mutable
// state (spec.md §9, "avoid process-wide mutation").
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/xplshn/cflatc/pkg/token"
)

// Severity distinguishes a fatal diagnostic from an advisory one. Only
// fatal diagnostics contribute to FatalCount, which the driver uses to
// decide whether to run the next pass (spec.md §7).
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

// Diagnostic is one reported message.
type Diagnostic struct {
	Severity Severity
	Pos      token.Pos
	Message  string
}

// Sink collects diagnostics and can render them to a stream.
type Sink struct {
	out        io.Writer
	color      bool
	wrapWidth  int
	diags      []Diagnostic
	fatalCount int
	lines      []string
}

// New builds a Sink that writes to out, auto-detecting color support
// via isatty and wrapping width via term.GetSize when out is backed by
// a file descriptor.
func New(out io.Writer) *Sink {
	s := &Sink{out: out, wrapWidth: 100}
	type fder interface{ Fd() uintptr }
	if f, ok := out.(fder); ok {
		fd := f.Fd()
		s.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		if w, _, err := term.GetSize(int(fd)); err == nil && w > 20 {
			s.wrapWidth = w
		}
	}
	return s
}

// SetSource gives the sink the original source text so it can print the
// offending line under a diagnostic, the way the teacher's printErrorLine
// does. Safe to call before or after diagnostics are reported; Flush
// always reads the source as it stands at flush time.
func (s *Sink) SetSource(src string) {
	s.lines = strings.Split(src, "\n")
}

// Errorf reports a fatal diagnostic at pos.
func (s *Sink) Errorf(pos token.Pos, format string, args ...interface{}) {
	s.report(SevError, pos, fmt.Sprintf(format, args...))
}

// Warnf reports an advisory diagnostic at pos.
func (s *Sink) Warnf(pos token.Pos, format string, args ...interface{}) {
	s.report(SevWarning, pos, fmt.Sprintf(format, args...))
}

func (s *Sink) report(sev Severity, pos token.Pos, msg string) {
	s.diags = append(s.diags, Diagnostic{Severity: sev, Pos: pos, Message: msg})
	if sev == SevError {
		s.fatalCount++
	}
}

// FatalCount is the number of Errorf calls made so far.
func (s *Sink) FatalCount() int { return s.fatalCount }

// Diagnostics returns every diagnostic reported so far, in order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diags }

// Flush renders every collected diagnostic to the sink's writer.
func (s *Sink) Flush() {
	for _, d := range s.diags {
		s.print(d)
	}
}

func (s *Sink) print(d Diagnostic) {
	label, color := "error", "\033[31m"
	if d.Severity == SevWarning {
		label, color = "warning", "\033[33m"
	}
	prefix := fmt.Sprintf("%d:%d: ", d.Pos.Line, d.Pos.Col)
	msg := d.Message
	if s.color {
		fmt.Fprintf(s.out, "%s%s%s:\033[0m %s\n", prefix, color, label, wrap(msg, s.wrapWidth, len(prefix)))
	} else {
		fmt.Fprintf(s.out, "%s%s: %s\n", prefix, label, wrap(msg, s.wrapWidth, len(prefix)))
	}
	s.printSourceLine(d.Pos)
}

// printSourceLine prints the offending source line and a caret under the
// reported column, mirroring the teacher's printErrorLine. It is a no-op
// when SetSource was never called, or pos is the synthetic (0,0)
// coordinate used for the missing-main diagnostic.
func (s *Sink) printSourceLine(pos token.Pos) {
	if pos.Line <= 0 || pos.Line > len(s.lines) {
		return
	}
	line := s.lines[pos.Line-1]
	fmt.Fprintf(s.out, "  %s\n", line)
	col := pos.Col - 1
	if col < 0 {
		col = 0
	}
	if s.color {
		fmt.Fprintf(s.out, "  %s\033[32m^\033[0m\n", strings.Repeat(" ", col))
	} else {
		fmt.Fprintf(s.out, "  %s^\n", strings.Repeat(" ", col))
	}
}

// wrap folds msg onto continuation lines indented to align under the
// first line's text once it would overflow width columns.
func wrap(msg string, width, indent int) string {
	if width <= indent+10 || len(msg) <= width-indent {
		return msg
	}
	pad := strings.Repeat(" ", indent)
	words := strings.Fields(msg)
	var b strings.Builder
	col := indent
	for i, w := range words {
		if i > 0 {
			if col+1+len(w) > width {
				b.WriteString("\n")
				b.WriteString(pad)
				col = indent
			} else {
				b.WriteString(" ")
				col++
			}
		}
		b.WriteString(w)
		col += len(w)
	}
	return b.String()
}
