package codegen

import (
	"os"
	"strings"
	"testing"

	"github.com/xplshn/cflatc/pkg/asm"
	"github.com/xplshn/cflatc/pkg/config"
	"github.com/xplshn/cflatc/pkg/lexer"
	"github.com/xplshn/cflatc/pkg/parser"
	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/sema"
	"github.com/xplshn/cflatc/pkg/token"
)

func compile(t *testing.T, src string, cfg *config.Config) string {
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
	prog := parser.New(toks, sink).Parse()
	sema.NewAnalyzer(sink, cfg).Analyze(prog)
	sema.NewChecker(sink).Check(prog)
	if sink.FatalCount() != 0 {
		t.Fatalf("unexpected semantic error(s) for %q: %v", src, sink.Diagnostics())
	}

	var buf strings.Builder
	New(asm.New(&buf), cfg).Generate(prog)
	return buf.String()
}

func TestMainPrologueAndEpilogue(t *testing.T) {
	out := compile(t, "void main() { }", config.New())
	if !strings.Contains(out, "main:") {
		t.Error("missing main label")
	}
	if !strings.Contains(out, "sw\tRA, 0(SP)") {
		t.Error("prologue should push RA")
	}
	if !strings.Contains(out, "sw\tFP, 0(SP)") {
		t.Error("prologue should push FP")
	}
	if !strings.Contains(out, "li\tV0, 10") || !strings.Contains(out, "syscall") {
		t.Error("main's epilogue should exit via syscall 10")
	}
}

func TestNonMainReturnsViaJR(t *testing.T) {
	out := compile(t, "int f() { return 1; } void main() { }", config.New())
	if !strings.Contains(out, "_f:") {
		t.Error("missing _f label")
	}
	if !strings.Contains(out, "jr\tRA") {
		t.Error("a non-main function should return via jr RA")
	}
}

func TestGlobalVarGetsSpace(t *testing.T) {
	out := compile(t, "int x; void main() { }", config.New())
	if !strings.Contains(out, "_x:\t.space 4") {
		t.Errorf("expected a 4-byte global reservation, got:\n%s", out)
	}
}

func TestIfEmitsBranchAroundBlock(t *testing.T) {
	out := compile(t, "void main() { bool b; if (b) { b = false; } }", config.New())
	if !strings.Contains(out, "beq\tT0, 0,") {
		t.Errorf("expected a conditional branch, got:\n%s", out)
	}
}

func TestShortCircuitAndEmitsTwoLabels(t *testing.T) {
	out := compile(t, "void main() { bool a; bool b; bool c; c = a && b; }", config.New())
	if strings.Count(out, ".L") < 2 {
		t.Errorf("&& should generate at least two control-flow labels, got:\n%s", out)
	}
}

func TestDotAccessEmitsNothingByDefault(t *testing.T) {
	out := compile(t, "struct P { int x; }; struct P p; void main() { p.x = 1; }", config.New())
	if strings.Contains(out, "T1)") {
		t.Errorf("dot-access codegen must be a no-op unless -Fstructs is set, got:\n%s", out)
	}
}

func TestDotAccessEmitsStoreWithFstructs(t *testing.T) {
	cfg := config.New()
	cfg.SetFeature(config.FeatStructs, true)
	out := compile(t, "struct P { int x; int y; }; struct P p; void main() { p.y = 1; }", cfg)
	if !strings.Contains(out, "sw\tT0, 4(T1)") {
		t.Errorf("expected a store to field offset 4, got:\n%s", out)
	}
}

func TestRepeatEmitsNothingByDefault(t *testing.T) {
	out := compile(t, "void main() { int x; repeat (3) { x = 1; } }", config.New())
	if strings.Contains(out, "blez") {
		t.Errorf("repeat codegen must be a no-op unless -Frepeat is set, got:\n%s", out)
	}
}

func TestRepeatEmitsLoopWithFrepeat(t *testing.T) {
	cfg := config.New()
	cfg.SetFeature(config.FeatRepeat, true)
	out := compile(t, "void main() { int x; repeat (3) { x = 1; } }", cfg)
	if !strings.Contains(out, "blez") {
		t.Errorf("expected a decrementing loop, got:\n%s", out)
	}
}
