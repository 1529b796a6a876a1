package main

import (
	"os"

	"github.com/xplshn/cflatc/pkg/ast"
	"github.com/xplshn/cflatc/pkg/config"
	"github.com/xplshn/cflatc/pkg/lexer"
	"github.com/xplshn/cflatc/pkg/parser"
	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/sema"
	"github.com/xplshn/cflatc/pkg/token"
)

// frontend runs the lexer, parser, and both semantic passes over the
// file at path. It stops early (skipping type check) if name analysis
// already reported a fatal error, per spec.md §7.
type frontend struct {
	sink     *report.Sink
	cfg      *config.Config
	prog     *ast.Node
	analyzer *sema.Analyzer
	hasMain  bool
}

func runFrontend(path string, cfg *config.Config) (*frontend, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sink := report.New(os.Stderr)
	sink.SetSource(string(src))
	lx := lexer.New([]rune(string(src)), sink)
	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}

	p := parser.New(toks, sink)
	prog := p.Parse()

	fe := &frontend{sink: sink, cfg: cfg, prog: prog}
	if sink.FatalCount() > 0 {
		return fe, nil
	}

	fe.analyzer = sema.NewAnalyzer(sink, cfg)
	fe.hasMain = fe.analyzer.Analyze(prog)
	if sink.FatalCount() > 0 {
		return fe, nil
	}

	checker := sema.NewChecker(sink)
	checker.Check(prog)
	return fe, nil
}
