package lexer

import (
	"os"
	"testing"

	"github.com/xplshn/cflatc/pkg/report"
	"github.com/xplshn/cflatc/pkg/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	sink := report.New(os.Stderr)
	l := New([]rune(src), sink)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if sink.FatalCount() > 0 {
		t.Fatalf("unexpected lexer error(s) for %q", src)
	}
	return toks
}

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestKeywordsAndPunctuation(t *testing.T) {
	toks := tokenize(t, "int x; if (x) { }")
	got := typesOf(toks)
	want := []token.Type{
		token.KwInt, token.Ident, token.Semi,
		token.KwIf, token.LParen, token.Ident, token.RParen,
		token.LBrace, token.RBrace, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	toks := tokenize(t, "a && b || c == d != e <= f >= g")
	got := typesOf(toks)
	want := []token.Type{
		token.Ident, token.AndAnd, token.Ident, token.OrOr, token.Ident,
		token.Eq, token.Ident, token.Neq, token.Ident, token.Lte, token.Ident,
		token.Gte, token.Ident, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIncDecAndStreams(t *testing.T) {
	toks := tokenize(t, "x++; y--; cin >> x; cout << y;")
	got := typesOf(toks)
	want := []token.Type{
		token.Ident, token.PlusPlus, token.Semi,
		token.Ident, token.MinusMinus, token.Semi,
		token.KwCin, token.ShiftR, token.Ident, token.Semi,
		token.KwCout, token.ShiftL, token.Ident, token.Semi,
		token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStringLiteralValue(t *testing.T) {
	toks := tokenize(t, `"hello world"`)
	if toks[0].Type != token.StrLit || toks[0].Value != "hello world" {
		t.Errorf("got %+v, want StrLit %q", toks[0], "hello world")
	}
}

func TestLineCommentIsSkipped(t *testing.T) {
	toks := tokenize(t, "int x; // this is a comment\nint y;")
	got := typesOf(toks)
	want := []token.Type{token.KwInt, token.Ident, token.Semi, token.KwInt, token.Ident, token.Semi, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	sink := report.New(os.Stderr)
	l := New([]rune(`"oops`), sink)
	l.Next()
	if sink.FatalCount() == 0 {
		t.Error("expected an error for an unterminated string literal")
	}
}
