package sema

import (
	"testing"

	"github.com/xplshn/cflatc/pkg/config"
)

func TestArithmeticOnBool(t *testing.T) {
	prog, sink := parseProgram(t, "void main() { bool b; int x; x = b + 1; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Arithmetic operator applied to non-numeric operand") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestLogicalOnInt(t *testing.T) {
	prog, sink := parseProgram(t, "void main() { bool b; int x; b = x && true; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Logical operator applied to non-bool operand") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestTypeMismatchAssignment(t *testing.T) {
	prog, sink := parseProgram(t, "void main() { int x; bool b; x = b; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Type mismatch") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestCallWithWrongArgCount(t *testing.T) {
	prog, sink := parseProgram(t, "int f(int a) { return a; } void main() { f(1, 2); }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Function call with wrong number of args") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestBadReturnValue(t *testing.T) {
	prog, sink := parseProgram(t, "bool f() { return 1; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Bad return value") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestMissingReturnValue(t *testing.T) {
	prog, sink := parseProgram(t, "int f() { return; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Missing return value") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestReturnValueInVoidFunction(t *testing.T) {
	prog, sink := parseProgram(t, "void f() { return 1; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Return with a value in a void function") {
		t.Errorf("got %v", diagMessages(sink))
	}
}

func TestErrorSuppressesCascade(t *testing.T) {
	// x is undeclared (name-analysis error); the arithmetic on it must
	// not ALSO produce a type-check diagnostic.
	prog, sink := parseProgram(t, "void main() { int y; y = x + 1; }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if containsMessage(sink, "Arithmetic operator applied to non-numeric operand") {
		t.Errorf("an already-undeclared operand must not cascade into a second diagnostic: %v", diagMessages(sink))
	}
}

func TestWriteVoidCallResult(t *testing.T) {
	prog, sink := parseProgram(t, "void f() { } void main() { cout << f(); }")
	NewAnalyzer(sink, config.New()).Analyze(prog)
	NewChecker(sink).Check(prog)
	if !containsMessage(sink, "Attempt to write void") {
		t.Errorf("got %v", diagMessages(sink))
	}
}
