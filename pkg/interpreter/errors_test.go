package interpreter

import (
	"errors"
	"testing"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/runtime"
)

func TestErrorMessageFormat(t *testing.T) {
	err := &Error{Kind: UndefinedSymbol, Node: ast.NodeVarRef, Name: "x", Message: "undefined symbol"}
	if got, want := err.Error(), "UndefinedSymbol at VAR_REF 'x': undefined symbol"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	bare := &Error{Kind: ReturnOutsideFunction}
	if got := bare.Error(); got != "ReturnOutsideFunction" {
		t.Fatalf("unexpected bare message %q", got)
	}
}

func TestScopeErrorsKeepCause(t *testing.T) {
	_, _, err := runStatements(t, nil, ast.RootSet("missing", ast.Int(1)))
	if !errors.Is(err, runtime.ErrUndefinedSymbol) {
		t.Fatalf("expected runtime cause in chain, got %v", err)
	}
	var scopeErr *runtime.ScopeError
	if !errors.As(err, &scopeErr) || scopeErr.Op != "assignment" {
		t.Fatalf("expected assignment ScopeError, got %v", err)
	}
	if errors.Is(err, DuplicateDefinition) {
		t.Fatalf("kind must not match other kinds")
	}
}

func TestSignalKindString(t *testing.T) {
	for kind, want := range map[SignalKind]string{SignalNone: "none", SignalReturn: "return", SignalBreak: "break"} {
		if kind.String() != want {
			t.Fatalf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestParseScopingMode(t *testing.T) {
	cases := map[string]ScopingMode{
		"":                CallTimeScoping,
		"call":            CallTimeScoping,
		"CALL_TIME":       CallTimeScoping,
		"definition":      DefinitionTimeScoping,
		"definition-time": DefinitionTimeScoping,
		"lexical":         DefinitionTimeScoping,
	}
	for input, want := range cases {
		got, err := ParseScopingMode(input)
		if err != nil || got != want {
			t.Fatalf("ParseScopingMode(%q) = %s, %v; want %s", input, got, err, want)
		}
	}
	if _, err := ParseScopingMode("sideways"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
