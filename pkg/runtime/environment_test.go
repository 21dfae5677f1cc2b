package runtime

import (
	"errors"
	"math/big"
	"testing"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Define("answer", NewInteger(42)); err != nil {
		t.Fatalf("define failed: %v", err)
	}

	got, err := env.Get("answer")
	if err != nil {
		t.Fatalf("expected to retrieve binding: %v", err)
	}
	if iv, ok := got.(IntegerValue); !ok || iv.Val.Cmp(bigInt(42)) != 0 {
		t.Fatalf("unexpected value returned: %#v", got)
	}
}

func TestEnvironmentDefineRejectsDuplicateInSameScope(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Define("x", NewInteger(1)); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	err := env.Define("x", NewInteger(2))
	if !errors.Is(err, ErrDuplicateDefinition) {
		t.Fatalf("expected duplicate definition, got %v", err)
	}

	// Shadowing in a child scope is allowed.
	child := NewEnvironment(env)
	if err := child.Define("x", NewInteger(3)); err != nil {
		t.Fatalf("child define failed: %v", err)
	}
	got, _ := env.Get("x")
	if got.(IntegerValue).Val.Cmp(bigInt(1)) != 0 {
		t.Fatalf("parent binding changed: %#v", got)
	}
}

func TestEnvironmentAssignRespectsParentChain(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("counter", NewInteger(1))

	child := NewEnvironment(NewEnvironment(env))
	if err := child.Assign("counter", NewInteger(2)); err != nil {
		t.Fatalf("assign into ancestor failed: %v", err)
	}
	if child.Has("counter") {
		t.Fatalf("assignment must not create a binding in the child")
	}

	got, err := env.Get("counter")
	if err != nil {
		t.Fatalf("parent lookup failed: %v", err)
	}
	if iv, ok := got.(IntegerValue); !ok || iv.Val.Cmp(bigInt(2)) != 0 {
		t.Fatalf("unexpected counter value: %#v", got)
	}
}

func TestEnvironmentAssignUnknownFails(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("missing", NewInteger(0))
	if !errors.Is(err, ErrUndefinedSymbol) {
		t.Fatalf("expected undefined symbol, got %v", err)
	}
	if err.Error() != "assignment of 'missing': undefined symbol" {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
	if _, err := NewEnvironment(env).Get("missing"); !errors.Is(err, ErrUndefinedSymbol) {
		t.Fatalf("expected lookup failure, got %v", err)
	}
}

func TestEnvironmentDepthAndKeys(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("b", NewInteger(1))
	root.Define("a", NewInteger(2))
	leaf := NewEnvironment(NewEnvironment(root))
	if leaf.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", leaf.Depth())
	}
	keys := root.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestParseIntegerAndFormat(t *testing.T) {
	v, err := ParseInteger("-123456789012345678901234567890")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if Format(v) != "-123456789012345678901234567890" {
		t.Fatalf("unexpected text %q", Format(v))
	}
	if _, err := ParseInteger("12a"); err == nil {
		t.Fatalf("expected invalid literal error")
	}
	if Format(VoidValue{}) != "void" {
		t.Fatalf("unexpected void text")
	}
	if !Bool(true).Truthy() || Bool(false).Truthy() {
		t.Fatalf("bool cast mismatch")
	}
}

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}
