package runtime

import (
	"fmt"
	"math/big"

	"lara/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindFunction
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFunction:
		return "function"
	case KindVoid:
		return "void"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Integers
//-----------------------------------------------------------------------------

// IntegerValue is an unbounded signed integer. Booleans are 0 and 1.
type IntegerValue struct {
	Val *big.Int
}

func (v IntegerValue) Kind() Kind { return KindInteger }

func (v IntegerValue) String() string {
	if v.Val == nil {
		return "0"
	}
	return v.Val.String()
}

// Truthy reports whether the integer is nonzero.
func (v IntegerValue) Truthy() bool {
	return v.Val != nil && v.Val.Sign() != 0
}

// NewInteger wraps an int64.
func NewInteger(v int64) IntegerValue {
	return IntegerValue{Val: big.NewInt(v)}
}

// Bool returns 1 for true and 0 for false.
func Bool(b bool) IntegerValue {
	if b {
		return NewInteger(1)
	}
	return NewInteger(0)
}

// ParseInteger converts a decimal literal, with optional leading '-'.
func ParseInteger(lexeme string) (IntegerValue, error) {
	val, ok := new(big.Int).SetString(lexeme, 10)
	if !ok {
		return IntegerValue{}, fmt.Errorf("invalid integer literal %q", lexeme)
	}
	return IntegerValue{Val: val}, nil
}

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// FunctionValue wraps a FUNCTION_DEF subtree and its parameter names.
// Definition records the scope the function was defined in; whether calls
// use it as the parent scope is decided by the interpreter's scoping mode.
type FunctionValue struct {
	Name        string
	Declaration *ast.Node
	Params      []string
	Definition  *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) String() string {
	return fmt.Sprintf("<function %s>", v.Name)
}

// Body returns the STATEMENTS child of the declaration.
func (v *FunctionValue) Body() *ast.Node {
	return v.Declaration.Child(6)
}

//-----------------------------------------------------------------------------
// Void
//-----------------------------------------------------------------------------

// VoidValue is the result of a call that returned no value.
type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

func (VoidValue) String() string { return "void" }

// Format renders a value the way print emits it.
func Format(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return val.String()
	case *FunctionValue:
		return val.String()
	case VoidValue:
		return val.String()
	case nil:
		return "void"
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}
