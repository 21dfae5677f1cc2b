package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/runtime"
)

// ErrorKind classifies evaluation failures. Kinds are themselves errors so
// callers can match with errors.Is(err, interpreter.UndefinedSymbol).
type ErrorKind string

const (
	UndefinedSymbol       ErrorKind = "UndefinedSymbol"
	DuplicateDefinition   ErrorKind = "DuplicateDefinition"
	InvalidCallTarget     ErrorKind = "InvalidCallTarget"
	ReturnOutsideFunction ErrorKind = "ReturnOutsideFunction"
	MalformedNode         ErrorKind = "MalformedNode"
	ResourceExhaustion    ErrorKind = "ResourceExhaustion"
	TypeMismatch          ErrorKind = "TypeMismatch"
	DivisionByZero        ErrorKind = "DivisionByZero"
	Interrupted           ErrorKind = "Interrupted"
)

func (k ErrorKind) Error() string { return string(k) }

// Error is a fatal evaluation error with the node kind and identifier that
// triggered it.
type Error struct {
	Kind    ErrorKind
	Node    ast.NodeType
	Name    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Node != "" {
		fmt.Fprintf(&b, " at %s", e.Node)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " '%s'", e.Name)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, node *ast.Node, name string, format string, args ...any) *Error {
	return &Error{Kind: kind, Node: node.NodeType(), Name: name, Message: fmt.Sprintf(format, args...)}
}

// scopeError converts a runtime scope failure into an evaluation error.
func scopeError(err error, node *ast.Node, name string) error {
	if err == nil {
		return nil
	}
	kind := UndefinedSymbol
	if errors.Is(err, runtime.ErrDuplicateDefinition) {
		kind = DuplicateDefinition
	}
	var se *runtime.ScopeError
	msg := err.Error()
	if errors.As(err, &se) {
		msg = se.Err.Error()
	}
	return &Error{Kind: kind, Node: node.NodeType(), Name: name, Message: msg, Err: err}
}

// malformed reports a node that violates its production.
func malformed(node *ast.Node, err error) error {
	return &Error{Kind: MalformedNode, Node: node.NodeType(), Message: err.Error(), Err: err}
}

// expectShape wraps ast.Node.Expect as a MalformedNode error.
func expectShape(node *ast.Node, t ast.NodeType, arities ...int) error {
	if err := node.Expect(t, arities...); err != nil {
		if node == nil {
			return &Error{Kind: MalformedNode, Node: t, Message: err.Error(), Err: err}
		}
		return malformed(node, err)
	}
	return nil
}

// identifierOf returns the lexeme of an IDENTIFIER terminal.
func identifierOf(node *ast.Node) (string, error) {
	if err := expectShape(node, ast.NodeIdentifier); err != nil {
		return "", err
	}
	if node.Lexeme == "" {
		return "", newError(MalformedNode, node, "", "identifier lexeme missing")
	}
	return node.Lexeme, nil
}
