package runtime

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUndefinedSymbol is returned when no scope on the chain binds a name.
	ErrUndefinedSymbol = errors.New("undefined symbol")
	// ErrDuplicateDefinition is returned when a scope already binds a name.
	ErrDuplicateDefinition = errors.New("duplicate definition")
)

// ScopeError reports a failed lookup, assignment or definition.
type ScopeError struct {
	Op   string
	Name string
	Err  error
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s of '%s': %v", e.Op, e.Name, e.Err)
}

func (e *ScopeError) Unwrap() error { return e.Err }

// Environment is one symbol table in the scope chain. A new environment is
// created for the program root and for each function call; blocks share
// their enclosing environment.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the enclosing scope (nil at the root).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Depth counts the scopes above e.
func (e *Environment) Depth() int {
	depth := 0
	for p := e.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Define binds name in exactly this scope.
func (e *Environment) Define(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		return &ScopeError{Op: "definition", Name: name, Err: ErrDuplicateDefinition}
	}
	e.values[name] = value
	return nil
}

// Has reports whether this scope (not its parents) binds name.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for scope := e; scope != nil; scope = scope.parent {
		if _, ok := scope.values[name]; ok {
			scope.values[name] = value
			return nil
		}
	}
	return &ScopeError{Op: "assignment", Name: name, Err: ErrUndefinedSymbol}
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.values[name]; ok {
			return v, nil
		}
	}
	return nil, &ScopeError{Op: "lookup", Name: name, Err: ErrUndefinedSymbol}
}

// Keys returns the names bound in this scope, sorted.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
