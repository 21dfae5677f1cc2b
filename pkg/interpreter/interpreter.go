package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/runtime"
)

// ScopingMode selects the parent of a call frame.
type ScopingMode int

const (
	// CallTimeScoping parents each call frame to the caller's current scope,
	// so function bodies see every scope active at the call site.
	CallTimeScoping ScopingMode = iota
	// DefinitionTimeScoping parents each call frame to the scope the function
	// was defined in.
	DefinitionTimeScoping
)

func (m ScopingMode) String() string {
	switch m {
	case CallTimeScoping:
		return "call_time"
	case DefinitionTimeScoping:
		return "definition_time"
	default:
		return fmt.Sprintf("scoping_%d", int(m))
	}
}

// ParseScopingMode accepts "call_time"/"call" and "definition_time"/"definition".
func ParseScopingMode(s string) (ScopingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "call", "call_time", "call-time", "dynamic":
		return CallTimeScoping, nil
	case "definition", "definition_time", "definition-time", "lexical":
		return DefinitionTimeScoping, nil
	default:
		return CallTimeScoping, fmt.Errorf("unknown scoping mode %q", s)
	}
}

const (
	// DefaultMaxCallDepth bounds nested calls when no limit is configured.
	DefaultMaxCallDepth = 10000
	// MaxCallDepthLimit is the largest depth New accepts. Deeper limits would
	// let runaway recursion overflow the goroutine stack before the guard fires.
	MaxCallDepthLimit = 100000
)

// Options configures an Interpreter.
type Options struct {
	Stdout       io.Writer
	Scoping      ScopingMode
	MaxCallDepth int
	Logger       *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithStdout sets the print destination.
func WithStdout(w io.Writer) Option {
	return func(o *Options) { o.Stdout = w }
}

// WithScoping selects how call frames are parented.
func WithScoping(mode ScopingMode) Option {
	return func(o *Options) { o.Scoping = mode }
}

// WithMaxCallDepth limits nested calls; n <= 0 restores the default and
// values above MaxCallDepthLimit are clamped to it.
func WithMaxCallDepth(n int) Option {
	return func(o *Options) { o.MaxCallDepth = n }
}

// WithLogger receives call-frame debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Interpreter evaluates positional Lara ASTs.
type Interpreter struct {
	global  *runtime.Environment
	current *runtime.Environment
	depth   int
	opts    Options
	log     *slog.Logger
	ctx     context.Context
}

// New returns an interpreter with an empty global environment.
func New(opts ...Option) *Interpreter {
	o := Options{Stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = DefaultMaxCallDepth
	}
	if o.MaxCallDepth > MaxCallDepthLimit {
		o.MaxCallDepth = MaxCallDepthLimit
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	global := runtime.NewEnvironment(nil)
	return &Interpreter{
		global:  global,
		current: global,
		opts:    o,
		log:     logger,
		ctx:     context.Background(),
	}
}

// GlobalEnvironment returns the root scope.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// CurrentEnvironment returns the scope of the executing frame.
func (i *Interpreter) CurrentEnvironment() *runtime.Environment {
	return i.current
}

// Options returns the effective configuration.
func (i *Interpreter) Options() Options {
	return i.opts
}

// Run executes a program rooted at START or STATEMENTS in the global scope.
// Successive runs share globals, which is how REPL sessions persist state.
func (i *Interpreter) Run(root *ast.Node) error {
	return i.RunContext(context.Background(), root)
}

// RunContext is Run with cancellation. The context is checked on every loop
// iteration and call, and a canceled run fails with Interrupted.
func (i *Interpreter) RunContext(ctx context.Context, root *ast.Node) error {
	stmts, err := programStatements(root)
	if err != nil {
		return err
	}
	i.current = i.global
	i.depth = 0
	i.ctx = ctx
	sig, err := i.evaluateStatements(stmts)
	i.current = i.global
	i.ctx = context.Background()
	if err != nil {
		return err
	}
	if sig.Kind == SignalReturn {
		return &Error{Kind: ReturnOutsideFunction, Node: ast.NodeReturnStatement, Message: "return outside of function"}
	}
	// A break with no enclosing loop ends the program.
	return nil
}

func programStatements(root *ast.Node) (*ast.Node, error) {
	switch {
	case root.Is(ast.NodeStart):
		if err := expectShape(root, ast.NodeStart, 1); err != nil {
			return nil, err
		}
		stmts := root.Child(0)
		if err := expectShape(stmts, ast.NodeStatements); err != nil {
			return nil, err
		}
		return stmts, nil
	case root.Is(ast.NodeStatements):
		return root, nil
	default:
		return nil, &Error{Kind: MalformedNode, Node: root.NodeType(), Message: "program root must be START or STATEMENTS"}
	}
}

// CallFunction invokes a function value from the host, in the current scope.
func (i *Interpreter) CallFunction(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	name := ""
	if fn, ok := callee.(*runtime.FunctionValue); ok {
		name = fn.Name
	}
	return i.invoke(callee, name, args, nil)
}

// checkInterrupt reports a canceled run context.
func (i *Interpreter) checkInterrupt(node *ast.Node) error {
	if err := i.ctx.Err(); err != nil {
		return &Error{Kind: Interrupted, Node: node.NodeType(), Message: "evaluation canceled", Err: err}
	}
	return nil
}
