package interpreter

import (
	"log/slog"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/runtime"
)

// invoke calls a function value. The new frame is parented according to the
// scoping mode and becomes the current scope until the body finishes.
//
// Parameters bind positionally. Extra arguments are dropped; a parameter with
// no argument stays unbound in the frame, so references to it resolve through
// the parent chain like any other free name.
func (i *Interpreter) invoke(callee runtime.Value, name string, args []runtime.Value, site *ast.Node) (runtime.Value, error) {
	fn, ok := callee.(*runtime.FunctionValue)
	if !ok || fn == nil {
		kind := "nil"
		if callee != nil && !ok {
			kind = callee.Kind().String()
		}
		return nil, &Error{
			Kind:    InvalidCallTarget,
			Node:    site.NodeType(),
			Name:    name,
			Message: "cannot call a value of kind " + kind,
		}
	}
	if err := i.checkInterrupt(site); err != nil {
		return nil, err
	}
	if i.depth >= i.opts.MaxCallDepth {
		return nil, &Error{
			Kind:    ResourceExhaustion,
			Node:    site.NodeType(),
			Name:    name,
			Message: "maximum call depth exceeded",
		}
	}

	parent := i.current
	if i.opts.Scoping == DefinitionTimeScoping && fn.Definition != nil {
		parent = fn.Definition
	}
	frame := runtime.NewEnvironment(parent)
	for idx, param := range fn.Params {
		if idx >= len(args) {
			break
		}
		if err := frame.Define(param, args[idx]); err != nil {
			return nil, scopeError(err, fn.Declaration, param)
		}
	}

	caller := i.current
	i.current = frame
	i.depth++
	defer func() {
		i.current = caller
		i.depth--
	}()

	i.log.Debug("enter call frame",
		slog.String("function", fn.Name),
		slog.Int("depth", i.depth),
		slog.Int("args", len(args)),
		slog.String("scoping", i.opts.Scoping.String()))

	sig, err := i.evaluateStatements(fn.Body())
	if err != nil {
		return nil, err
	}

	i.log.Debug("leave call frame",
		slog.String("function", fn.Name),
		slog.Int("depth", i.depth),
		slog.String("signal", sig.Kind.String()))

	if sig.Kind == SignalReturn && sig.Value != nil {
		return sig.Value, nil
	}
	// A break that escaped every loop in the body ends the call with no value.
	return runtime.VoidValue{}, nil
}
