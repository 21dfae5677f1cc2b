package interpreter

import (
	"fmt"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/runtime"
)

// evaluateStatements runs a STATEMENTS sequence in the current scope and
// stops at the first statement that raises a control signal.
func (i *Interpreter) evaluateStatements(stmts *ast.Node) (ControlSignal, error) {
	if err := expectShape(stmts, ast.NodeStatements); err != nil {
		return noSignal, err
	}
	for _, stmt := range stmts.Children {
		sig, err := i.evaluateStatement(stmt)
		if err != nil {
			return noSignal, err
		}
		if sig.Kind != SignalNone {
			return sig, nil
		}
	}
	return noSignal, nil
}

func (i *Interpreter) evaluateStatement(stmt *ast.Node) (ControlSignal, error) {
	if err := expectShape(stmt, ast.NodeStatement, 1, 2); err != nil {
		return noSignal, err
	}
	if err := checkTerminator(stmt); err != nil {
		return noSignal, err
	}
	node := stmt.Child(0)
	switch node.NodeType() {
	case ast.NodeVarDef:
		return noSignal, i.evaluateVarDef(node)
	case ast.NodeVarAssign:
		return noSignal, i.evaluateVarAssign(node)
	case ast.NodeRootVarRef:
		return noSignal, i.evaluateRootVarRef(node)
	case ast.NodeOutput:
		return noSignal, i.evaluateOutput(node)
	case ast.NodeFunctionDef:
		return noSignal, i.evaluateFunctionDefinition(node)
	case ast.NodeReturnStatement:
		return i.evaluateReturn(node)
	case ast.NodeBreakStatement:
		if err := expectShape(node, ast.NodeBreakStatement, 1); err != nil {
			return noSignal, err
		}
		return breakSignal(), nil
	case ast.NodeIfBlock:
		return i.evaluateIfBlock(node)
	case ast.NodeForBlock:
		return i.evaluateForBlock(node)
	case ast.NodeWhileBlock:
		return i.evaluateWhileBlock(node)
	default:
		return noSignal, newError(MalformedNode, stmt, "", "unsupported statement %s", node.NodeType())
	}
}

// checkTerminator enforces that simple statements end with SEMI_COLON and
// block statements carry nothing after the block.
func checkTerminator(stmt *ast.Node) error {
	kind := stmt.Child(0).NodeType()
	switch kind {
	case ast.NodeVarDef, ast.NodeVarAssign, ast.NodeRootVarRef, ast.NodeReturnStatement, ast.NodeBreakStatement:
		if len(stmt.Children) != 2 || !stmt.Child(1).Is(ast.NodeSemiColon) {
			return newError(MalformedNode, stmt, "", "%s must be followed by SEMI_COLON", kind)
		}
	default:
		if len(stmt.Children) != 1 {
			return newError(MalformedNode, stmt, "", "%s takes no terminator", kind)
		}
	}
	return nil
}

func (i *Interpreter) evaluateVarDef(node *ast.Node) error {
	if err := expectShape(node, ast.NodeVarDef, 4); err != nil {
		return err
	}
	name, err := identifierOf(node.Child(1))
	if err != nil {
		return err
	}
	value, err := i.evaluateExpression(node.Child(3))
	if err != nil {
		return err
	}
	return scopeError(i.current.Define(name, value), node, name)
}

func (i *Interpreter) evaluateVarAssign(node *ast.Node) error {
	if err := expectShape(node, ast.NodeVarAssign, 3); err != nil {
		return err
	}
	name, err := identifierOf(node.Child(0))
	if err != nil {
		return err
	}
	return i.assign(node, name, node.Child(2))
}

func (i *Interpreter) assign(node *ast.Node, name string, expr *ast.Node) error {
	value, err := i.evaluateExpression(expr)
	if err != nil {
		return err
	}
	return scopeError(i.current.Assign(name, value), node, name)
}

// evaluateRootVarRef handles a statement that starts with an identifier: a
// call whose result is discarded, or an assignment.
func (i *Interpreter) evaluateRootVarRef(node *ast.Node) error {
	if err := expectShape(node, ast.NodeRootVarRef, 2); err != nil {
		return err
	}
	name, err := identifierOf(node.Child(0))
	if err != nil {
		return err
	}
	op := node.Child(1)
	if err := expectShape(op, ast.NodeRootVarRefOperator, 2, 3); err != nil {
		return err
	}
	switch op.Child(0).NodeType() {
	case ast.NodeLeftParen:
		if len(op.Children) != 3 {
			return newError(MalformedNode, op, name, "call suffix expects 3 children, got %d", len(op.Children))
		}
		callee, err := i.current.Get(name)
		if err != nil {
			return scopeError(err, node, name)
		}
		args, err := i.evaluateArguments(op.Child(1))
		if err != nil {
			return err
		}
		_, err = i.invoke(callee, name, args, node)
		return err
	case ast.NodeAssign:
		if len(op.Children) != 2 {
			return newError(MalformedNode, op, name, "assignment suffix expects 2 children, got %d", len(op.Children))
		}
		return i.assign(node, name, op.Child(1))
	default:
		return newError(MalformedNode, op, name, "unexpected %s", op.Child(0).NodeType())
	}
}

func (i *Interpreter) evaluateOutput(node *ast.Node) error {
	if err := expectShape(node, ast.NodeOutput, 5); err != nil {
		return err
	}
	value, err := i.evaluateExpression(node.Child(2))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(i.opts.Stdout, runtime.Format(value)); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}

func (i *Interpreter) evaluateReturn(node *ast.Node) (ControlSignal, error) {
	if err := expectShape(node, ast.NodeReturnStatement, 2); err != nil {
		return noSignal, err
	}
	retval := node.Child(1)
	if err := expectShape(retval, ast.NodeReturnValue, 0, 1); err != nil {
		return noSignal, err
	}
	if retval.Empty() {
		return returnSignal(runtime.VoidValue{}), nil
	}
	value, err := i.evaluateExpression(retval.Child(0))
	if err != nil {
		return noSignal, err
	}
	return returnSignal(value), nil
}

// evaluateIfBlock takes the first branch whose condition holds, or the
// trailing else. Branch bodies run in the current scope.
func (i *Interpreter) evaluateIfBlock(node *ast.Node) (ControlSignal, error) {
	if err := expectShape(node, ast.NodeIfBlock); err != nil {
		return noSignal, err
	}
	if len(node.Children) == 0 || !node.Child(0).Is(ast.NodeIf) {
		return noSignal, newError(MalformedNode, node, "", "conditional must start with IF")
	}
	for idx, branch := range node.Children {
		switch branch.NodeType() {
		case ast.NodeIf, ast.NodeElif:
			if idx > 0 && branch.Is(ast.NodeIf) {
				return noSignal, newError(MalformedNode, branch, "", "IF after the first branch")
			}
			if err := expectShape(branch, branch.Type, 7); err != nil {
				return noSignal, err
			}
			ok, err := i.condition(branch.Child(2))
			if err != nil {
				return noSignal, err
			}
			if ok {
				return i.evaluateStatements(branch.Child(5))
			}
		case ast.NodeElse:
			if idx != len(node.Children)-1 {
				return noSignal, newError(MalformedNode, branch, "", "ELSE must be the last branch")
			}
			if err := expectShape(branch, ast.NodeElse, 4); err != nil {
				return noSignal, err
			}
			return i.evaluateStatements(branch.Child(2))
		default:
			return noSignal, newError(MalformedNode, branch, "", "invalid conditional branch %s", branch.NodeType())
		}
	}
	return noSignal, nil
}

// evaluateForBlock defines the loop variable in the current scope, so it is
// still bound after the loop ends.
func (i *Interpreter) evaluateForBlock(node *ast.Node) (ControlSignal, error) {
	if err := expectShape(node, ast.NodeForBlock, 11); err != nil {
		return noSignal, err
	}
	init, cond, step, body := node.Child(2), node.Child(4), node.Child(6), node.Child(9)
	if err := expectShape(step, ast.NodeVarAssign, 3); err != nil {
		return noSignal, err
	}
	if err := i.evaluateVarDef(init); err != nil {
		return noSignal, err
	}
	for {
		if err := i.checkInterrupt(node); err != nil {
			return noSignal, err
		}
		ok, err := i.condition(cond)
		if err != nil {
			return noSignal, err
		}
		if !ok {
			return noSignal, nil
		}
		sig, err := i.evaluateStatements(body)
		if err != nil {
			return noSignal, err
		}
		switch sig.Kind {
		case SignalReturn:
			// The frame is unwinding; the step must not run.
			return sig, nil
		case SignalBreak:
			return noSignal, nil
		}
		if err := i.evaluateVarAssign(step); err != nil {
			return noSignal, err
		}
	}
}

func (i *Interpreter) evaluateWhileBlock(node *ast.Node) (ControlSignal, error) {
	if err := expectShape(node, ast.NodeWhileBlock, 7); err != nil {
		return noSignal, err
	}
	cond, body := node.Child(2), node.Child(5)
	for {
		if err := i.checkInterrupt(node); err != nil {
			return noSignal, err
		}
		ok, err := i.condition(cond)
		if err != nil {
			return noSignal, err
		}
		if !ok {
			return noSignal, nil
		}
		sig, err := i.evaluateStatements(body)
		if err != nil {
			return noSignal, err
		}
		switch sig.Kind {
		case SignalReturn:
			return sig, nil
		case SignalBreak:
			return noSignal, nil
		}
	}
}

func (i *Interpreter) evaluateFunctionDefinition(node *ast.Node) error {
	if err := expectShape(node, ast.NodeFunctionDef, 8); err != nil {
		return err
	}
	name, err := identifierOf(node.Child(1))
	if err != nil {
		return err
	}
	if err := expectShape(node.Child(6), ast.NodeStatements); err != nil {
		return err
	}
	params, err := parameterNames(node.Child(3))
	if err != nil {
		return err
	}
	fn := &runtime.FunctionValue{
		Name:        name,
		Declaration: node,
		Params:      params,
		Definition:  i.current,
	}
	return scopeError(i.current.Define(name, fn), node, name)
}

func parameterNames(defs *ast.Node) ([]string, error) {
	if err := expectShape(defs, ast.NodeArgumentsDef); err != nil {
		return nil, err
	}
	var params []string
	seen := make(map[string]struct{})
	for _, child := range defs.Children {
		switch child.NodeType() {
		case ast.NodeComma:
			continue
		case ast.NodeArgumentDef:
			if err := expectShape(child, ast.NodeArgumentDef, 1); err != nil {
				return nil, err
			}
			name, err := identifierOf(child.Child(0))
			if err != nil {
				return nil, err
			}
			if _, dup := seen[name]; dup {
				return nil, newError(DuplicateDefinition, child, name, "parameter declared twice")
			}
			seen[name] = struct{}{}
			params = append(params, name)
		default:
			return nil, newError(MalformedNode, defs, "", "unexpected %s in parameter list", child.NodeType())
		}
	}
	return params, nil
}
