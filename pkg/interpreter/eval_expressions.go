package interpreter

import (
	"math/big"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/runtime"
)

// The expression grammar has four levels, each right-recursive:
//
//	EXPRESSION := OPERAND  (cmp EXPRESSION)?
//	OPERAND    := TERM     ((+|-) OPERAND)?
//	TERM       := FACTOR   ((*|/) TERM)?
//	FACTOR     := ( EXPRESSION ) | INTEGER | VAR_REF
//
// so `10 - 3 - 2` evaluates as `10 - (3 - 2)`.

func (i *Interpreter) evaluateExpression(node *ast.Node) (runtime.Value, error) {
	if err := expectShape(node, ast.NodeExpression, 2); err != nil {
		return nil, err
	}
	left, err := i.evaluateOperand(node.Child(0))
	if err != nil {
		return nil, err
	}
	op := node.Child(1)
	if err := expectShape(op, ast.NodeOperandOperator, 0, 2); err != nil {
		return nil, err
	}
	if op.Empty() {
		return left, nil
	}
	right, err := i.evaluateExpression(op.Child(1))
	if err != nil {
		return nil, err
	}
	return compareValues(op.Child(0), left, right)
}

func (i *Interpreter) evaluateOperand(node *ast.Node) (runtime.Value, error) {
	if err := expectShape(node, ast.NodeOperand, 2); err != nil {
		return nil, err
	}
	left, err := i.evaluateTerm(node.Child(0))
	if err != nil {
		return nil, err
	}
	op := node.Child(1)
	if err := expectShape(op, ast.NodeTermOperator, 0, 2); err != nil {
		return nil, err
	}
	if op.Empty() {
		return left, nil
	}
	right, err := i.evaluateOperand(op.Child(1))
	if err != nil {
		return nil, err
	}
	return arithmetic(op.Child(0), left, right)
}

func (i *Interpreter) evaluateTerm(node *ast.Node) (runtime.Value, error) {
	if err := expectShape(node, ast.NodeTerm, 2); err != nil {
		return nil, err
	}
	left, err := i.evaluateFactor(node.Child(0))
	if err != nil {
		return nil, err
	}
	op := node.Child(1)
	if err := expectShape(op, ast.NodeFactorOperator, 0, 2); err != nil {
		return nil, err
	}
	if op.Empty() {
		return left, nil
	}
	right, err := i.evaluateTerm(op.Child(1))
	if err != nil {
		return nil, err
	}
	return arithmetic(op.Child(0), left, right)
}

func (i *Interpreter) evaluateFactor(node *ast.Node) (runtime.Value, error) {
	if err := expectShape(node, ast.NodeFactor, 1, 3); err != nil {
		return nil, err
	}
	if len(node.Children) == 3 {
		if !node.Child(0).Is(ast.NodeLeftParen) || !node.Child(2).Is(ast.NodeRightParen) {
			return nil, newError(MalformedNode, node, "", "parenthesized factor must be wrapped in LEFT_PAREN and RIGHT_PAREN")
		}
		// Nested parentheses share the call depth budget.
		if i.depth >= i.opts.MaxCallDepth {
			return nil, newError(ResourceExhaustion, node, "", "maximum nesting depth exceeded")
		}
		i.depth++
		defer func() { i.depth-- }()
		return i.evaluateExpression(node.Child(1))
	}
	child := node.Child(0)
	switch child.NodeType() {
	case ast.NodeInteger:
		val, err := runtime.ParseInteger(child.Lexeme)
		if err != nil {
			return nil, malformed(child, err)
		}
		return val, nil
	case ast.NodeVarRef:
		return i.evaluateVarRef(child)
	default:
		return nil, newError(MalformedNode, node, "", "invalid factor %s", child.NodeType())
	}
}

// evaluateVarRef resolves an identifier and, when a call suffix follows,
// invokes the resolved function with arguments evaluated in the caller's scope.
func (i *Interpreter) evaluateVarRef(node *ast.Node) (runtime.Value, error) {
	if err := expectShape(node, ast.NodeVarRef, 2); err != nil {
		return nil, err
	}
	name, err := identifierOf(node.Child(0))
	if err != nil {
		return nil, err
	}
	value, err := i.current.Get(name)
	if err != nil {
		return nil, scopeError(err, node, name)
	}
	call := node.Child(1)
	if err := expectShape(call, ast.NodeCall, 0, 3); err != nil {
		return nil, err
	}
	if call.Empty() {
		return value, nil
	}
	args, err := i.evaluateArguments(call.Child(1))
	if err != nil {
		return nil, err
	}
	return i.invoke(value, name, args, node)
}

func (i *Interpreter) evaluateArguments(node *ast.Node) ([]runtime.Value, error) {
	if err := expectShape(node, ast.NodeArguments); err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(node.Children))
	for _, child := range node.Children {
		switch child.NodeType() {
		case ast.NodeComma:
			continue
		case ast.NodeArgument:
			if err := expectShape(child, ast.NodeArgument, 1); err != nil {
				return nil, err
			}
			val, err := i.evaluateExpression(child.Child(0))
			if err != nil {
				return nil, err
			}
			args = append(args, val)
		default:
			return nil, newError(MalformedNode, node, "", "unexpected %s in argument list", child.NodeType())
		}
	}
	return args, nil
}

// condition evaluates the boolean cast of an expression: nonzero is true.
func (i *Interpreter) condition(node *ast.Node) (bool, error) {
	value, err := i.evaluateExpression(node)
	if err != nil {
		return false, err
	}
	iv, ok := value.(runtime.IntegerValue)
	if !ok {
		return false, newError(TypeMismatch, node, "", "condition must be an integer, got %s", value.Kind())
	}
	return iv.Truthy(), nil
}

func integerOperands(op *ast.Node, left, right runtime.Value) (*big.Int, *big.Int, error) {
	l, lok := left.(runtime.IntegerValue)
	r, rok := right.(runtime.IntegerValue)
	if !lok || !rok {
		return nil, nil, newError(TypeMismatch, op, "", "operator '%s' requires integer operands, got %s and %s",
			op.Lexeme, left.Kind(), right.Kind())
	}
	return l.Val, r.Val, nil
}

func arithmetic(op *ast.Node, left, right runtime.Value) (runtime.Value, error) {
	l, r, err := integerOperands(op, left, right)
	if err != nil {
		return nil, err
	}
	result := new(big.Int)
	switch op.NodeType() {
	case ast.NodePlus:
		result.Add(l, r)
	case ast.NodeMinus:
		result.Sub(l, r)
	case ast.NodeMultiply:
		result.Mul(l, r)
	case ast.NodeDivide:
		if r.Sign() == 0 {
			return nil, newError(DivisionByZero, op, "", "division by zero")
		}
		// Quo truncates toward zero: -7 / 2 == -3.
		result.Quo(l, r)
	default:
		return nil, newError(MalformedNode, op, "", "invalid arithmetic operator")
	}
	return runtime.IntegerValue{Val: result}, nil
}

func compareValues(op *ast.Node, left, right runtime.Value) (runtime.Value, error) {
	l, r, err := integerOperands(op, left, right)
	if err != nil {
		return nil, err
	}
	cmp := l.Cmp(r)
	switch op.NodeType() {
	case ast.NodeLess:
		return runtime.Bool(cmp < 0), nil
	case ast.NodeGreater:
		return runtime.Bool(cmp > 0), nil
	case ast.NodeLessEqual:
		return runtime.Bool(cmp <= 0), nil
	case ast.NodeGreaterEqual:
		return runtime.Bool(cmp >= 0), nil
	default:
		return nil, newError(MalformedNode, op, "", "invalid comparison operator")
	}
}
