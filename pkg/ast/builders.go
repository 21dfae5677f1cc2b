package ast

import "strconv"

// Builders assemble well-formed positional trees by hand. They are used by
// tests and by hosts that generate programs without going through source text.

// T returns a terminal node.
func T(t NodeType, lexeme string) *Node {
	return &Node{Type: t, Lexeme: lexeme}
}

// N returns a non-terminal node with the given children.
func N(t NodeType, children ...*Node) *Node {
	if len(children) == 0 {
		return &Node{Type: t}
	}
	return &Node{Type: t, Children: children}
}

func ID(name string) *Node { return T(NodeIdentifier, name) }

func punct(t NodeType) *Node {
	switch t {
	case NodeSemiColon:
		return T(t, ";")
	case NodeComma:
		return T(t, ",")
	case NodeLeftParen:
		return T(t, "(")
	case NodeRightParen:
		return T(t, ")")
	case NodeLeftCurly:
		return T(t, "{")
	case NodeRightCurly:
		return T(t, "}")
	case NodeAssign:
		return T(t, "=")
	}
	return T(t, "")
}

// Program wraps statements in START.
func Program(stmts ...*Node) *Node {
	return N(NodeStart, Block(stmts...))
}

// Block returns a STATEMENTS sequence.
func Block(stmts ...*Node) *Node {
	return N(NodeStatements, stmts...)
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

var operatorNodes = map[string]NodeType{
	"+":  NodePlus,
	"-":  NodeMinus,
	"*":  NodeMultiply,
	"/":  NodeDivide,
	"<":  NodeLess,
	">":  NodeGreater,
	"<=": NodeLessEqual,
	">=": NodeGreaterEqual,
}

// OperatorNode maps an operator lexeme to its terminal type.
func OperatorNode(op string) (NodeType, bool) {
	t, ok := operatorNodes[op]
	return t, ok
}

func exprOfFactor(factor *Node) *Node {
	term := N(NodeTerm, factor, N(NodeFactorOperator))
	operand := N(NodeOperand, term, N(NodeTermOperator))
	return N(NodeExpression, operand, N(NodeOperandOperator))
}

// Int returns an EXPRESSION holding an integer literal.
func Int(v int64) *Node {
	return IntLit(strconv.FormatInt(v, 10))
}

// IntLit returns an EXPRESSION holding an integer literal with the given text.
func IntLit(lexeme string) *Node {
	return exprOfFactor(N(NodeFactor, T(NodeInteger, lexeme)))
}

// Ref returns an EXPRESSION reading a variable.
func Ref(name string) *Node {
	return exprOfFactor(N(NodeFactor, N(NodeVarRef, ID(name), N(NodeCall))))
}

// CallExpr returns an EXPRESSION calling name with the argument expressions.
func CallExpr(name string, args ...*Node) *Node {
	call := N(NodeCall, punct(NodeLeftParen), Args(args...), punct(NodeRightParen))
	return exprOfFactor(N(NodeFactor, N(NodeVarRef, ID(name), call)))
}

// Paren returns an EXPRESSION wrapping expr in parentheses.
func Paren(expr *Node) *Node {
	return exprOfFactor(N(NodeFactor, punct(NodeLeftParen), expr, punct(NodeRightParen)))
}

// Args builds an ARGUMENTS list with separating commas.
func Args(exprs ...*Node) *Node {
	out := N(NodeArguments)
	for i, expr := range exprs {
		if i > 0 {
			out.Children = append(out.Children, punct(NodeComma))
		}
		out.Children = append(out.Children, N(NodeArgument, expr))
	}
	return out
}

// factorOf unwraps an expression that is a single factor, or parenthesizes it.
func factorOf(expr *Node) *Node {
	if expr.Is(NodeExpression) && len(expr.Children) == 2 && expr.Children[1].Empty() {
		operand := expr.Children[0]
		if operand.Is(NodeOperand) && len(operand.Children) == 2 && operand.Children[1].Empty() {
			term := operand.Children[0]
			if term.Is(NodeTerm) && len(term.Children) == 2 && term.Children[1].Empty() {
				return term.Children[0]
			}
		}
	}
	return N(NodeFactor, punct(NodeLeftParen), expr, punct(NodeRightParen))
}

func termOf(expr *Node) *Node {
	return N(NodeTerm, factorOf(expr), N(NodeFactorOperator))
}

func operandOf(expr *Node) *Node {
	return N(NodeOperand, termOf(expr), N(NodeTermOperator))
}

// Bin builds `left op right`. Compound operands are parenthesized so the tree
// evaluates exactly as written regardless of the grammar's associativity.
func Bin(op string, left, right *Node) *Node {
	t, ok := operatorNodes[op]
	if !ok {
		panic("ast.Bin: unknown operator " + op)
	}
	opNode := T(t, op)
	switch t {
	case NodeMultiply, NodeDivide:
		term := N(NodeTerm, factorOf(left), N(NodeFactorOperator, opNode, termOf(right)))
		return N(NodeExpression, N(NodeOperand, term, N(NodeTermOperator)), N(NodeOperandOperator))
	case NodePlus, NodeMinus:
		operand := N(NodeOperand, termOf(left), N(NodeTermOperator, opNode, operandOf(right)))
		return N(NodeExpression, operand, N(NodeOperandOperator))
	default:
		return N(NodeExpression, operandOf(left), N(NodeOperandOperator, opNode, right))
	}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

// VarDef returns a bare VAR_DEF node (as used by for-loop headers).
func VarDef(name string, expr *Node) *Node {
	return N(NodeVarDef, T(NodeLet, "let"), ID(name), punct(NodeAssign), expr)
}

// VarAssign returns a bare VAR_ASSIGN node.
func VarAssign(name string, expr *Node) *Node {
	return N(NodeVarAssign, ID(name), punct(NodeAssign), expr)
}

func Let(name string, expr *Node) *Node {
	return N(NodeStatement, VarDef(name, expr), punct(NodeSemiColon))
}

func Set(name string, expr *Node) *Node {
	return N(NodeStatement, VarAssign(name, expr), punct(NodeSemiColon))
}

// RootSet is an assignment in the ROOT_VAR_REF form a statement-level parser emits.
func RootSet(name string, expr *Node) *Node {
	op := N(NodeRootVarRefOperator, punct(NodeAssign), expr)
	return N(NodeStatement, N(NodeRootVarRef, ID(name), op), punct(NodeSemiColon))
}

// Call is a statement-level call whose result is discarded.
func Call(name string, args ...*Node) *Node {
	op := N(NodeRootVarRefOperator, punct(NodeLeftParen), Args(args...), punct(NodeRightParen))
	return N(NodeStatement, N(NodeRootVarRef, ID(name), op), punct(NodeSemiColon))
}

func Print(expr *Node) *Node {
	out := N(NodeOutput, T(NodePrint, "print"), punct(NodeLeftParen), expr, punct(NodeRightParen), punct(NodeSemiColon))
	return N(NodeStatement, out)
}

// Ret returns a return statement; a nil expr returns no value.
func Ret(expr *Node) *Node {
	value := N(NodeReturnValue)
	if expr != nil {
		value = N(NodeReturnValue, expr)
	}
	return N(NodeStatement, N(NodeReturnStatement, T(NodeReturn, "return"), value), punct(NodeSemiColon))
}

func Break() *Node {
	return N(NodeStatement, N(NodeBreakStatement, T(NodeBreak, "break")), punct(NodeSemiColon))
}

// IfChain assembles an if/elif/else statement from branches built with
// IfBranch, ElifBranch and ElseBranch.
func IfChain(branches ...*Node) *Node {
	return N(NodeStatement, N(NodeIfBlock, branches...))
}

func IfBranch(cond *Node, body ...*Node) *Node {
	return N(NodeIf, T(NodeIfKw, "if"), punct(NodeLeftParen), cond, punct(NodeRightParen),
		punct(NodeLeftCurly), Block(body...), punct(NodeRightCurly))
}

func ElifBranch(cond *Node, body ...*Node) *Node {
	return N(NodeElif, T(NodeElifKw, "elif"), punct(NodeLeftParen), cond, punct(NodeRightParen),
		punct(NodeLeftCurly), Block(body...), punct(NodeRightCurly))
}

func ElseBranch(body ...*Node) *Node {
	return N(NodeElse, T(NodeElseKw, "else"), punct(NodeLeftCurly), Block(body...), punct(NodeRightCurly))
}

// For builds `for (init; cond; step) { body }` from VarDef/VarAssign nodes.
func For(init, cond, step *Node, body ...*Node) *Node {
	loop := N(NodeForBlock, T(NodeFor, "for"), punct(NodeLeftParen), init, punct(NodeSemiColon),
		cond, punct(NodeSemiColon), step, punct(NodeRightParen),
		punct(NodeLeftCurly), Block(body...), punct(NodeRightCurly))
	return N(NodeStatement, loop)
}

func While(cond *Node, body ...*Node) *Node {
	loop := N(NodeWhileBlock, T(NodeWhile, "while"), punct(NodeLeftParen), cond, punct(NodeRightParen),
		punct(NodeLeftCurly), Block(body...), punct(NodeRightCurly))
	return N(NodeStatement, loop)
}

// Func defines a named function with the given parameter names.
func Func(name string, params []string, body ...*Node) *Node {
	defs := N(NodeArgumentsDef)
	for i, p := range params {
		if i > 0 {
			defs.Children = append(defs.Children, punct(NodeComma))
		}
		defs.Children = append(defs.Children, N(NodeArgumentDef, ID(p)))
	}
	fn := N(NodeFunctionDef, T(NodeFunc, "func"), ID(name), punct(NodeLeftParen), defs, punct(NodeRightParen),
		punct(NodeLeftCurly), Block(body...), punct(NodeRightCurly))
	return N(NodeStatement, fn)
}
