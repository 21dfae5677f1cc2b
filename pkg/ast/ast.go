package ast

import (
	"fmt"
	"strings"
)

// NodeType is the grammar symbol a node was produced for.
type NodeType string

// Non-terminals.
const (
	NodeStart               NodeType = "START"
	NodeStatements          NodeType = "STATEMENTS"
	NodeStatement           NodeType = "STATEMENT"
	NodeVarDef              NodeType = "VAR_DEF"
	NodeVarAssign           NodeType = "VAR_ASSIGN"
	NodeRootVarRef          NodeType = "ROOT_VAR_REF"
	NodeRootVarRefOperator  NodeType = "ROOT_VAR_REF_OPERATOR"
	NodeIfBlock             NodeType = "IF_BLOCK"
	NodeIf                  NodeType = "IF"
	NodeElif                NodeType = "ELIF"
	NodeElse                NodeType = "ELSE"
	NodeForBlock            NodeType = "FOR_BLOCK"
	NodeWhileBlock          NodeType = "WHILE_BLOCK"
	NodeFunctionDef         NodeType = "FUNCTION_DEF"
	NodeArgumentsDef        NodeType = "ARGUMENTS_DEF"
	NodeArgumentDef         NodeType = "ARGUMENT_DEF"
	NodeOutput              NodeType = "OUTPUT"
	NodeReturnStatement     NodeType = "RETURN_STATEMENT"
	NodeReturnValue         NodeType = "RETURN_VALUE"
	NodeBreakStatement      NodeType = "BREAK_STATEMENT"
	NodeExpression          NodeType = "EXPRESSION"
	NodeOperandOperator     NodeType = "OPERAND_OPERATOR"
	NodeOperand             NodeType = "OPERAND"
	NodeTermOperator        NodeType = "TERM_OPERATOR"
	NodeTerm                NodeType = "TERM"
	NodeFactorOperator      NodeType = "FACTOR_OPERATOR"
	NodeFactor              NodeType = "FACTOR"
	NodeVarRef              NodeType = "VAR_REF"
	NodeCall                NodeType = "CALL"
	NodeArguments           NodeType = "ARGUMENTS"
	NodeArgument            NodeType = "ARGUMENT"
)

// Terminals.
const (
	NodeInteger      NodeType = "INTEGER"
	NodeIdentifier   NodeType = "IDENTIFIER"
	NodeLet          NodeType = "LET"
	NodeFunc         NodeType = "FUNC"
	NodeIfKw         NodeType = "IF_KW"
	NodeElifKw       NodeType = "ELIF_KW"
	NodeElseKw       NodeType = "ELSE_KW"
	NodeFor          NodeType = "FOR"
	NodeWhile        NodeType = "WHILE"
	NodePrint        NodeType = "PRINT"
	NodeReturn       NodeType = "RETURN"
	NodeBreak        NodeType = "BREAK"
	NodeAssign       NodeType = "ASSIGN"
	NodePlus         NodeType = "PLUS"
	NodeMinus        NodeType = "MINUS"
	NodeMultiply     NodeType = "MULTIPLY"
	NodeDivide       NodeType = "DIVIDE"
	NodeLess         NodeType = "LESS"
	NodeGreater      NodeType = "GREATER"
	NodeLessEqual    NodeType = "LESS_EQUAL"
	NodeGreaterEqual NodeType = "GREATER_EQUAL"
	NodeSemiColon    NodeType = "SEMI_COLON"
	NodeComma        NodeType = "COMMA"
	NodeLeftParen    NodeType = "LEFT_PAREN"
	NodeRightParen   NodeType = "RIGHT_PAREN"
	NodeLeftCurly    NodeType = "LEFT_CURLY"
	NodeRightCurly   NodeType = "RIGHT_CURLY"
)

// Node is a positional syntax tree node. The meaning of each child is fixed by
// the production that built the node, so consumers index Children directly.
// Terminals carry the matched source text in Lexeme.
type Node struct {
	Type     NodeType `json:"name" yaml:"name"`
	Lexeme   string   `json:"lexeme,omitempty" yaml:"lexeme,omitempty"`
	Children []*Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n *Node) NodeType() NodeType {
	if n == nil {
		return ""
	}
	return n.Type
}

// Is reports whether n is non-nil and of the given type.
func (n *Node) Is(t NodeType) bool {
	return n != nil && n.Type == t
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Empty reports whether the node matched an epsilon production.
func (n *Node) Empty() bool {
	return n == nil || len(n.Children) == 0
}

// ShapeError describes a node that does not match its production.
type ShapeError struct {
	Node     NodeType
	Expected string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s node: expected %s", e.Node, e.Expected)
}

// Expect checks the node type and that the child count is one of arities.
// With no arities only the type is checked.
func (n *Node) Expect(t NodeType, arities ...int) error {
	if n == nil {
		return &ShapeError{Node: t, Expected: "a node, got nil"}
	}
	if n.Type != t {
		return &ShapeError{Node: n.Type, Expected: fmt.Sprintf("node type %s", t)}
	}
	if len(arities) == 0 {
		return nil
	}
	for _, a := range arities {
		if len(n.Children) == a {
			for _, child := range n.Children {
				if child == nil {
					return &ShapeError{Node: n.Type, Expected: "non-nil children"}
				}
			}
			return nil
		}
	}
	parts := make([]string, len(arities))
	for i, a := range arities {
		parts[i] = fmt.Sprint(a)
	}
	return &ShapeError{
		Node:     n.Type,
		Expected: fmt.Sprintf("%s children, got %d", strings.Join(parts, " or "), len(n.Children)),
	}
}

// String renders the tree as an s-expression, mostly for test failures.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	if n.Lexeme != "" {
		fmt.Fprintf(b, "%s:%q", n.Type, n.Lexeme)
		return
	}
	if len(n.Children) == 0 {
		b.WriteString(string(n.Type))
		return
	}
	b.WriteByte('(')
	b.WriteString(string(n.Type))
	for _, child := range n.Children {
		b.WriteByte(' ')
		child.write(b)
	}
	b.WriteByte(')')
}
