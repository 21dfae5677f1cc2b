package parser

import (
	"fmt"

	"lara/interpreter-go/pkg/ast"
)

// SyntaxError reports a lexing or parsing failure at a source position.
// AtEOF is set when the input ended early, which lets interactive hosts ask
// for another line instead of reporting an error.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
	AtEOF  bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parser: %d:%d: %s", e.Line, e.Column, e.Msg)
}

var comparisonOperators = map[ast.NodeType]bool{
	ast.NodeLess:         true,
	ast.NodeGreater:      true,
	ast.NodeLessEqual:    true,
	ast.NodeGreaterEqual: true,
}

// Parse tokenizes and parses a program into a START node whose children
// follow the positional layout the interpreter expects.
func Parse(src string) (*ast.Node, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	stmts, err := p.statements(EOF)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EOF); err != nil {
		return nil, err
	}
	return ast.N(ast.NodeStart, stmts), nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) at(t ast.NodeType) bool {
	return p.peek().Type == t
}

func (p *parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{
		Line:   tok.Line,
		Column: tok.Column,
		Msg:    fmt.Sprintf(format, args...),
		AtEOF:  tok.Type == EOF,
	}
}

// expect consumes a token of type t and returns it as a terminal node.
func (p *parser) expect(t ast.NodeType) (*ast.Node, error) {
	tok := p.peek()
	if tok.Type != t {
		return nil, p.errorf(tok, "expected %s, found %s", t, tok)
	}
	p.advance()
	return ast.T(tok.Type, tok.Lexeme), nil
}

// sequence consumes terminals and parses non-terminals in order.
func (p *parser) sequence(kind ast.NodeType, parts ...any) (*ast.Node, error) {
	node := ast.N(kind)
	node.Children = make([]*ast.Node, 0, len(parts))
	for _, part := range parts {
		var (
			child *ast.Node
			err   error
		)
		switch v := part.(type) {
		case ast.NodeType:
			child, err = p.expect(v)
		case func() (*ast.Node, error):
			child, err = v()
		default:
			panic(fmt.Sprintf("parser: bad sequence part %T", part))
		}
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (p *parser) statements(until ast.NodeType) (*ast.Node, error) {
	stmts := ast.N(ast.NodeStatements)
	for !p.at(until) && !p.at(EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts.Children = append(stmts.Children, stmt)
	}
	return stmts, nil
}

func (p *parser) block() (*ast.Node, error) {
	return p.statements(ast.NodeRightCurly)
}

func (p *parser) statement() (*ast.Node, error) {
	var (
		inner *ast.Node
		err   error
	)
	terminated := true
	switch tok := p.peek(); tok.Type {
	case ast.NodeLet:
		inner, err = p.varDef()
	case ast.NodeIdentifier:
		inner, err = p.rootVarRef()
	case ast.NodeReturn:
		inner, err = p.returnStatement()
	case ast.NodeBreak:
		inner, err = p.sequence(ast.NodeBreakStatement, ast.NodeBreak)
	case ast.NodeIfKw:
		inner, err = p.ifBlock()
		terminated = false
	case ast.NodeFor:
		inner, err = p.forBlock()
		terminated = false
	case ast.NodeWhile:
		inner, err = p.sequence(ast.NodeWhileBlock, ast.NodeWhile, ast.NodeLeftParen, p.expression,
			ast.NodeRightParen, ast.NodeLeftCurly, p.block, ast.NodeRightCurly)
		terminated = false
	case ast.NodeFunc:
		inner, err = p.sequence(ast.NodeFunctionDef, ast.NodeFunc, ast.NodeIdentifier, ast.NodeLeftParen,
			p.argumentsDef, ast.NodeRightParen, ast.NodeLeftCurly, p.block, ast.NodeRightCurly)
		terminated = false
	case ast.NodePrint:
		inner, err = p.sequence(ast.NodeOutput, ast.NodePrint, ast.NodeLeftParen, p.expression,
			ast.NodeRightParen, ast.NodeSemiColon)
		terminated = false
	default:
		return nil, p.errorf(tok, "unexpected %s at start of statement", tok)
	}
	if err != nil {
		return nil, err
	}
	if !terminated {
		return ast.N(ast.NodeStatement, inner), nil
	}
	semi, err := p.expect(ast.NodeSemiColon)
	if err != nil {
		return nil, err
	}
	return ast.N(ast.NodeStatement, inner, semi), nil
}

func (p *parser) varDef() (*ast.Node, error) {
	return p.sequence(ast.NodeVarDef, ast.NodeLet, ast.NodeIdentifier, ast.NodeAssign, p.expression)
}

func (p *parser) varAssign() (*ast.Node, error) {
	return p.sequence(ast.NodeVarAssign, ast.NodeIdentifier, ast.NodeAssign, p.expression)
}

// rootVarRef parses a statement that starts with an identifier: either a
// call `f(args)` or an assignment `x = expr`.
func (p *parser) rootVarRef() (*ast.Node, error) {
	ident, err := p.expect(ast.NodeIdentifier)
	if err != nil {
		return nil, err
	}
	var op *ast.Node
	switch tok := p.peek(); tok.Type {
	case ast.NodeLeftParen:
		op, err = p.sequence(ast.NodeRootVarRefOperator, ast.NodeLeftParen, p.arguments, ast.NodeRightParen)
	case ast.NodeAssign:
		op, err = p.sequence(ast.NodeRootVarRefOperator, ast.NodeAssign, p.expression)
	default:
		return nil, p.errorf(tok, "expected call or assignment after %q, found %s", ident.Lexeme, tok)
	}
	if err != nil {
		return nil, err
	}
	return ast.N(ast.NodeRootVarRef, ident, op), nil
}

func (p *parser) returnStatement() (*ast.Node, error) {
	kw, err := p.expect(ast.NodeReturn)
	if err != nil {
		return nil, err
	}
	value := ast.N(ast.NodeReturnValue)
	if !p.at(ast.NodeSemiColon) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		value.Children = []*ast.Node{expr}
	}
	return ast.N(ast.NodeReturnStatement, kw, value), nil
}

func (p *parser) ifBlock() (*ast.Node, error) {
	first, err := p.sequence(ast.NodeIf, ast.NodeIfKw, ast.NodeLeftParen, p.expression,
		ast.NodeRightParen, ast.NodeLeftCurly, p.block, ast.NodeRightCurly)
	if err != nil {
		return nil, err
	}
	node := ast.N(ast.NodeIfBlock, first)
	for p.at(ast.NodeElifKw) {
		branch, err := p.sequence(ast.NodeElif, ast.NodeElifKw, ast.NodeLeftParen, p.expression,
			ast.NodeRightParen, ast.NodeLeftCurly, p.block, ast.NodeRightCurly)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, branch)
	}
	if p.at(ast.NodeElseKw) {
		branch, err := p.sequence(ast.NodeElse, ast.NodeElseKw, ast.NodeLeftCurly, p.block, ast.NodeRightCurly)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, branch)
	}
	return node, nil
}

func (p *parser) forBlock() (*ast.Node, error) {
	return p.sequence(ast.NodeForBlock, ast.NodeFor, ast.NodeLeftParen, p.varDef, ast.NodeSemiColon,
		p.expression, ast.NodeSemiColon, p.varAssign, ast.NodeRightParen,
		ast.NodeLeftCurly, p.block, ast.NodeRightCurly)
}

// optionalOperator parses `op next` when the upcoming token is in ops, and
// an empty node otherwise.
func (p *parser) optionalOperator(kind ast.NodeType, ops func(ast.NodeType) bool, next func() (*ast.Node, error)) (*ast.Node, error) {
	tok := p.peek()
	if !ops(tok.Type) {
		return ast.N(kind), nil
	}
	p.advance()
	rhs, err := next()
	if err != nil {
		return nil, err
	}
	return ast.N(kind, ast.T(tok.Type, tok.Lexeme), rhs), nil
}

func (p *parser) expression() (*ast.Node, error) {
	operand, err := p.operand()
	if err != nil {
		return nil, err
	}
	op, err := p.optionalOperator(ast.NodeOperandOperator, func(t ast.NodeType) bool {
		return comparisonOperators[t]
	}, p.expression)
	if err != nil {
		return nil, err
	}
	return ast.N(ast.NodeExpression, operand, op), nil
}

func (p *parser) operand() (*ast.Node, error) {
	term, err := p.term()
	if err != nil {
		return nil, err
	}
	op, err := p.optionalOperator(ast.NodeTermOperator, func(t ast.NodeType) bool {
		return t == ast.NodePlus || t == ast.NodeMinus
	}, p.operand)
	if err != nil {
		return nil, err
	}
	return ast.N(ast.NodeOperand, term, op), nil
}

func (p *parser) term() (*ast.Node, error) {
	factor, err := p.factor()
	if err != nil {
		return nil, err
	}
	op, err := p.optionalOperator(ast.NodeFactorOperator, func(t ast.NodeType) bool {
		return t == ast.NodeMultiply || t == ast.NodeDivide
	}, p.term)
	if err != nil {
		return nil, err
	}
	return ast.N(ast.NodeTerm, factor, op), nil
}

func (p *parser) factor() (*ast.Node, error) {
	switch tok := p.peek(); tok.Type {
	case ast.NodeLeftParen:
		return p.sequence(ast.NodeFactor, ast.NodeLeftParen, p.expression, ast.NodeRightParen)
	case ast.NodeInteger:
		p.advance()
		return ast.N(ast.NodeFactor, ast.T(tok.Type, tok.Lexeme)), nil
	case ast.NodeIdentifier:
		p.advance()
		call := ast.N(ast.NodeCall)
		if p.at(ast.NodeLeftParen) {
			var err error
			call, err = p.sequence(ast.NodeCall, ast.NodeLeftParen, p.arguments, ast.NodeRightParen)
			if err != nil {
				return nil, err
			}
		}
		return ast.N(ast.NodeFactor, ast.N(ast.NodeVarRef, ast.T(tok.Type, tok.Lexeme), call)), nil
	default:
		return nil, p.errorf(tok, "expected expression, found %s", tok)
	}
}

func (p *parser) arguments() (*ast.Node, error) {
	return p.list(ast.NodeArguments, func() (*ast.Node, error) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		return ast.N(ast.NodeArgument, expr), nil
	})
}

func (p *parser) argumentsDef() (*ast.Node, error) {
	return p.list(ast.NodeArgumentsDef, func() (*ast.Node, error) {
		ident, err := p.expect(ast.NodeIdentifier)
		if err != nil {
			return nil, err
		}
		return ast.N(ast.NodeArgumentDef, ident), nil
	})
}

// list parses a possibly empty, comma separated list closed by ')'.
func (p *parser) list(kind ast.NodeType, item func() (*ast.Node, error)) (*ast.Node, error) {
	node := ast.N(kind)
	if p.at(ast.NodeRightParen) {
		return node, nil
	}
	for {
		child, err := item()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
		if !p.at(ast.NodeComma) {
			return node, nil
		}
		comma, _ := p.expect(ast.NodeComma)
		node.Children = append(node.Children, comma)
	}
}
