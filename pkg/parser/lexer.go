package parser

import (
	"fmt"

	"lara/interpreter-go/pkg/ast"
)

// EOF marks the end of the token stream.
const EOF ast.NodeType = "EOF"

// Token is one lexeme with its terminal type and 1-based position.
type Token struct {
	Type   ast.NodeType
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
}

var keywords = map[string]ast.NodeType{
	"let":    ast.NodeLet,
	"func":   ast.NodeFunc,
	"if":     ast.NodeIfKw,
	"elif":   ast.NodeElifKw,
	"else":   ast.NodeElseKw,
	"for":    ast.NodeFor,
	"while":  ast.NodeWhile,
	"print":  ast.NodePrint,
	"return": ast.NodeReturn,
	"break":  ast.NodeBreak,
}

var punctuation = map[byte]ast.NodeType{
	';': ast.NodeSemiColon,
	',': ast.NodeComma,
	'(': ast.NodeLeftParen,
	')': ast.NodeRightParen,
	'{': ast.NodeLeftCurly,
	'}': ast.NodeRightCurly,
	'+': ast.NodePlus,
	'-': ast.NodeMinus,
	'*': ast.NodeMultiply,
	'/': ast.NodeDivide,
}

type lexer struct {
	src    string
	pos    int
	line   int
	col    int
	tokens []Token
}

// Tokenize splits source text into tokens using maximal munch. A '-' directly
// followed by a digit starts a negative literal unless the previous token can
// end an operand, so `x-1` is a subtraction and `let y = -1;` is a literal.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.src) {
			l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Column: l.col})
			return l.tokens, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.advance(1)
		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		default:
			return
		}
	}
}

func (l *lexer) advance(n int) {
	for k := 0; k < n && l.pos < len(l.src); k++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) emit(t ast.NodeType, length int) {
	l.tokens = append(l.tokens, Token{
		Type:   t,
		Lexeme: l.src[l.pos : l.pos+length],
		Line:   l.line,
		Column: l.col,
	})
	l.advance(length)
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *lexer) next() error {
	c := l.src[l.pos]
	switch {
	case isDigit(c):
		return l.integer(0)
	case c == '-' && isDigit(l.peekByte(1)) && !l.previousEndsOperand():
		return l.integer(1)
	case isIdentStart(c):
		n := 1
		for isIdentPart(l.peekByte(n)) {
			n++
		}
		word := l.src[l.pos : l.pos+n]
		if kw, ok := keywords[word]; ok {
			l.emit(kw, n)
		} else {
			l.emit(ast.NodeIdentifier, n)
		}
		return nil
	case c == '<' || c == '>':
		eq := l.peekByte(1) == '='
		switch {
		case c == '<' && eq:
			l.emit(ast.NodeLessEqual, 2)
		case c == '<':
			l.emit(ast.NodeLess, 1)
		case eq:
			l.emit(ast.NodeGreaterEqual, 2)
		default:
			l.emit(ast.NodeGreater, 1)
		}
		return nil
	case c == '=':
		l.emit(ast.NodeAssign, 1)
		return nil
	}
	if t, ok := punctuation[c]; ok {
		l.emit(t, 1)
		return nil
	}
	return &SyntaxError{Line: l.line, Column: l.col, Msg: fmt.Sprintf("unexpected character %q", c)}
}

func (l *lexer) integer(sign int) error {
	n := sign
	for isDigit(l.peekByte(n)) {
		n++
	}
	digits := l.src[l.pos+sign : l.pos+n]
	if len(digits) > 1 && digits[0] == '0' {
		return &SyntaxError{Line: l.line, Column: l.col, Msg: fmt.Sprintf("integer literal %q has a leading zero", l.src[l.pos:l.pos+n])}
	}
	if isIdentStart(l.peekByte(n)) {
		return &SyntaxError{Line: l.line, Column: l.col, Msg: fmt.Sprintf("invalid integer literal %q", l.src[l.pos:l.pos+n+1])}
	}
	l.emit(ast.NodeInteger, n)
	return nil
}

func (l *lexer) previousEndsOperand() bool {
	if len(l.tokens) == 0 {
		return false
	}
	switch l.tokens[len(l.tokens)-1].Type {
	case ast.NodeInteger, ast.NodeIdentifier, ast.NodeRightParen:
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
