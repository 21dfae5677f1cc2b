package parser_test

import (
	"errors"
	"strings"
	"testing"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/parser"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	return root
}

func assertTree(t *testing.T, got, want *ast.Node) {
	t.Helper()
	if got.String() != want.String() {
		t.Fatalf("tree mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestTokenizeNegativeLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want []ast.NodeType
	}{
		{"x-1", []ast.NodeType{ast.NodeIdentifier, ast.NodeMinus, ast.NodeInteger}},
		{"= -1", []ast.NodeType{ast.NodeAssign, ast.NodeInteger}},
		{"(-1)", []ast.NodeType{ast.NodeLeftParen, ast.NodeInteger, ast.NodeRightParen}},
		{"2 - -3", []ast.NodeType{ast.NodeInteger, ast.NodeMinus, ast.NodeInteger}},
		{"a<=b>=c", []ast.NodeType{ast.NodeIdentifier, ast.NodeLessEqual, ast.NodeIdentifier, ast.NodeGreaterEqual, ast.NodeIdentifier}},
	}
	for _, tc := range cases {
		toks, err := parser.Tokenize(tc.src)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tc.src, err)
		}
		if len(toks) != len(tc.want)+1 || toks[len(toks)-1].Type != parser.EOF {
			t.Fatalf("Tokenize(%q) = %v", tc.src, toks)
		}
		for i, want := range tc.want {
			if toks[i].Type != want {
				t.Fatalf("Tokenize(%q)[%d] = %s, want %s", tc.src, i, toks[i].Type, want)
			}
		}
	}
}

func TestTokenizeTracksPositionsAndComments(t *testing.T) {
	toks, err := parser.Tokenize("# header\nlet x = 0;\n  print(x);")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Type != ast.NodeLet || toks[0].Line != 2 || toks[0].Column != 1 {
		t.Fatalf("unexpected first token %+v", toks[0])
	}
	if toks[3].Lexeme != "0" {
		t.Fatalf("expected literal 0, got %+v", toks[3])
	}
	if toks[5].Type != ast.NodePrint || toks[5].Line != 3 || toks[5].Column != 3 {
		t.Fatalf("unexpected print token %+v", toks[5])
	}
}

func TestTokenizeRejectsBadLiterals(t *testing.T) {
	for _, src := range []string{"007", "12abc", "let $ = 1;"} {
		_, err := parser.Tokenize(src)
		var syn *parser.SyntaxError
		if !errors.As(err, &syn) {
			t.Fatalf("Tokenize(%q) expected SyntaxError, got %v", src, err)
		}
	}
}

func TestParseStatements(t *testing.T) {
	root := mustParse(t, `
let x = 5;
x = x + 1;
print(x);
f(1, y);
return;
break;
`)
	want := ast.Program(
		ast.Let("x", ast.Int(5)),
		ast.RootSet("x", ast.Bin("+", ast.Ref("x"), ast.Int(1))),
		ast.Print(ast.Ref("x")),
		ast.Call("f", ast.Int(1), ast.Ref("y")),
		ast.Ret(nil),
		ast.Break(),
	)
	assertTree(t, root, want)
}

func TestParseControlFlow(t *testing.T) {
	root := mustParse(t, `
func add(a, b) {
  return a + b;
}
for (let i = 0; i < 3; i = i + 1) {
  if (i > 1) { break; } elif (i) { print(i); } else { print(0); }
}
while (0) { }
`)
	want := ast.Program(
		ast.Func("add", []string{"a", "b"}, ast.Ret(ast.Bin("+", ast.Ref("a"), ast.Ref("b")))),
		ast.For(
			ast.VarDef("i", ast.Int(0)),
			ast.Bin("<", ast.Ref("i"), ast.Int(3)),
			ast.VarAssign("i", ast.Bin("+", ast.Ref("i"), ast.Int(1))),
			ast.IfChain(
				ast.IfBranch(ast.Bin(">", ast.Ref("i"), ast.Int(1)), ast.Break()),
				ast.ElifBranch(ast.Ref("i"), ast.Print(ast.Ref("i"))),
				ast.ElseBranch(ast.Print(ast.Int(0))),
			),
		),
		ast.While(ast.Int(0)),
	)
	assertTree(t, root, want)
}

func TestParseOperatorsAreRightRecursive(t *testing.T) {
	root := mustParse(t, "print(10 - 3 - 2);")
	expr := root.Child(0).Child(0).Child(0).Child(2)
	operand := expr.Child(0)
	if !operand.Is(ast.NodeOperand) || operand.Child(1).Empty() {
		t.Fatalf("expected subtraction operand, got %s", operand)
	}
	rhs := operand.Child(1).Child(1)
	if !rhs.Is(ast.NodeOperand) || rhs.Child(1).Empty() || !rhs.Child(1).Child(0).Is(ast.NodeMinus) {
		t.Fatalf("expected nested subtraction on the right, got %s", rhs)
	}
	if got := rhs.Child(1).Child(1).Child(0).Child(0).Child(0).Lexeme; got != "2" {
		t.Fatalf("expected innermost right operand 2, got %q", got)
	}
}

func TestParseMultiplicationBindsTighter(t *testing.T) {
	root := mustParse(t, "print(1 + 2 * 3);")
	got := root.Child(0).Child(0).Child(0).Child(2)
	rhs := got.Child(0).Child(1).Child(1).Child(0)
	if !rhs.Is(ast.NodeTerm) || !rhs.Child(1).Child(0).Is(ast.NodeMultiply) {
		t.Fatalf("expected multiplication term on the right of '+', got %s", got)
	}
}

func TestParseCallInsideExpression(t *testing.T) {
	root := mustParse(t, "let r = f(g(1), 2);")
	want := ast.Program(ast.Let("r", ast.CallExpr("f", ast.CallExpr("g", ast.Int(1)), ast.Int(2))))
	assertTree(t, root, want)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src   string
		atEOF bool
		msg   string
	}{
		{"let x = ;", false, "expected expression"},
		{"x;", false, "expected call or assignment"},
		{"print(1)", true, "expected SEMI_COLON"},
		{"func f() {", true, "expected RIGHT_CURLY"},
		{"}", false, "unexpected RIGHT_CURLY"},
		{"let 1 = 2;", false, "expected IDENTIFIER"},
	}
	for _, tc := range cases {
		_, err := parser.Parse(tc.src)
		var syn *parser.SyntaxError
		if !errors.As(err, &syn) {
			t.Fatalf("Parse(%q) expected SyntaxError, got %v", tc.src, err)
		}
		if syn.AtEOF != tc.atEOF {
			t.Fatalf("Parse(%q) AtEOF = %v, want %v (%v)", tc.src, syn.AtEOF, tc.atEOF, err)
		}
		if !strings.Contains(syn.Msg, tc.msg) {
			t.Fatalf("Parse(%q) message %q does not contain %q", tc.src, syn.Msg, tc.msg)
		}
	}
}

func TestParseEmptyProgram(t *testing.T) {
	root := mustParse(t, "  # nothing here\n")
	assertTree(t, root, ast.Program())
}
