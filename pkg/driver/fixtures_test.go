package driver

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/interpreter"
	"lara/interpreter-go/pkg/parser"
)

func TestFixtures(t *testing.T) {
	root := filepath.Join("..", "..", "testdata", "fixtures")
	dirs, err := DiscoverFixtures(root)
	if err != nil {
		t.Fatalf("DiscoverFixtures: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatalf("no fixtures found under %s", root)
	}
	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			fixture, err := LoadFixture(dir)
			if err != nil {
				t.Fatalf("LoadFixture: %v", err)
			}
			outcome, err := fixture.Run()
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if err := fixture.Check(outcome); err != nil {
				t.Fatalf("%v", err)
			}
		})
	}
}

func TestFixtureCheckReportsMismatch(t *testing.T) {
	fixture := &Fixture{Dir: "demo", Expect: FixtureExpectation{Stdout: []string{"1"}}}
	if err := fixture.Check(&FixtureOutcome{Stdout: []string{"2"}}); err == nil || !strings.Contains(err.Error(), "stdout mismatch") {
		t.Fatalf("expected stdout mismatch, got %v", err)
	}
	fixture.Expect.Error = string(interpreter.UndefinedSymbol)
	if err := fixture.Check(&FixtureOutcome{Stdout: []string{"1"}}); err == nil || !strings.Contains(err.Error(), "run succeeded") {
		t.Fatalf("expected missing error report, got %v", err)
	}
	wrong := &interpreter.Error{Kind: interpreter.TypeMismatch}
	if err := fixture.Check(&FixtureOutcome{Stdout: []string{"1"}, Err: wrong}); err == nil {
		t.Fatalf("expected kind mismatch to fail")
	}
}

func TestLoadProgramFormats(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "main.lara")
	writeFile(t, source, "let x = 2;\nprint(x * 21);\n")

	fromSource, err := LoadProgram(source)
	if err != nil {
		t.Fatalf("LoadProgram(source): %v", err)
	}

	for _, format := range []ast.Format{ast.FormatJSON, ast.FormatYAML} {
		var buf bytes.Buffer
		if err := ast.Encode(&buf, fromSource, format); err != nil {
			t.Fatalf("Encode %s: %v", format, err)
		}
		path := filepath.Join(dir, "main."+string(format))
		writeFile(t, path, buf.String())
		decoded, err := LoadProgram(path)
		if err != nil {
			t.Fatalf("LoadProgram(%s): %v", path, err)
		}
		if decoded.String() != fromSource.String() {
			t.Fatalf("%s round trip changed the tree\n got: %s\nwant: %s", format, decoded, fromSource)
		}

		var out bytes.Buffer
		if err := interpreter.New(interpreter.WithStdout(&out)).Run(decoded); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if out.String() != "42\n" {
			t.Fatalf("expected 42, got %q", out.String())
		}
	}
}

func TestLoadProgramErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.lara")
	writeFile(t, bad, "print(1)\n")
	_, err := LoadProgram(bad)
	var syn *parser.SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if !strings.Contains(err.Error(), bad) {
		t.Fatalf("expected path in error, got %v", err)
	}

	if _, err := LoadProgram(filepath.Join(dir, "notes.txt")); err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
	if _, err := LoadProgram(filepath.Join(dir, "missing.lara")); err == nil {
		t.Fatalf("expected read error for missing file")
	}
}
