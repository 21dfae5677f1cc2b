package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"lara/interpreter-go/pkg/interpreter"
	"lara/interpreter-go/pkg/parser"
)

// FixtureManifestName names the expectations file inside a fixture directory.
const FixtureManifestName = "manifest.yml"

// SyntaxErrorKind is the expected error name for fixtures that must fail to parse.
const SyntaxErrorKind = "SyntaxError"

// Fixture is a program directory paired with its expected output.
type Fixture struct {
	Dir          string
	Description  string
	Entry        string
	Scoping      interpreter.ScopingMode
	MaxCallDepth int
	Expect       FixtureExpectation
}

// FixtureExpectation lists printed lines and, optionally, the error kind the
// run must end with. Output printed before the error is still compared.
type FixtureExpectation struct {
	Stdout []string `yaml:"stdout"`
	Error  string   `yaml:"error"`
}

// FixtureOutcome records what a fixture run produced.
type FixtureOutcome struct {
	Stdout []string
	Err    error
}

type fixtureFile struct {
	Description  string             `yaml:"description"`
	Entry        string             `yaml:"entry"`
	Scoping      string             `yaml:"scoping"`
	MaxCallDepth int                `yaml:"max_call_depth"`
	Expect       FixtureExpectation `yaml:"expect"`
}

// DiscoverFixtures returns every directory under root holding a manifest.yml,
// in lexical order.
func DiscoverFixtures(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == FixtureManifestName {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fixtures: walk %s: %w", root, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// LoadFixture reads manifest.yml from dir.
func LoadFixture(dir string) (*Fixture, error) {
	path := filepath.Join(dir, FixtureManifestName)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	var raw fixtureFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fixtures: parse %s: %w", path, err)
	}

	mode, err := interpreter.ParseScopingMode(raw.Scoping)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %w", path, err)
	}
	entry := raw.Entry
	if entry == "" {
		entry = "program.lara"
	}
	return &Fixture{
		Dir:          dir,
		Description:  raw.Description,
		Entry:        entry,
		Scoping:      mode,
		MaxCallDepth: raw.MaxCallDepth,
		Expect:       raw.Expect,
	}, nil
}

// Name is the fixture directory's base name.
func (f *Fixture) Name() string {
	return filepath.Base(f.Dir)
}

// Run loads and evaluates the fixture entry in a fresh interpreter. Load
// failures other than syntax errors are returned as the error; evaluation
// and syntax errors are reported in the outcome.
func (f *Fixture) Run() (*FixtureOutcome, error) {
	root, err := LoadProgram(filepath.Join(f.Dir, f.Entry))
	if err != nil {
		var syn *parser.SyntaxError
		if errors.As(err, &syn) {
			return &FixtureOutcome{Err: err}, nil
		}
		return nil, err
	}
	var stdout bytes.Buffer
	interp := interpreter.New(
		interpreter.WithStdout(&stdout),
		interpreter.WithScoping(f.Scoping),
		interpreter.WithMaxCallDepth(f.MaxCallDepth),
	)
	runErr := interp.Run(root)
	return &FixtureOutcome{Stdout: splitLines(stdout.String()), Err: runErr}, nil
}

// Check compares an outcome with the expectations.
func (f *Fixture) Check(out *FixtureOutcome) error {
	if want := f.Expect.Error; want != "" {
		if out.Err == nil {
			return fmt.Errorf("fixture %s: expected %s error, run succeeded", f.Name(), want)
		}
		if !errorMatches(out.Err, want) {
			return fmt.Errorf("fixture %s: expected %s error, got %v", f.Name(), want, out.Err)
		}
	} else if out.Err != nil {
		return fmt.Errorf("fixture %s: unexpected error: %w", f.Name(), out.Err)
	}
	if !slices.Equal(out.Stdout, f.Expect.Stdout) {
		return fmt.Errorf("fixture %s: stdout mismatch\n got: %q\nwant: %q", f.Name(), out.Stdout, f.Expect.Stdout)
	}
	return nil
}

func errorMatches(err error, kind string) bool {
	if kind == SyntaxErrorKind {
		var syn *parser.SyntaxError
		return errors.As(err, &syn)
	}
	return errors.Is(err, interpreter.ErrorKind(kind))
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
