package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lara/interpreter-go/pkg/interpreter"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifestParsesInterpreterSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
name: demo
entry: src/main.lara
interpreter:
  scoping: definition_time
  max_call_depth: 250
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if manifest.Name != "demo" {
		t.Fatalf("expected name demo, got %q", manifest.Name)
	}
	if manifest.Interpreter.Scoping != interpreter.DefinitionTimeScoping {
		t.Fatalf("expected definition-time scoping, got %s", manifest.Interpreter.Scoping)
	}
	if manifest.Interpreter.MaxCallDepth != 250 {
		t.Fatalf("expected max depth 250, got %d", manifest.Interpreter.MaxCallDepth)
	}
	if got, want := manifest.EntryPath(), filepath.Join(dir, "src", "main.lara"); got != want {
		t.Fatalf("expected entry path %s, got %s", want, got)
	}

	interp := interpreter.New(manifest.Options()...)
	opts := interp.Options()
	if opts.Scoping != interpreter.DefinitionTimeScoping || opts.MaxCallDepth != 250 {
		t.Fatalf("options not applied: %+v", opts)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "name: bare\n")

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if manifest.Interpreter.Scoping != interpreter.CallTimeScoping {
		t.Fatalf("expected call-time scoping by default, got %s", manifest.Interpreter.Scoping)
	}
	if manifest.EntryPath() != "" {
		t.Fatalf("expected no entry, got %q", manifest.EntryPath())
	}
	interp := interpreter.New(manifest.Options()...)
	if interp.Options().MaxCallDepth != interpreter.DefaultMaxCallDepth {
		t.Fatalf("expected default depth, got %d", interp.Options().MaxCallDepth)
	}
}

func TestLoadManifestValidationErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, `
entry: main.txt
interpreter:
  scoping: sideways
  max_call_depth: 0
`)

	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(verr.Issues), verr.Issues)
	}
	for _, want := range []string{"name must be provided", "main.txt", "sideways", "max_call_depth"} {
		if !strings.Contains(verr.Error(), want) {
			t.Fatalf("expected %q in %q", want, verr.Error())
		}
	}
}

func TestLoadManifestRejectsDepthAboveLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, fmt.Sprintf("name: deep\ninterpreter:\n  max_call_depth: %d\n", interpreter.MaxCallDepthLimit+1))

	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 1 || !strings.Contains(verr.Issues[0], "at most") {
		t.Fatalf("expected a single depth limit issue, got %v", err)
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "name: demo\ntargets: {}\n")

	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "targets") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "")

	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "name: outer\n")
	nested := filepath.Join(root, "a", "b")
	writeFile(t, filepath.Join(nested, "main.lara"), "print(1);\n")

	found, err := FindManifest(filepath.Join(nested, "main.lara"))
	if err != nil {
		t.Fatalf("FindManifest returned error: %v", err)
	}
	want, _ := filepath.Abs(filepath.Join(root, ManifestName))
	if found != want {
		t.Fatalf("expected %s, got %s", want, found)
	}
}
