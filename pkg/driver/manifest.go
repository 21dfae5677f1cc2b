package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lara/interpreter-go/pkg/interpreter"
)

// ManifestName is the file FindManifest looks for.
const ManifestName = "lara.yml"

// Manifest represents the parsed contents of lara.yml.
type Manifest struct {
	Path        string
	Name        string
	Entry       string
	Interpreter InterpreterConfig
}

// InterpreterConfig holds evaluator settings from the manifest.
type InterpreterConfig struct {
	Scoping      interpreter.ScopingMode
	MaxCallDepth int
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed")
	if e.Path != "" {
		b.WriteString(" for ")
		b.WriteString(e.Path)
	}
	b.WriteString(":")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ErrManifestNotFound is returned by FindManifest when no lara.yml exists in
// the directory or any of its parents.
var ErrManifestNotFound = errors.New("manifest: " + ManifestName + " not found")

// LoadManifest parses lara.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	manifest, err := decodeManifest(file, absPath)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func decodeManifest(r io.Reader, path string) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", path)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return raw.toManifest(path)
}

// FindManifest walks upward from start looking for lara.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

// EntryPath resolves the entry file relative to the manifest directory.
func (m *Manifest) EntryPath() string {
	if m == nil || m.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Entry) {
		return m.Entry
	}
	return filepath.Join(filepath.Dir(m.Path), m.Entry)
}

// Options converts the interpreter section into constructor options. A nil
// manifest yields no options.
func (m *Manifest) Options() []interpreter.Option {
	if m == nil {
		return nil
	}
	opts := []interpreter.Option{interpreter.WithScoping(m.Interpreter.Scoping)}
	if m.Interpreter.MaxCallDepth > 0 {
		opts = append(opts, interpreter.WithMaxCallDepth(m.Interpreter.MaxCallDepth))
	}
	return opts
}

type manifestFile struct {
	Name        string                 `yaml:"name"`
	Entry       string                 `yaml:"entry"`
	Interpreter *interpreterConfigFile `yaml:"interpreter"`
}

type interpreterConfigFile struct {
	Scoping      string `yaml:"scoping"`
	MaxCallDepth *int   `yaml:"max_call_depth"`
}

func (mf manifestFile) toManifest(path string) (*Manifest, error) {
	errs := ValidationError{Path: path}
	manifest := &Manifest{
		Path:  path,
		Name:  strings.TrimSpace(mf.Name),
		Entry: strings.TrimSpace(mf.Entry),
	}
	if manifest.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if manifest.Entry != "" {
		switch strings.ToLower(filepath.Ext(manifest.Entry)) {
		case ".lara", ".json", ".yaml", ".yml":
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q must be a .lara source or a .json/.yaml AST", manifest.Entry))
		}
	}
	if cfg := mf.Interpreter; cfg != nil {
		mode, err := interpreter.ParseScopingMode(cfg.Scoping)
		if err != nil {
			errs.Issues = append(errs.Issues, "interpreter.scoping: "+err.Error())
		}
		manifest.Interpreter.Scoping = mode
		if cfg.MaxCallDepth != nil {
			switch n := *cfg.MaxCallDepth; {
			case n <= 0:
				errs.Issues = append(errs.Issues, fmt.Sprintf("interpreter.max_call_depth must be positive, got %d", n))
			case n > interpreter.MaxCallDepthLimit:
				errs.Issues = append(errs.Issues, fmt.Sprintf("interpreter.max_call_depth must be at most %d, got %d", interpreter.MaxCallDepthLimit, n))
			default:
				manifest.Interpreter.MaxCallDepth = *cfg.MaxCallDepth
			}
		}
	}
	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return manifest, nil
}
