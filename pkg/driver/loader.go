package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/parser"
)

// LoadProgram reads a program from disk. Source files (.lara) are parsed;
// .json, .yaml and .yml files hold an already-built positional tree.
func LoadProgram(path string) (*ast.Node, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".lara", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", path, err)
		}
		root, err := parser.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", path, err)
		}
		return root, nil
	case ".json", ".yaml", ".yml":
		format := ast.FormatJSON
		if ext != ".json" {
			format = ast.FormatYAML
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("loader: open %s: %w", path, err)
		}
		defer file.Close()
		root, err := ast.Decode(file, format)
		if err != nil {
			return nil, fmt.Errorf("loader: decode %s: %w", path, err)
		}
		return root, nil
	default:
		return nil, fmt.Errorf("loader: unsupported file type %q for %s", ext, path)
	}
}
