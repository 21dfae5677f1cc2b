package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format selects a serialization for AST dumps.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Decode reads a tree in the given format. Unknown fields are rejected so
// dumps from a mismatched parser fail loudly.
func Decode(r io.Reader, format Format) (*Node, error) {
	var root Node
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&root); err != nil {
			return nil, fmt.Errorf("ast: decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("ast: empty yaml document")
			}
			return nil, fmt.Errorf("ast: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("ast: unsupported format %q", format)
	}
	if root.Type == "" {
		return nil, fmt.Errorf("ast: root node has no name")
	}
	return &root, nil
}

// Encode writes the tree in the given format.
func Encode(w io.Writer, node *Node, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(node)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("ast: unsupported format %q", format)
	}
}
