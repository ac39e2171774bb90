package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alevsk/shapeshift/internal/types"
	"gopkg.in/yaml.v3"
)

// Formatter renders an operation result for display. Supported results
// are *types.TransformResult, *types.ValidationResult, *types.DetectResult
// and *types.BatchResult.
type Formatter interface {
	Format(data any) (string, error)
}

// Type represents the type of formatter
type Type string

const (
	// TypeRaw prints only the transformed document
	TypeRaw Type = "raw"
	// TypeJSON formats data as JSON
	TypeJSON Type = "json"
	// TypeYAML formats data as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats data as a table
	TypeTable Type = "table"
	// TypeMarkdown formats data as markdown
	TypeMarkdown Type = "markdown"
)

// ErrUnsupportedResult is returned for values a formatter cannot render
var ErrUnsupportedResult = fmt.Errorf("unsupported result type")

// Raw prints the formatted document of a transform result
type Raw struct{}

// JSON implements JSON formatting
type JSON struct {
	opts *Options
}

// YAML implements YAML formatting
type YAML struct{}

// Format returns the formatted document as is
func (r *Raw) Format(data any) (string, error) {
	res, ok := data.(*types.TransformResult)
	if !ok {
		return "", fmt.Errorf("%w: raw output needs a transform result, got %T", ErrUnsupportedResult, data)
	}
	return res.Formatted, nil
}

// Format formats data as JSON. Markup in formatted documents is not
// HTML-escaped.
func (j *JSON) Format(data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", j.opts.indent())
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Format formats data as YAML
func (y *YAML) Format(data any) (string, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(out), nil
}

// Options tunes the formatters that support it
type Options struct {
	// Indent is the JSON indentation width
	Indent int
}

// DefaultOptions returns two space indentation
func DefaultOptions() *Options {
	return &Options{Indent: 2}
}

func (o *Options) indent() string {
	if o == nil || o.Indent <= 0 {
		return "  "
	}
	return fmt.Sprintf("%*s", o.Indent, "")
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeRaw, TypeJSON, TypeYAML, TypeTable, TypeMarkdown:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// NewFormatter creates a new formatter of the specified type
func NewFormatter(t Type, opts *Options) (Formatter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch t {
	case TypeRaw:
		return &Raw{}, nil
	case TypeJSON:
		return &JSON{opts: opts}, nil
	case TypeYAML:
		return &YAML{}, nil
	case TypeTable:
		return &Table{}, nil
	case TypeMarkdown:
		return &Markdown{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}
