// Package codec provides the parse/serialize pair for every supported
// serialization format. All codecs share the neutral document model from
// the document package.
package codec

import (
	"fmt"
	"strings"
)

// Format identifies a supported serialization format
type Format string

const (
	// FormatJSON is plain JSON
	FormatJSON Format = "json"
	// FormatYAML is YAML 1.2 (single document)
	FormatYAML Format = "yaml"
	// FormatTOML is TOML 1.0
	FormatTOML Format = "toml"
	// FormatXML is XML mapped onto the neutral document
	FormatXML Format = "xml"
	// FormatOpenAPI is an OpenAPI 3.x description written in JSON or YAML
	FormatOpenAPI Format = "openapi"
)

// String returns the canonical lower-case name
func (f Format) String() string {
	return string(f)
}

// Formats returns every supported format in canonical order
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatXML, FormatOpenAPI}
}

// ParseFormat converts a format name to a Format. Names are matched
// case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTOML, FormatXML, FormatOpenAPI:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Error types for the codec package
var (
	// ErrParse marks text that does not conform to a format's grammar
	ErrParse = fmt.Errorf("parse error")
	// ErrUnsupportedStructure marks a document the target format cannot represent
	ErrUnsupportedStructure = fmt.Errorf("unsupported structure")
	// ErrUnknownFormat marks a format name outside the supported set
	ErrUnknownFormat = fmt.Errorf("unknown format")
	// ErrEmptyInput marks blank input; it always travels together with ErrParse
	ErrEmptyInput = fmt.Errorf("empty input")
)

// Options controls serialization
type Options struct {
	// Pretty enables human-oriented layout (indentation, block style)
	Pretty bool
	// Indent is the number of spaces per nesting level in pretty mode
	Indent int
}

// DefaultOptions returns pretty output indented by two spaces
func DefaultOptions() *Options {
	return &Options{
		Pretty: true,
		Indent: 2,
	}
}

func (o *Options) indent() string {
	if o.Indent <= 0 {
		return ""
	}
	return strings.Repeat(" ", o.Indent)
}

func resolveOptions(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	return opts
}

// Codec parses text into a neutral document and serializes it back.
//
// Parse fails with ErrParse when the text does not conform to the format.
// Serialize only fails with ErrUnsupportedStructure, when the document
// violates a hard structural requirement of the format.
type Codec interface {
	// Format returns the format this codec handles
	Format() Format
	// Parse converts text into a neutral document
	Parse(text string) (any, error)
	// Serialize converts a neutral document into text
	Serialize(doc any, opts *Options) (string, error)
}

func parseError(f Format, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrParse, f, err)
}

func structureError(f Format, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrUnsupportedStructure, f, fmt.Sprintf(format, args...))
}

func checkBlank(f Format, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s: %w", ErrParse, f, ErrEmptyInput)
	}
	return nil
}
