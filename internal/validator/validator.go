// Package validator checks parsed documents against per-format structural
// rules. Validation never re-parses text and never mutates the document.
package validator

import (
	"fmt"
	"strings"

	"github.com/alevsk/shapeshift/internal/codec"
	"github.com/alevsk/shapeshift/internal/document"
	"github.com/alevsk/shapeshift/internal/logger"
	"github.com/alevsk/shapeshift/internal/types"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// Version is reported in every result's metadata
	Version = "1.0"
	// MaxJSONDepth is the deepest nesting a JSON document may have
	MaxJSONDepth = 100
)

type rule func(doc any, res *types.ValidationResult)

// Validator applies the rule set of a format to a document
type Validator struct {
	rules map[codec.Format]rule
}

// New returns a validator covering every supported format
func New() *Validator {
	return &Validator{
		rules: map[codec.Format]rule{
			codec.FormatJSON:    validateJSON,
			codec.FormatYAML:    validatePermissive,
			codec.FormatTOML:    validateTOML,
			codec.FormatXML:     validatePermissive,
			codec.FormatOpenAPI: validateOpenAPI,
		},
	}
}

// Validate checks doc against the rules of format f
func (v *Validator) Validate(doc any, f codec.Format) *types.ValidationResult {
	res := types.NewValidationResult()
	res.Metadata["format"] = string(f)
	res.Metadata["validation_version"] = Version

	check, ok := v.rules[f]
	if !ok {
		res.AddError("%v: %s", codec.ErrUnknownFormat, f)
		return res
	}
	check(doc, res)

	logger.Debug().
		Str("format", string(f)).
		Int("errors", len(res.Errors)).
		Int("warnings", len(res.Warnings)).
		Msg("validated document")
	return res
}

// YAML and XML grammar is already enforced by their parsers
func validatePermissive(any, *types.ValidationResult) {}

func validateJSON(doc any, res *types.ValidationResult) {
	tooDeep := false
	document.Walk(doc, -1, func(n document.Node) bool {
		if n.Depth > MaxJSONDepth {
			tooDeep = true
			return false
		}
		return true
	})
	if tooDeep {
		res.AddError("nesting too deep (max %d)", MaxJSONDepth)
	}
}

func validateTOML(doc any, res *types.ValidationResult) {
	if document.KindOf(doc) != document.KindMap {
		res.AddError("toml root must be a table, got %s", document.KindOf(doc))
	}
}

func validateOpenAPI(doc any, res *types.ValidationResult) {
	m, ok := doc.(*document.Map)
	if !ok {
		res.AddError("openapi document must be a mapping, got %s", document.KindOf(doc))
		return
	}

	version, hasVersion := m.Get("openapi")
	if !hasVersion {
		res.AddError("missing required field 'openapi'")
	}
	if _, ok := m.Get("info"); !ok {
		res.AddError("missing required field 'info'")
	}
	if _, ok := m.Get("paths"); !ok {
		res.AddWarning("no 'paths' defined in openapi document")
	}

	if hasVersion {
		s, isString := version.(string)
		switch {
		case !isString:
			res.AddError("openapi version must be a string, got %s", describe(version))
		case !strings.HasPrefix(s, "3."):
			res.AddError("unsupported openapi version: %s", s)
		}
	}

	if res.Valid {
		describeOpenAPI(m, res)
	}
}

// describeOpenAPI loads the document as an OpenAPI 3 model and records a
// few facts about it. Documents that do not load add nothing.
func describeOpenAPI(m *document.Map, res *types.ValidationResult) {
	data, err := (&codec.JSON{}).Serialize(m, &codec.Options{Pretty: false})
	if err != nil {
		return
	}

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData([]byte(data))
	if err != nil {
		logger.Debug().Err(err).Msg("openapi model not loaded, skipping metadata")
		return
	}

	if spec.Info != nil {
		res.Metadata["title"] = spec.Info.Title
		res.Metadata["api_version"] = spec.Info.Version
	}
	res.Metadata["path_count"] = spec.Paths.Len()
}

func describe(v any) string {
	if s, ok := document.ScalarText(v); ok && document.KindOf(v) == document.KindScalar {
		return fmt.Sprintf("%s %q", document.KindOf(v), s)
	}
	return document.KindOf(v).String()
}
