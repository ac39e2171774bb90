package codec

import (
	"errors"
	"fmt"
)

// OpenAPI handles OpenAPI descriptions, which are written either as JSON
// or as YAML. Structural checks live in the validator, not here.
type OpenAPI struct {
	json JSON
	yaml YAML
}

// Format returns FormatOpenAPI
func (c *OpenAPI) Format() Format {
	return FormatOpenAPI
}

// Parse tries JSON first, then YAML
func (c *OpenAPI) Parse(text string) (any, error) {
	if err := checkBlank(FormatOpenAPI, text); err != nil {
		return nil, err
	}

	doc, jsonErr := c.json.Parse(text)
	if jsonErr == nil {
		return doc, nil
	}
	doc, yamlErr := c.yaml.Parse(text)
	if yamlErr == nil {
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %s: must be valid JSON or YAML: %w", ErrParse, FormatOpenAPI, errors.Join(jsonErr, yamlErr))
}

// Serialize writes block YAML when pretty and compact JSON otherwise
func (c *OpenAPI) Serialize(doc any, opts *Options) (string, error) {
	opts = resolveOptions(opts)
	if opts.Pretty {
		return c.yaml.Serialize(doc, opts)
	}
	return c.json.Serialize(doc, &Options{Pretty: false})
}
