package codec

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/alevsk/shapeshift/internal/document"
	"github.com/pelletier/go-toml/v2"
)

// TOML implements the TOML codec. go-toml sorts keys within a table, so
// key order does not survive a TOML round trip.
type TOML struct{}

// Format returns FormatTOML
func (c *TOML) Format() Format {
	return FormatTOML
}

// Parse decodes a TOML document into a mapping
func (c *TOML) Parse(text string) (any, error) {
	if err := checkBlank(FormatTOML, text); err != nil {
		return nil, err
	}

	var table map[string]any
	if err := toml.Unmarshal([]byte(text), &table); err != nil {
		return nil, parseError(FormatTOML, err)
	}
	if table == nil {
		table = map[string]any{}
	}
	return document.FromPlain(table), nil
}

// Serialize encodes a mapping as TOML. TOML has no null, no integers
// beyond 64 bits and no top-level arrays or scalars. These are reported
// as ErrUnsupportedStructure.
func (c *TOML) Serialize(doc any, opts *Options) (string, error) {
	opts = resolveOptions(opts)

	m, ok := doc.(*document.Map)
	if !ok {
		return "", structureError(FormatTOML, "root must be a mapping, got %s", document.KindOf(doc))
	}

	var unsupported error
	document.Walk(m, -1, func(n document.Node) bool {
		switch n.Value.(type) {
		case nil:
			unsupported = structureError(FormatTOML, "null value at %q cannot be represented", n.Path)
		case *big.Int:
			unsupported = structureError(FormatTOML, "integer at %q exceeds 64 bits", n.Path)
		default:
			return true
		}
		return false
	})
	if unsupported != nil {
		return "", unsupported
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if opts.Pretty && opts.Indent > 0 {
		enc.SetIndentTables(true)
		enc.SetIndentSymbol(opts.indent())
	}
	if err := enc.Encode(document.Plain(m)); err != nil {
		return "", structureError(FormatTOML, "%v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
