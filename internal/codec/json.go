package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/alevsk/shapeshift/internal/document"
)

// JSON implements the JSON codec. Parsing keeps object key order.
type JSON struct{}

// Format returns FormatJSON
func (c *JSON) Format() Format {
	return FormatJSON
}

// Parse decodes a single JSON value. Trailing data after the value is an error.
func (c *JSON) Parse(text string) (any, error) {
	if err := checkBlank(FormatJSON, text); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, parseError(FormatJSON, err)
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, parseError(FormatJSON, err)
		}
		return nil, parseError(FormatJSON, fmt.Errorf("unexpected %v after top-level value", tok))
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := document.NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			seq := []any{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				seq = append(seq, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return seq, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case json.Number:
		return jsonNumber(t)
	default:
		// string, bool or nil
		return t, nil
	}
}

// jsonNumber keeps integers as int64, or *big.Int when they overflow
func jsonNumber(n json.Number) (any, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return f, nil
}

// Serialize encodes the document as JSON. HTML characters are not escaped.
func (c *JSON) Serialize(doc any, opts *Options) (string, error) {
	opts = resolveOptions(opts)

	var compact bytes.Buffer
	if err := writeJSON(&compact, doc, ""); err != nil {
		return "", err
	}
	if !opts.Pretty {
		return compact.String(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", opts.indent()); err != nil {
		return "", structureError(FormatJSON, "%v", err)
	}
	return out.String(), nil
}

func writeJSON(buf *bytes.Buffer, v any, path string) error {
	switch val := v.(type) {
	case *document.Map:
		buf.WriteByte('{')
		first := true
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONScalar(buf, pair.Key, path); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, pair.Value, document.JoinKey(path, pair.Key)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item, document.JoinIndex(path, i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case *big.Int:
		buf.WriteString(val.String())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return structureError(FormatJSON, "%v at %q has no JSON representation", val, path)
		}
		buf.WriteString(formatJSONFloat(val))
	default:
		return writeJSONScalar(buf, val, path)
	}
	return nil
}

// formatJSONFloat keeps a fractional marker on integral values so they
// parse back as floats.
func formatJSONFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeJSONScalar(buf *bytes.Buffer, v any, path string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return structureError(FormatJSON, "value at %q: %v", path, err)
	}
	// Encode always terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}
