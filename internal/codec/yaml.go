package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/alevsk/shapeshift/internal/document"
	"gopkg.in/yaml.v3"
)

// maxAliasExpansions bounds the number of alias dereferences in a single
// document, which keeps "billion laughs" inputs from exploding.
const maxAliasExpansions = 10000

// YAML implements the YAML codec on top of the yaml.v3 node tree
type YAML struct{}

// Format returns FormatYAML
func (c *YAML) Format() Format {
	return FormatYAML
}

// Parse decodes a single YAML document. Custom tags are treated as plain
// strings and never instantiate Go types.
func (c *YAML) Parse(text string) (any, error) {
	if err := checkBlank(FormatYAML, text); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(strings.NewReader(text))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, parseError(FormatYAML, errors.New("no document found"))
		}
		return nil, parseError(FormatYAML, err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, parseError(FormatYAML, errors.New("multiple documents are not supported"))
	} else if !errors.Is(err, io.EOF) {
		return nil, parseError(FormatYAML, err)
	}

	conv := &yamlConverter{active: make(map[*yaml.Node]bool)}
	v, err := conv.convert(&root)
	if err != nil {
		return nil, parseError(FormatYAML, err)
	}
	return v, nil
}

type yamlConverter struct {
	aliases int
	active  map[*yaml.Node]bool
}

func (c *yamlConverter) convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		return c.alias(n)
	case yaml.ScalarNode:
		return yamlScalar(n)
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.MappingNode:
		return c.mapping(n)
	default:
		return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
	}
}

func (c *yamlConverter) alias(n *yaml.Node) (any, error) {
	c.aliases++
	if c.aliases > maxAliasExpansions {
		return nil, fmt.Errorf("line %d: too many alias expansions (max %d)", n.Line, maxAliasExpansions)
	}
	if n.Alias == nil {
		return nil, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
	}
	if c.active[n.Alias] {
		return nil, fmt.Errorf("line %d: anchor %q contains itself", n.Line, n.Value)
	}
	c.active[n.Alias] = true
	defer delete(c.active, n.Alias)
	return c.convert(n.Alias)
}

func (c *yamlConverter) mapping(n *yaml.Node) (any, error) {
	m := document.NewMap()
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}

		key, err := yamlKey(k)
		if err != nil {
			return nil, err
		}
		if _, dup := m.Get(key); dup {
			return nil, fmt.Errorf("line %d: duplicate key %q", k.Line, key)
		}
		val, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}

	// explicit keys win over merged ones, earlier merge sources over later ones
	for _, src := range merges {
		merged, err := c.convert(src)
		if err != nil {
			return nil, err
		}
		sources := []any{merged}
		if seq, ok := merged.([]any); ok {
			sources = seq
		}
		for _, s := range sources {
			sm, ok := s.(*document.Map)
			if !ok {
				return nil, fmt.Errorf("line %d: merge value must be a mapping or a list of mappings", src.Line)
			}
			for pair := sm.Oldest(); pair != nil; pair = pair.Next() {
				if _, exists := m.Get(pair.Key); !exists {
					m.Set(pair.Key, pair.Value)
				}
			}
		}
	}
	return m, nil
}

func yamlKey(k *yaml.Node) (string, error) {
	if k.Kind == yaml.AliasNode && k.Alias != nil {
		k = k.Alias
	}
	if k.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
	}
	return k.Value, nil
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		// out of int64 range
		if b, ok := new(big.Int).SetString(n.Value, 0); ok {
			return b, nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return f, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	default:
		// strings, timestamps, binary and custom tags stay textual
		return n.Value, nil
	}
}

// Serialize encodes the document as YAML: block style when pretty, flow
// style otherwise. Key order is preserved.
func (c *YAML) Serialize(doc any, opts *Options) (string, error) {
	opts = resolveOptions(opts)

	root, err := toYAMLNode(doc, "")
	if err != nil {
		return "", err
	}
	if !opts.Pretty && (root.Kind == yaml.MappingNode || root.Kind == yaml.SequenceNode) {
		root.Style = yaml.FlowStyle
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if opts.Indent > 0 {
		enc.SetIndent(opts.Indent)
	}
	if err := enc.Encode(root); err != nil {
		return "", structureError(FormatYAML, "%v", err)
	}
	if err := enc.Close(); err != nil {
		return "", structureError(FormatYAML, "%v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func toYAMLNode(v any, path string) (*yaml.Node, error) {
	switch val := v.(type) {
	case *document.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			key := &yaml.Node{}
			key.SetString(pair.Key)
			child, err := toYAMLNode(pair.Value, document.JoinKey(path, pair.Key))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, key, child)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range val {
			child, err := toYAMLNode(item, document.JoinIndex(path, i))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		n := &yaml.Node{}
		n.SetString(val)
		return n, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatYAMLFloat(val)}, nil
	case *big.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: val.String()}, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(val); err != nil {
			return nil, structureError(FormatYAML, "value at %q: %v", path, err)
		}
		return n, nil
	}
}

// formatYAMLFloat keeps integral floats distinguishable from integers
func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
