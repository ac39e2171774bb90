package codec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alevsk/shapeshift/internal/document"
	"github.com/antchfx/xmlquery"
)

const (
	// TextKey holds element text when the element also has attributes or children
	TextKey = "text"
	// AttrPrefix marks mapping keys that serialize as attributes
	AttrPrefix = "@"
	// RootTag wraps documents that are not a single-key mapping
	RootTag = "root"
	// ItemTag names the elements of a sequence nested directly in a sequence
	ItemTag = "item"
)

var xmlNamePattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}._-]*(:[\p{L}_][\p{L}\p{N}._-]*)?$`)

// XML implements the XML codec. Parsing yields a one-key mapping named
// after the root element; attributes and child elements share the
// element's mapping.
type XML struct{}

// Format returns FormatXML
func (c *XML) Format() Format {
	return FormatXML
}

// Parse decodes an XML document with exactly one root element
func (c *XML) Parse(text string) (any, error) {
	if err := checkBlank(FormatXML, text); err != nil {
		return nil, err
	}

	doc, err := xmlquery.Parse(strings.NewReader(strings.TrimSpace(text)))
	if err != nil {
		return nil, parseError(FormatXML, err)
	}

	root, err := rootElement(doc)
	if err != nil {
		return nil, parseError(FormatXML, err)
	}

	value, err := elementValue(root)
	if err != nil {
		return nil, err
	}
	return document.MapOf(qualifiedName(root), value), nil
}

// rootElement finds the single top-level element. Stray top-level text
// ends up as a sibling of the document node, elements as its children.
func rootElement(doc *xmlquery.Node) (*xmlquery.Node, error) {
	var root *xmlquery.Node
	check := func(n *xmlquery.Node) error {
		switch n.Type {
		case xmlquery.ElementNode:
			if root != nil {
				return fmt.Errorf("multiple root elements <%s> and <%s>", qualifiedName(root), qualifiedName(n))
			}
			root = n
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) != "" {
				return errors.New("text outside of the root element")
			}
		}
		return nil
	}

	for top := doc; top != nil; top = top.NextSibling {
		if top != doc {
			if err := check(top); err != nil {
				return nil, err
			}
		}
		for n := top.FirstChild; n != nil; n = n.NextSibling {
			if err := check(n); err != nil {
				return nil, err
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix == "" {
		return n.Data
	}
	return n.Prefix + ":" + n.Data
}

func attrName(a xmlquery.Attr) string {
	if a.Name.Space == "" {
		return a.Name.Local
	}
	return a.Name.Space + ":" + a.Name.Local
}

func elementValue(el *xmlquery.Node) (any, error) {
	m := document.NewMap()
	attrs := make(map[string]bool, len(el.Attr))
	for _, a := range el.Attr {
		name := attrName(a)
		m.Set(name, a.Value)
		attrs[name] = true
	}

	var text strings.Builder
	var children []*xmlquery.Node
	for n := el.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(n.Data)
		case xmlquery.ElementNode:
			children = append(children, n)
		}
	}
	content := strings.TrimSpace(text.String())

	if len(attrs) == 0 && len(children) == 0 {
		if content == "" {
			return nil, nil
		}
		return content, nil
	}

	if content != "" {
		if attrs[TextKey] {
			return nil, structureError(FormatXML, "attribute %q of <%s> collides with its text content", TextKey, qualifiedName(el))
		}
		m.Set(TextKey, content)
	}

	for _, child := range children {
		name := qualifiedName(child)
		if attrs[name] {
			return nil, structureError(FormatXML, "attribute %q of <%s> collides with a child element", name, qualifiedName(el))
		}
		if name == TextKey && content != "" {
			return nil, structureError(FormatXML, "child <%s> of <%s> collides with its text content", TextKey, qualifiedName(el))
		}

		value, err := elementValue(child)
		if err != nil {
			return nil, err
		}

		existing, seen := m.Get(name)
		if !seen {
			m.Set(name, value)
			continue
		}
		// element values are never sequences, so a sequence here is a
		// previous collapse of repeated tags
		if seq, ok := existing.([]any); ok {
			m.Set(name, append(seq, value))
		} else {
			m.Set(name, []any{existing, value})
		}
	}
	return m, nil
}

// Serialize encodes the document as XML. Keys starting with "@" and
// namespace declarations become attributes, the "text" key becomes text
// content and sequences become repeated elements.
func (c *XML) Serialize(doc any, opts *Options) (string, error) {
	opts = resolveOptions(opts)

	name, value := RootTag, doc
	if m, ok := doc.(*document.Map); ok && m.Len() == 1 {
		pair := m.Oldest()
		if !isXMLAttrKey(pair.Key) && pair.Key != TextKey {
			if _, isSeq := pair.Value.([]any); !isSeq {
				name, value = pair.Key, pair.Value
			}
		}
	}

	root, err := buildElement(name, value)
	if err != nil {
		return "", err
	}

	out := []xmlquery.OutputOption{xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport()}
	if opts.Pretty {
		out = append(out, xmlquery.WithIndentation(opts.indent()))
	}
	return strings.TrimPrefix(root.OutputXMLWithOptions(out...), "\n"), nil
}

func isXMLAttrKey(key string) bool {
	return strings.HasPrefix(key, AttrPrefix) || key == "xmlns" || strings.HasPrefix(key, "xmlns:")
}

func newXMLElement(name string) (*xmlquery.Node, error) {
	if !xmlNamePattern.MatchString(name) {
		return nil, structureError(FormatXML, "%q is not a valid element name", name)
	}
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		n.Prefix, n.Data = prefix, local
	}
	return n, nil
}

func buildElement(name string, value any) (*xmlquery.Node, error) {
	el, err := newXMLElement(name)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *document.Map:
		if text, ok := v.Get(TextKey); ok {
			s, ok := document.ScalarText(text)
			if !ok {
				return nil, structureError(FormatXML, "text of <%s> must be a scalar", name)
			}
			addXMLText(el, s)
		}
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			switch key := pair.Key; {
			case key == TextKey:
				continue
			case isXMLAttrKey(key):
				if err := addXMLAttr(el, strings.TrimPrefix(key, AttrPrefix), pair.Value); err != nil {
					return nil, err
				}
			default:
				if err := addXMLChildren(el, key, pair.Value); err != nil {
					return nil, err
				}
			}
		}
	case []any:
		for _, item := range v {
			child, err := buildElement(ItemTag, item)
			if err != nil {
				return nil, err
			}
			xmlquery.AddChild(el, child)
		}
	default:
		s, _ := document.ScalarText(v)
		addXMLText(el, s)
	}
	return el, nil
}

// addXMLChildren adds one element per sequence item, or a single element
func addXMLChildren(el *xmlquery.Node, name string, value any) error {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	for _, item := range items {
		child, err := buildElement(name, item)
		if err != nil {
			return err
		}
		xmlquery.AddChild(el, child)
	}
	return nil
}

func addXMLAttr(el *xmlquery.Node, name string, value any) error {
	if !xmlNamePattern.MatchString(name) {
		return structureError(FormatXML, "%q is not a valid attribute name", name)
	}
	s, ok := document.ScalarText(value)
	if !ok {
		return structureError(FormatXML, "attribute %q of <%s> must be a scalar", name, qualifiedName(el))
	}
	if !xmlquery.AddAttr(el, name, s) {
		return structureError(FormatXML, "duplicate attribute %q on <%s>", name, qualifiedName(el))
	}
	return nil
}

func addXMLText(el *xmlquery.Node, s string) {
	if s == "" {
		return
	}
	xmlquery.AddChild(el, &xmlquery.Node{Type: xmlquery.TextNode, Data: s})
}
