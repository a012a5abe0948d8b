package schemadoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"aqwari.net/xml/xmltree"
)

const (
	// XSDNamespace is the XML Schema namespace URI.
	XSDNamespace = "http://www.w3.org/2001/XMLSchema"
	// XSDPrefix is the prefix snapshots use for XML Schema elements.
	XSDPrefix = "xs"

	xmlNamespace = "http://www.w3.org/XML/1998/namespace"
)

// Attr is an attribute with its qualified name.
type Attr struct {
	Name  string
	Value string
}

// Node is a read-only view of one element in a parsed schema document.
// Detaching children returns a new view; the parsed tree is never modified.
type Node struct {
	el       *xmltree.Element
	doc      string
	path     string
	text     string
	attrs    []Attr
	children []Node
}

// Parse parses a schema document into its root node view.
func Parse(data []byte, systemID string) (Node, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return Node{}, fmt.Errorf("parse %s: %w", systemID, err)
	}
	return build(root, systemID, "")
}

func build(el *xmltree.Element, doc, parentPath string) (Node, error) {
	text, err := directText(el.Content)
	if err != nil {
		return Node{}, fmt.Errorf("parse %s: %s: %w", doc, parentPath, err)
	}
	n := Node{el: el, doc: doc, text: text}
	n.path = parentPath + "/" + n.QName()
	n.attrs = qualifiedAttrs(el)

	counts := make(map[xml.Name]int, len(el.Children))
	for i := range el.Children {
		counts[el.Children[i].Name]++
	}
	seen := make(map[xml.Name]int, len(counts))
	n.children = make([]Node, 0, len(el.Children))
	for i := range el.Children {
		child := &el.Children[i]
		seen[child.Name]++
		built, err := build(child, doc, n.path)
		if err != nil {
			return Node{}, err
		}
		if counts[child.Name] > 1 {
			built.reindex(n.path, seen[child.Name])
		}
		n.children = append(n.children, built)
	}
	return n, nil
}

// reindex rewrites the position of n and its subtree with a sibling index.
func (n *Node) reindex(parentPath string, index int) {
	old := n.path
	n.path = parentPath + "/" + n.QName() + "[" + strconv.Itoa(index) + "]"
	n.rebase(old, n.path)
}

func (n *Node) rebase(oldPrefix, newPrefix string) {
	for i := range n.children {
		c := &n.children[i]
		c.path = newPrefix + strings.TrimPrefix(c.path, oldPrefix)
		c.rebase(oldPrefix, newPrefix)
	}
}

func qualifiedAttrs(el *xmltree.Element) []Attr {
	attrs := make([]Attr, 0, len(el.StartElement.Attr))
	for _, a := range el.StartElement.Attr {
		switch {
		case a.Name.Space == "xmlns", a.Name.Space == "" && a.Name.Local == "xmlns":
			continue
		case a.Name.Space == "":
			attrs = append(attrs, Attr{Name: a.Name.Local, Value: a.Value})
		case a.Name.Space == xmlNamespace:
			attrs = append(attrs, Attr{Name: "xml:" + a.Name.Local, Value: a.Value})
		default:
			attrs = append(attrs, Attr{Name: el.Prefix(a.Name), Value: a.Value})
		}
	}
	return attrs
}

// directText returns the character data directly under an element, with
// entities and CDATA sections decoded.
func directText(content []byte) (string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return string(content), nil
	}
	d := xml.NewDecoder(bytes.NewReader(content))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 {
				b.Write(t)
			}
		}
	}
}

// Valid reports whether n refers to a parsed element.
func (n Node) Valid() bool {
	return n.el != nil
}

// Document returns the system ID of the document n belongs to.
func (n Node) Document() string {
	return n.doc
}

// Path returns the XPath-like position of n inside its document.
func (n Node) Path() string {
	return n.path
}

// Position returns the document system ID and path of n.
func (n Node) Position() string {
	if n.doc == "" {
		return n.path
	}
	return n.doc + ":" + n.path
}

// Local returns the local tag name.
func (n Node) Local() string {
	if n.el == nil {
		return ""
	}
	return n.el.Name.Local
}

// Namespace returns the tag namespace URI.
func (n Node) Namespace() string {
	if n.el == nil {
		return ""
	}
	return n.el.Name.Space
}

// IsXSD reports whether n is an XML Schema element.
func (n Node) IsXSD() bool {
	return n.Namespace() == XSDNamespace
}

// Is reports whether n is the XML Schema element with the given local name.
func (n Node) Is(local string) bool {
	return n.IsXSD() && n.Local() == local
}

// QName returns the qualified tag name. XML Schema elements always use the
// xs prefix so that snapshots do not depend on the document's prefix choice.
func (n Node) QName() string {
	if n.el == nil {
		return ""
	}
	if n.IsXSD() {
		return XSDPrefix + ":" + n.el.Name.Local
	}
	return n.el.Prefix(n.el.Name)
}

// Attrs returns the attributes of n in document order, namespace
// declarations excluded.
func (n Node) Attrs() []Attr {
	return n.attrs
}

// Attr returns the value of the attribute with the given qualified name.
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value, or "" when absent.
func (n Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// Has reports whether the attribute is present.
func (n Node) Has(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// Children returns the element children of n.
func (n Node) Children() []Node {
	return n.children
}

// HasChildren reports whether n has element children.
func (n Node) HasChildren() bool {
	return len(n.children) > 0
}

// Text returns the character data directly under n.
func (n Node) Text() string {
	return n.text
}

// HasText reports whether n carries non-whitespace character data.
func (n Node) HasText() bool {
	return strings.TrimSpace(n.text) != ""
}

// Resolve expands a prefixed name using the namespace bindings in scope at n.
func (n Node) Resolve(qname string) (space, local string, ok bool) {
	if n.el == nil {
		return "", "", false
	}
	name, ok := n.el.ResolveNS(qname)
	if !ok {
		return "", "", false
	}
	return name.Space, name.Local, true
}

// Without returns a copy of n whose XML Schema children with the given local
// names are detached.
func (n Node) Without(locals ...string) Node {
	kept := make([]Node, 0, len(n.children))
	for _, c := range n.children {
		if c.IsXSD() && slices.Contains(locals, c.Local()) {
			continue
		}
		kept = append(kept, c)
	}
	n.children = kept
	return n
}

// Named returns the XML Schema children of n with one of the given local names.
func (n Node) Named(locals ...string) []Node {
	var out []Node
	for _, c := range n.children {
		if c.IsXSD() && slices.Contains(locals, c.Local()) {
			out = append(out, c)
		}
	}
	return out
}
