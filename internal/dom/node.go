// Package dom is the read-only document model the exporter works against.
//
// Trees are resolved up front, either from parsed HTML (Parse, FromHTML) or
// built by hand (Element, Text), so extraction never depends on a live
// document engine.
package dom

import (
	"sort"
	"strings"
)

// Kind distinguishes element nodes from text nodes.
type Kind int

const (
	ElementNode Kind = iota
	TextNode
)

// Node exposes the capabilities the extractor needs from a tree node.
type Node interface {
	Kind() Kind
	// Tag is the lower-case element name, or "" for text nodes.
	Tag() string
	Attr(key string) (string, bool)
	Attrs() []Attribute
	Children() []Node
	Parent() Node
	// Text is the flattened text of the subtree, like DOM textContent.
	Text() string
}

// Attribute is a single key/value pair on an element.
type Attribute struct {
	Key string
	Val string
}

// Attrs is a convenience form for building synthetic elements.
type Attrs map[string]string

type node struct {
	kind     Kind
	tag      string
	data     string
	attrs    []Attribute
	children []Node
	parent   *node

	text     string
	textDone bool
}

func (n *node) Kind() Kind  { return n.kind }
func (n *node) Tag() string { return n.tag }

func (n *node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (n *node) Attrs() []Attribute { return n.attrs }
func (n *node) Children() []Node   { return n.children }

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Text() string {
	if n.kind == TextNode {
		return n.data
	}
	if !n.textDone {
		var b strings.Builder
		writeText(&b, n, nil)
		n.text = b.String()
		n.textDone = true
	}
	return n.text
}

// Element builds a synthetic element. Children must come from this package.
func Element(tag string, attrs Attrs, children ...Node) Node {
	n := &node{kind: ElementNode, tag: strings.ToLower(tag)}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.attrs = append(n.attrs, Attribute{Key: k, Val: attrs[k]})
	}
	for _, c := range children {
		n.appendChild(c)
	}
	return n
}

// Text builds a synthetic text node.
func Text(s string) Node {
	return &node{kind: TextNode, data: s}
}

func (n *node) appendChild(c Node) {
	cn, ok := c.(*node)
	if !ok {
		panic("dom: child was not built by package dom")
	}
	cn.parent = n
	n.children = append(n.children, cn)
}

func writeText(b *strings.Builder, n Node, skip func(Node) bool) {
	if n.Kind() == TextNode {
		b.WriteString(n.Text())
		return
	}
	for _, c := range n.Children() {
		if skip != nil && c.Kind() == ElementNode && skip(c) {
			continue
		}
		writeText(b, c, skip)
	}
}

// TextWithout flattens n's text, leaving out element subtrees matched by skip.
func TextWithout(n Node, skip func(Node) bool) string {
	var b strings.Builder
	writeText(&b, n, skip)
	return b.String()
}
