package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML page and resolves it into a Node tree.
func Parse(r io.Reader) (Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromHTML(doc), nil
}

// ParseString is Parse for an in-memory page.
func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

// FromHTML converts a parsed x/net/html tree. Comments and doctypes are
// dropped; the document node becomes an element tagged "#document".
func FromHTML(h *html.Node) Node {
	return convert(h)
}

func convert(h *html.Node) *node {
	var n *node
	switch h.Type {
	case html.TextNode:
		return &node{kind: TextNode, data: h.Data}
	case html.ElementNode:
		n = &node{kind: ElementNode, tag: strings.ToLower(h.Data)}
		for _, a := range h.Attr {
			n.attrs = append(n.attrs, Attribute{Key: a.Key, Val: a.Val})
		}
	case html.DocumentNode:
		n = &node{kind: ElementNode, tag: "#document"}
	default:
		return nil
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if cn := convert(c); cn != nil {
			cn.parent = n
			n.children = append(n.children, cn)
		}
	}
	return n
}

// Render writes n back out as markup through html.Render, which restores
// the leading newline the parser strips inside pre and textarea.
func Render(w io.Writer, n Node) error {
	return html.Render(w, toHTML(n))
}

// toHTML rebuilds an x/net/html tree for n. Children of void elements are
// dropped since html.Render refuses them.
func toHTML(n Node) *html.Node {
	if n.Kind() == TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Text()}
	}
	tag := n.Tag()
	if tag == "#document" {
		h := &html.Node{Type: html.DocumentNode}
		appendChildren(h, n)
		return h
	}
	h := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, a := range n.Attrs() {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	if !voidElements[tag] {
		appendChildren(h, n)
	}
	return h
}

func appendChildren(h *html.Node, n Node) {
	for _, c := range n.Children() {
		h.AppendChild(toHTML(c))
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
