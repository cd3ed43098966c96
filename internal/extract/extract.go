// Package extract turns a message subtree into an ordered content.Part
// sequence and pulls plain text out of collapsible reasoning asides.
package extract

import (
	"strings"

	"github.com/dgallion1/chatexport/internal/content"
	"github.com/dgallion1/chatexport/internal/dom"
	"github.com/dgallion1/chatexport/internal/mathexpr"
)

// Content walks root in document order and returns the parts it produces.
// Nothing inside exclude (typically the reasoning aside) is emitted; exclude
// may be nil.
func Content(root, exclude dom.Node) []content.Part {
	if root == nil {
		return nil
	}
	if exclude != nil && dom.Contains(exclude, root) {
		return nil
	}
	w := &walker{exclude: exclude}
	w.node(root, 0)
	return w.parts
}

// Non-content subtrees.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"button": true, "svg": true, "head": true, "title": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "figure": true, "aside": true, "details": true,
}

type walker struct {
	parts   []content.Part
	exclude dom.Node
}

func (w *walker) node(n dom.Node, depth int) {
	if n.Kind() == dom.TextNode {
		w.text(n.Text())
		return
	}
	if w.exclude != nil && n == w.exclude {
		return
	}
	tag := n.Tag()
	if skipTags[tag] {
		return
	}
	if mathexpr.IsMath(n) {
		if e, ok := mathexpr.Extract(n); ok {
			w.add(content.Math{Content: e.Source, Display: e.Display})
		}
		return
	}
	if mathexpr.IsArtifact(n) {
		return
	}

	switch tag {
	case "strong", "b":
		w.emphasis(n, true, depth)
	case "em", "i":
		w.emphasis(n, false, depth)
	case "br":
		w.lineBreak(depth)
	case "ul", "ol":
		w.list(n, tag == "ol", depth)
	case "pre":
		w.codeBlock(n)
	case "code":
		if dom.Is(n.Parent(), "pre") {
			w.codeBlock(n.Parent())
			return
		}
		if s := n.Text(); strings.TrimSpace(s) != "" {
			w.add(content.InlineCode{Content: s})
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if s := dom.CollapseSpace(n.Text()); s != "" {
			w.add(content.Heading{Level: int(tag[1] - '0'), Content: s})
		}
	case "a":
		w.link(n)
	case "blockquote":
		if s := quoteText(n); s != "" {
			w.add(content.Blockquote{Content: s})
		}
	case "table":
		if t, ok := table(n); ok {
			w.add(t)
		}
	case "hr":
		w.paragraphBreak(depth)
	default:
		if blockTags[tag] {
			w.block(n, depth)
			return
		}
		w.children(n, depth)
	}
}

func (w *walker) children(n dom.Node, depth int) {
	for _, c := range n.Children() {
		if c.Kind() == dom.ElementNode && isCodeLabel(c) {
			continue
		}
		w.node(c, depth)
	}
}

// Emphasis is flattened to a single part where it is first met. The one
// exception is emphasis wrapping math, which is split so the expression keeps
// its notation.
func (w *walker) emphasis(n dom.Node, bold bool, depth int) {
	if dom.Find(n, mathexpr.IsMath) == nil {
		if s := dom.CollapseSpace(n.Text()); s != "" {
			w.add(emphasized(s, bold))
		}
		return
	}
	for _, c := range n.Children() {
		switch {
		case c.Kind() == dom.TextNode:
			if s := dom.CollapseSpace(c.Text()); s != "" {
				w.add(emphasized(s, bold))
			}
		case mathexpr.IsMath(c):
			e, ok := mathexpr.Extract(c)
			if !ok {
				continue
			}
			if bold {
				w.add(content.BoldMath{Content: e.Source})
			} else {
				w.add(content.Math{Content: e.Source, Display: e.Display})
			}
		default:
			w.node(c, depth)
		}
	}
}

func emphasized(s string, bold bool) content.Part {
	if bold {
		return content.Bold{Content: s}
	}
	return content.Italic{Content: s}
}

func (w *walker) block(n dom.Node, depth int) {
	if depth > 0 {
		// Inside a list item blocks become lines so the item stays tight.
		if !w.lastIs(isListItem) {
			w.lineBreak(depth)
		}
		w.children(n, depth)
		return
	}
	w.paragraphBreak(depth)
	w.children(n, depth)
	w.paragraphBreak(depth)
}

func (w *walker) paragraphBreak(depth int) {
	if depth > 0 {
		w.lineBreak(depth)
		return
	}
	if len(w.parts) == 0 || w.lastIs(isParagraphBreak) {
		return
	}
	w.add(content.ParagraphBreak{})
}

func (w *walker) list(n dom.Node, ordered bool, depth int) {
	index := 0
	for _, li := range n.Children() {
		if !dom.Is(li, "li") || (w.exclude != nil && li == w.exclude) {
			continue
		}
		index++
		w.add(content.ListItem{Ordered: ordered, Depth: depth, Index: index})
		w.children(li, depth+1)
		w.lineBreak(depth)
	}
	if depth == 0 && index > 0 {
		w.add(content.ParagraphBreak{})
	}
}

// lineBreak ends the current line. Repeats at the same depth collapse.
func (w *walker) lineBreak(depth int) {
	if last := len(w.parts) - 1; last >= 0 {
		if lb, ok := w.parts[last].(content.LineBreak); ok && lb.Depth == depth {
			return
		}
	}
	w.add(content.LineBreak{Depth: depth})
}

func (w *walker) codeBlock(pre dom.Node) {
	body := pre.Text()
	lang := ""
	if code := dom.Find(pre, func(d dom.Node) bool { return dom.Is(d, "code") }); code != nil {
		body = code.Text()
		lang = classLanguage(code)
	}
	if lang == "" {
		lang = classLanguage(pre)
	}
	if lang == "" {
		lang = labelLanguage(pre)
	}
	w.add(content.CodeBlock{Content: body, Language: lang})
}

func (w *walker) link(n dom.Node) {
	s := dom.CollapseSpace(n.Text())
	if s == "" {
		return
	}
	href := strings.TrimSpace(dom.AttrOr(n, "href"))
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		w.text(s)
		return
	}
	w.add(content.Link{Content: s, Href: href})
}

// text appends prose, folding it into a preceding Text part with a single
// space so words from separate nodes never fuse.
func (w *walker) text(raw string) {
	s := dom.CollapseSpace(raw)
	if s == "" {
		return
	}
	if last := len(w.parts) - 1; last >= 0 {
		if prev, ok := w.parts[last].(content.Text); ok {
			w.parts[last] = content.Text{Content: joinText(prev.Content, s)}
			return
		}
	}
	w.add(content.Text{Content: s})
}

func joinText(a, b string) string {
	if strings.ContainsRune(",.;:!?)]}", rune(b[0])) || strings.ContainsRune("([{", rune(a[len(a)-1])) {
		return a + b
	}
	return a + " " + b
}

func (w *walker) add(p content.Part) {
	w.parts = append(w.parts, p)
}

func (w *walker) lastIs(preds ...func(content.Part) bool) bool {
	if len(w.parts) == 0 {
		return false
	}
	last := w.parts[len(w.parts)-1]
	for _, p := range preds {
		if p(last) {
			return true
		}
	}
	return false
}

func isListItem(p content.Part) bool {
	_, ok := p.(content.ListItem)
	return ok
}

func isParagraphBreak(p content.Part) bool {
	_, ok := p.(content.ParagraphBreak)
	return ok
}
