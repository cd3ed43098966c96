// Package mathexpr recovers source notation from rendered math (KaTeX,
// MathJax, bare MathML).
package mathexpr

import (
	"strings"

	"github.com/dgallion1/chatexport/internal/dom"
)

// Expr is a recovered expression.
type Expr struct {
	Source  string
	Display bool
}

var mathClasses = []string{"katex", "katex-display", "MathJax", "MathJax_Display", "math-display", "math-inline"}

// IsMath reports whether n is the root of a rendered expression.
func IsMath(n dom.Node) bool {
	if n == nil || n.Kind() != dom.ElementNode {
		return false
	}
	switch n.Tag() {
	case "math", "mjx-container":
		return true
	}
	for _, c := range mathClasses {
		if dom.HasClass(n, c) {
			return true
		}
	}
	return false
}

// IsArtifact reports whether n is a visual or assistive duplicate that math
// renderers emit next to the expression they already represent.
func IsArtifact(n dom.Node) bool {
	if n == nil || n.Kind() != dom.ElementNode {
		return false
	}
	if n.Tag() == "mjx-assistive-mml" {
		return true
	}
	for _, c := range []string{"katex-html", "katex-mathml", "MathJax_Preview", "MJX_Assistive_MathML"} {
		if dom.HasClass(n, c) {
			return true
		}
	}
	return false
}

// Extract returns n's notation. ok is false when nothing can be recovered.
func Extract(n dom.Node) (Expr, bool) {
	src := source(n)
	if src == "" {
		return Expr{}, false
	}
	return Expr{Source: src, Display: isDisplay(n)}, true
}

func source(n dom.Node) string {
	if a := findSelfOrDescendant(n, isTeXAnnotation); a != nil {
		if s := strings.TrimSpace(a.Text()); s != "" {
			return s
		}
	}
	if m := findSelfOrDescendant(n, func(d dom.Node) bool { return dom.Is(d, "math") }); m != nil {
		if alt := strings.TrimSpace(dom.AttrOr(m, "alttext")); alt != "" {
			return alt
		}
	}
	// No annotation: fall back to the text, minus the visual rendering.
	return dom.CollapseSpace(dom.TextWithout(n, isVisualDuplicate))
}

func isTeXAnnotation(n dom.Node) bool {
	if !dom.Is(n, "annotation") {
		return false
	}
	enc, ok := n.Attr("encoding")
	return !ok || strings.Contains(strings.ToLower(enc), "tex")
}

func isVisualDuplicate(n dom.Node) bool {
	if dom.HasClass(n, "katex-html") || dom.HasClass(n, "MathJax_Preview") {
		return true
	}
	return dom.AttrOr(n, "aria-hidden") == "true"
}

func findSelfOrDescendant(n dom.Node, match func(dom.Node) bool) dom.Node {
	if match(n) {
		return n
	}
	return dom.Find(n, match)
}

func isDisplay(n dom.Node) bool {
	if displayMarked(n) {
		return true
	}
	p := n.Parent()
	return p != nil && p.Kind() == dom.ElementNode && displayMarked(p)
}

func displayMarked(n dom.Node) bool {
	for _, c := range []string{"katex-display", "MathJax_Display", "math-display"} {
		if dom.HasClass(n, c) {
			return true
		}
	}
	switch dom.AttrOr(n, "display") {
	case "block", "true":
		return true
	}
	return false
}
