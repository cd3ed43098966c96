package extract

import (
	"strings"

	"github.com/dgallion1/chatexport/internal/content"
	"github.com/dgallion1/chatexport/internal/dom"
)

var knownLanguages = map[string]bool{
	"python": true, "go": true, "javascript": true, "typescript": true,
	"bash": true, "shell": true, "sql": true, "json": true, "yaml": true,
	"html": true, "css": true, "java": true, "c": true, "cpp": true,
	"rust": true, "ruby": true, "php": true, "kotlin": true, "swift": true,
	"markdown": true, "xml": true,
}

// classLanguage reads language-xxx / lang-xxx classes or data-language.
func classLanguage(n dom.Node) string {
	for _, c := range dom.Classes(n) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(c, prefix) && len(c) > len(prefix) {
				return strings.ToLower(c[len(prefix):])
			}
		}
	}
	return strings.ToLower(strings.TrimSpace(dom.AttrOr(n, "data-language")))
}

// labelLanguage picks up the language label some chat UIs render as a sibling
// just before the code container.
func labelLanguage(pre dom.Node) string {
	prev := dom.PrevElement(pre)
	if !isLabelElement(prev) {
		return ""
	}
	if lang := labelText(prev); knownLanguages[lang] {
		return lang
	}
	return ""
}

// isCodeLabel reports whether n is such a label. Labels are consumed by the
// code block and never emitted as prose.
func isCodeLabel(n dom.Node) bool {
	if !isLabelElement(n) || !dom.Is(dom.NextElement(n), "pre") {
		return false
	}
	return knownLanguages[labelText(n)]
}

// isLabelElement limits labels to span/div chrome. Paragraphs and headings
// that happen to name a language are prose.
func isLabelElement(n dom.Node) bool {
	return dom.Is(n, "span", "div")
}

func labelText(n dom.Node) string {
	return strings.ToLower(strings.TrimSpace(n.Text()))
}

// quoteText flattens a blockquote into paragraphs separated by blank lines.
func quoteText(n dom.Node) string {
	var paras []string
	var cur []string
	flush := func() {
		if s := dom.CollapseSpace(strings.Join(cur, " ")); s != "" {
			paras = append(paras, s)
		}
		cur = cur[:0]
	}
	for _, c := range n.Children() {
		if c.Kind() == dom.ElementNode && (blockTags[c.Tag()] || dom.Is(c, "ul", "ol", "blockquote", "pre")) {
			flush()
			cur = append(cur, c.Text())
			flush()
			continue
		}
		cur = append(cur, c.Text())
	}
	flush()
	return strings.Join(paras, "\n\n")
}

// table collects th/td text row by row. The first row becomes the header.
func table(n dom.Node) (content.Table, bool) {
	var rows [][]string
	dom.Walk(n, func(d dom.Node) dom.WalkStatus {
		if d != n && dom.Is(d, "table") {
			return dom.WalkSkipChildren
		}
		if !dom.Is(d, "tr") {
			return dom.WalkContinue
		}
		var cells []string
		for _, c := range d.Children() {
			if dom.Is(c, "th", "td") {
				cells = append(cells, dom.CollapseSpace(c.Text()))
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
		return dom.WalkSkipChildren
	})
	if len(rows) == 0 {
		return content.Table{}, false
	}
	return content.Table{Header: rows[0], Rows: rows[1:]}, true
}
