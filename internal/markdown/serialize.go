// Package markdown renders content parts as Markdown and inspects the result.
package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/dgallion1/chatexport/internal/content"
)

// Serialize renders parts in order. It never fails; unknown parts are ignored.
func Serialize(parts []content.Part) string {
	s := serializer{item: -1, lastItem: -1}
	for _, p := range parts {
		s.part(p)
	}
	return Normalize(string(s.out))
}

type serializer struct {
	out []byte
	// prevInline is set while the output ends in inline content that a
	// following inline part could fuse with.
	prevInline bool
	// items holds the continuation indent of each open list item by depth.
	items []int
	// item is the depth of the list item that content continues, or -1.
	item int
	// lastItem is the depth of the item the last written line belongs to.
	lastItem int
	// softBreak records a line break inside an item right after inline text.
	softBreak bool
}

func (s *serializer) part(p content.Part) {
	switch p := p.(type) {
	case content.Text:
		s.inline(p.Content)
	case content.Bold:
		s.inline("**" + p.Content + "**")
	case content.Italic:
		s.inline("*" + p.Content + "*")
	case content.BoldMath:
		s.inline("**$" + p.Content + "$**")
	case content.InlineCode:
		s.inline(codeSpan(p.Content))
	case content.Link:
		s.inline("[" + p.Content + "](" + p.Href + ")")
	case content.Math:
		if p.Display {
			s.block("$$" + p.Content + "$$")
		} else {
			s.inline("$" + p.Content + "$")
		}
	case content.CodeBlock:
		s.block(fenced(p))
	case content.Heading:
		level := min(max(p.Level, 1), 6)
		s.block(strings.Repeat("#", level) + " " + p.Content)
	case content.Blockquote:
		s.block(quote(p.Content))
	case content.Table:
		s.block(table(p))
	case content.ListItem:
		s.listItem(p)
	case content.ParagraphBreak:
		s.blankLine()
		s.items = s.items[:0]
		s.item, s.lastItem = -1, -1
		s.softBreak = false
	case content.LineBreak:
		afterInline := s.prevInline
		s.newline()
		if p.Depth > 0 {
			s.item = p.Depth - 1
			s.softBreak = s.softBreak || afterInline
		} else {
			s.item = -1
			s.softBreak = false
		}
	}
}

func (s *serializer) listItem(p content.ListItem) {
	depth := max(p.Depth, 0)
	marker := "- "
	if p.Ordered {
		marker = strconv.Itoa(p.Index) + ". "
	}
	s.newline()
	s.write(strings.Repeat("  ", depth))
	s.write(marker)

	if len(s.items) > depth {
		s.items = s.items[:depth]
	}
	for len(s.items) < depth {
		s.items = append(s.items, 2*len(s.items)+2)
	}
	s.items = append(s.items, 2*depth+len(marker))
	s.item, s.lastItem = depth, depth
	s.softBreak = false
}

// indent is the column content of the item at depth starts at.
func (s *serializer) indent(depth int) string {
	width := 2*depth + 2
	if depth < len(s.items) {
		width = s.items[depth]
	}
	return strings.Repeat(" ", width)
}

// continueItem prepares a fresh line that still belongs to the current item.
// Leaving a nested list takes a blank line, otherwise the text would be read
// as a lazy continuation of the nested item. A break after inline text
// becomes a hard break so the lines do not fold together.
func (s *serializer) continueItem() {
	if s.item < 0 || !s.atLineStart() {
		return
	}
	switch {
	case s.lastItem > s.item:
		s.write("\n")
	case s.softBreak:
		s.out = append(s.out[:len(s.out)-1], '\\', '\n')
	}
	s.write(s.indent(s.item))
	s.lastItem = s.item
	s.softBreak = false
}

func (s *serializer) inline(text string) {
	if text == "" {
		return
	}
	s.continueItem()
	if s.prevInline && needsSpace(s.lastByte(), text[0]) {
		s.out = append(s.out, ' ')
	}
	s.write(text)
	s.prevInline = true
}

// needsSpace keeps adjacent inline parts from fusing without pushing a space
// in front of punctuation.
func needsSpace(last, next byte) bool {
	if isSpace(last) || isSpace(next) {
		return false
	}
	if strings.IndexByte(",.;:!?)]}", next) >= 0 {
		return false
	}
	return strings.IndexByte("([{", last) < 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t'
}

func (s *serializer) write(text string) {
	s.out = append(s.out, text...)
}

func (s *serializer) lastByte() byte {
	if len(s.out) == 0 {
		return '\n'
	}
	return s.out[len(s.out)-1]
}

func (s *serializer) atLineStart() bool {
	return len(s.out) > 0 && s.lastByte() == '\n'
}

func (s *serializer) newline() {
	s.prevInline = false
	if len(s.out) == 0 || s.lastByte() == '\n' {
		return
	}
	s.out = append(s.out, '\n')
}

func (s *serializer) blankLine() {
	s.prevInline = false
	switch {
	case len(s.out) == 0, bytes.HasSuffix(s.out, []byte("\n\n")):
	case s.lastByte() == '\n':
		s.out = append(s.out, '\n')
	default:
		s.write("\n\n")
	}
}

// block sets text apart with blank lines. Inside a list item every line is
// indented to the item's content column so the list stays in one piece.
func (s *serializer) block(text string) {
	s.blankLine()
	if s.item < 0 {
		s.write(text)
		s.write("\n\n")
		return
	}
	indent := s.indent(s.item)
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			s.write(indent)
			s.write(line)
		}
		s.write("\n")
	}
	s.write("\n")
	s.lastItem = s.item
	s.softBreak = false
}

func codeSpan(code string) string {
	if strings.Contains(code, "`") {
		return "`` " + code + " ``"
	}
	return "`" + code + "`"
}

func fenced(c content.CodeBlock) string {
	body := strings.TrimSuffix(c.Content, "\n")
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	return fence + c.Language + "\n" + body + "\n" + fence
}

func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

// Normalize collapses every run of three or more newlines to two and trims
// the document. The collapse applies outside fenced code only: a fence body
// keeps its blank lines, so a document whose code holds a run of blank lines
// is a fixed point of Normalize but not of a plain newline collapse.
// Fences may be indented under a list item.
func Normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	fence := ""
	blank := false
	for _, line := range lines {
		if fence != "" {
			out = append(out, line)
			if closesFence(line, fence) {
				fence = ""
			}
			blank = false
			continue
		}
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
			fence = opensFence(line)
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func opensFence(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	n := len(trimmed) - len(strings.TrimLeft(trimmed, "`"))
	return trimmed[:n]
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(fence) && strings.Trim(trimmed, "`") == ""
}
