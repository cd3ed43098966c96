package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a heading and the headings nested under it.
type Section struct {
	Title    string     `json:"title"`
	Level    int        `json:"level"`
	Children []*Section `json:"children,omitempty"`
}

// Stats counts the blocks of a rendered document.
type Stats struct {
	Headings   int `json:"headings"`
	Paragraphs int `json:"paragraphs"`
	CodeBlocks int `json:"code_blocks"`
	ListItems  int `json:"list_items"`
	Quotes     int `json:"quotes"`
	Words      int `json:"words"`
}

// Report is what Inspect learns about a document.
type Report struct {
	Outline []*Section `json:"outline"`
	Stats   Stats      `json:"stats"`
}

// Inspect parses md with goldmark and returns its heading outline and block
// counts.
func Inspect(md string) Report {
	src := []byte(md)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	// Level 0 is a virtual root; every real heading nests somewhere under it.
	type stackEntry struct {
		section *Section
		level   int
	}
	root := &Section{}
	stack := []stackEntry{{section: root, level: 0}}
	var stats Stats

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			stats.Headings++
			s := &Section{Title: strings.TrimSpace(string(node.Text(src))), Level: node.Level}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, s)
			stack = append(stack, stackEntry{section: s, level: node.Level})
		case *ast.Paragraph:
			stats.Paragraphs++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			stats.CodeBlocks++
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			stats.ListItems++
		case *ast.Blockquote:
			stats.Quotes++
		case *ast.Text:
			stats.Words += len(strings.Fields(string(node.Segment.Value(src))))
		}
		return ast.WalkContinue, nil
	})

	return Report{Outline: root.Children, Stats: stats}
}
