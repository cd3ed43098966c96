package markdown

import (
	"testing"

	"github.com/dgallion1/chatexport/internal/content"
)

func TestTable_AlignsByDisplayWidth(t *testing.T) {
	got := table(content.Table{
		Header: []string{"Name", "Note"},
		Rows: [][]string{
			{"日本", "a|b"},
			{"x"},
		},
	})
	want := "| Name | Note |\n" +
		"|------|------|\n" +
		"| 日本 | a\\|b |\n" +
		"| x    |      |"
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestTable_MinimumWidth(t *testing.T) {
	got := table(content.Table{Header: []string{"a"}})
	if got != "| a   |\n|-----|" {
		t.Errorf("unexpected table %q", got)
	}
}

func TestInspect_OutlineAndStats(t *testing.T) {
	md := `# Export

**Messages:** 2

## User

How do I sort?

## Assistant

### Option one

- first
- second

` + "```go\nsort.Ints(xs)\n```" + `

> quoted
`
	r := Inspect(md)

	if len(r.Outline) != 1 || r.Outline[0].Title != "Export" {
		t.Fatalf("expected a single h1 root, got %+v", r.Outline)
	}
	h1 := r.Outline[0]
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(h1.Children))
	}
	if h1.Children[0].Title != "User" || h1.Children[1].Title != "Assistant" {
		t.Errorf("unexpected h2 titles %q, %q", h1.Children[0].Title, h1.Children[1].Title)
	}
	asst := h1.Children[1]
	if len(asst.Children) != 1 || asst.Children[0].Title != "Option one" || asst.Children[0].Level != 3 {
		t.Errorf("expected h3 under Assistant, got %+v", asst.Children)
	}

	s := r.Stats
	if s.Headings != 4 {
		t.Errorf("expected 4 headings, got %d", s.Headings)
	}
	if s.CodeBlocks != 1 {
		t.Errorf("expected 1 code block, got %d", s.CodeBlocks)
	}
	if s.ListItems != 2 {
		t.Errorf("expected 2 list items, got %d", s.ListItems)
	}
	if s.Quotes != 1 {
		t.Errorf("expected 1 quote, got %d", s.Quotes)
	}
	if s.Words == 0 {
		t.Error("expected a word count")
	}
}

func TestInspect_Empty(t *testing.T) {
	r := Inspect("")
	if len(r.Outline) != 0 || r.Stats != (Stats{}) {
		t.Errorf("expected empty report, got %+v", r)
	}
}
