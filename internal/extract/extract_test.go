package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/chatexport/internal/content"
	"github.com/dgallion1/chatexport/internal/dom"
	"github.com/dgallion1/chatexport/internal/markdown"
)

var (
	el   = dom.Element
	text = dom.Text
)

func katex(tex string) dom.Node {
	return el("span", dom.Attrs{"class": "katex"},
		el("span", dom.Attrs{"class": "katex-mathml"},
			el("math", nil, el("semantics", nil,
				el("annotation", dom.Attrs{"encoding": "application/x-tex"}, text(tex))))),
		el("span", dom.Attrs{"class": "katex-html", "aria-hidden": "true"}, text("rendered")),
	)
}

func assertParts(t *testing.T, got []content.Part, want ...content.Part) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parts mismatch\n got: %#v\nwant: %#v", got, want)
	}
}

func TestContent_MergesAdjacentText(t *testing.T) {
	got := Content(el("span", nil, text("a"), text(" b"), text("c")), nil)
	assertParts(t, got, content.Text{Content: "a b c"})
}

func TestContent_MergeRespectsPunctuation(t *testing.T) {
	got := Content(el("span", nil,
		text("Hello"), text(","), text(" world"), text("("), text("x"), text(")"),
	), nil)
	assertParts(t, got, content.Text{Content: "Hello, world (x)"})
}

func TestContent_ExcludesReasoningZone(t *testing.T) {
	aside := el("div", nil, el("p", nil, text("secret reasoning")))
	root := el("div", nil, aside, el("p", nil, text("visible answer")))

	md := markdown.Serialize(Content(root, aside))
	if strings.Contains(md, "secret") {
		t.Errorf("excluded text leaked: %q", md)
	}
	if md != "visible answer" {
		t.Errorf("expected %q, got %q", "visible answer", md)
	}

	if parts := Content(aside.Children()[0], aside); parts != nil {
		t.Errorf("expected nothing from inside the zone, got %#v", parts)
	}
}

func TestContent_EmphasisFlattened(t *testing.T) {
	root := el("span", nil,
		text("This is "),
		el("strong", nil, text("very "), el("em", nil, text("important"))),
		text("."),
	)
	assertParts(t, Content(root, nil),
		content.Text{Content: "This is"},
		content.Bold{Content: "very important"},
		content.Text{Content: "."},
	)
	if md := markdown.Serialize(Content(root, nil)); md != "This is **very important**." {
		t.Errorf("unexpected markdown %q", md)
	}
}

func TestContent_EmphasisAroundMath(t *testing.T) {
	bold := el("strong", nil, text("Energy "), katex("E=mc^2"), text(" holds"))
	assertParts(t, Content(bold, nil),
		content.Bold{Content: "Energy"},
		content.BoldMath{Content: "E=mc^2"},
		content.Bold{Content: "holds"},
	)

	italic := el("em", nil, text("where "), katex("x"))
	assertParts(t, Content(italic, nil),
		content.Italic{Content: "where"},
		content.Math{Content: "x"},
	)
}

func TestContent_MathSkipsRenderedCopy(t *testing.T) {
	root := el("span", nil, text("Let"), katex(`\alpha`), text("be small"))
	assertParts(t, Content(root, nil),
		content.Text{Content: "Let"},
		content.Math{Content: `\alpha`},
		content.Text{Content: "be small"},
	)
}

func TestContent_DisplayMath(t *testing.T) {
	root := el("div", nil,
		el("p", nil, text("Pythagoras:")),
		el("span", dom.Attrs{"class": "katex-display"}, katex("x^2+y^2=z^2")),
		el("p", nil, text("Done.")),
	)
	md := markdown.Serialize(Content(root, nil))
	if !strings.Contains(md, "\n\n$$x^2+y^2=z^2$$\n\n") {
		t.Errorf("expected display math on its own block, got %q", md)
	}
}

func TestContent_NestedLists(t *testing.T) {
	root := el("ul", nil,
		el("li", nil, text("Parent"),
			el("ol", nil,
				el("li", nil, text("one")),
				el("li", nil, text("two")),
			),
		),
	)
	parts := Content(root, nil)
	assertParts(t, parts,
		content.ListItem{Ordered: false, Depth: 0, Index: 1},
		content.Text{Content: "Parent"},
		content.ListItem{Ordered: true, Depth: 1, Index: 1},
		content.Text{Content: "one"},
		content.LineBreak{Depth: 1},
		content.ListItem{Ordered: true, Depth: 1, Index: 2},
		content.Text{Content: "two"},
		content.LineBreak{Depth: 1},
		content.LineBreak{},
		content.ParagraphBreak{},
	)
	if md := markdown.Serialize(parts); md != "- Parent\n  1. one\n  2. two" {
		t.Errorf("unexpected markdown %q", md)
	}
}

func TestContent_ParagraphsInListItemsStayTight(t *testing.T) {
	root := el("ol", nil,
		el("li", nil, el("p", nil, text("first"))),
		el("li", nil, el("p", nil, text("second"))),
	)
	if md := markdown.Serialize(Content(root, nil)); md != "1. first\n2. second" {
		t.Errorf("unexpected markdown %q", md)
	}
}

func TestContent_ListItemContinuesAfterNestedList(t *testing.T) {
	root := el("ul", nil,
		el("li", nil,
			el("p", nil, text("para")),
			el("ul", nil, el("li", nil, text("x"))),
			el("p", nil, text("tail")),
		),
		el("li", nil, text("next")),
	)
	parts := Content(root, nil)
	assertParts(t, parts,
		content.ListItem{Depth: 0, Index: 1},
		content.Text{Content: "para"},
		content.ListItem{Depth: 1, Index: 1},
		content.Text{Content: "x"},
		content.LineBreak{Depth: 1},
		content.Text{Content: "tail"},
		content.LineBreak{},
		content.ListItem{Depth: 0, Index: 2},
		content.Text{Content: "next"},
		content.LineBreak{},
		content.ParagraphBreak{},
	)
	want := "- para\n  - x\n\n  tail\n- next"
	if md := markdown.Serialize(parts); md != want {
		t.Errorf("expected %q, got %q", want, md)
	}
}

func TestContent_BreakInsideListItem(t *testing.T) {
	root := el("ul", nil, el("li", nil, text("a"), el("br", nil), text("b")))
	parts := Content(root, nil)
	assertParts(t, parts,
		content.ListItem{Depth: 0, Index: 1},
		content.Text{Content: "a"},
		content.LineBreak{Depth: 1},
		content.Text{Content: "b"},
		content.LineBreak{},
		content.ParagraphBreak{},
	)
	want := "- a\\\n  b"
	if md := markdown.Serialize(parts); md != want {
		t.Errorf("expected %q, got %q", want, md)
	}
}

func TestContent_CodeBlockInsideListItem(t *testing.T) {
	root := el("ol", nil,
		el("li", nil, text("Step one:"),
			el("pre", nil, el("code", dom.Attrs{"class": "language-go"}, text("x := 1\n")))),
		el("li", nil, text("Step two")),
	)
	want := "1. Step one:\n\n   ```go\n   x := 1\n   ```\n\n2. Step two"
	if md := markdown.Serialize(Content(root, nil)); md != want {
		t.Errorf("expected %q, got %q", want, md)
	}
}

func TestContent_CodeBlock(t *testing.T) {
	src := "def f():\n\n\n    return 1\n"
	root := el("pre", nil, el("code", dom.Attrs{"class": "language-python"}, text(src)))
	assertParts(t, Content(root, nil), content.CodeBlock{Content: src, Language: "python"})
}

func TestContent_CodeLanguageFromLabel(t *testing.T) {
	root := el("div", nil,
		el("div", nil, text("Python")),
		el("pre", nil, el("code", nil, text("x = 1\n"))),
	)
	assertParts(t, Content(root, nil),
		content.CodeBlock{Content: "x = 1\n", Language: "python"},
		content.ParagraphBreak{},
	)
}

func TestContent_ProseBeforeCodeIsNotALabel(t *testing.T) {
	for _, tag := range []string{"p", "h3"} {
		root := el("div", nil,
			el(tag, nil, text("Python")),
			el("pre", nil, el("code", nil, text("print(1)"))),
		)
		parts := Content(root, nil)
		var prose bool
		for _, p := range parts {
			switch p := p.(type) {
			case content.Text:
				prose = prose || p.Content == "Python"
			case content.Heading:
				prose = prose || p.Content == "Python"
			case content.CodeBlock:
				if p.Language != "" {
					t.Errorf("<%s> label gave language %q", tag, p.Language)
				}
			}
		}
		if !prose {
			t.Errorf("<%s>Python</%s> was dropped: %#v", tag, tag, parts)
		}
	}
}

func TestContent_LabelMustBeKnownLanguage(t *testing.T) {
	root := el("div", nil,
		el("span", nil, text("Text")),
		el("pre", nil, text("echo hi")),
	)
	assertParts(t, Content(root, nil),
		content.Text{Content: "Text"},
		content.CodeBlock{Content: "echo hi"},
		content.ParagraphBreak{},
	)
}

func TestContent_UnlabelledCode(t *testing.T) {
	root := el("div", nil,
		el("p", nil, text("Example")),
		el("pre", nil, text("plain")),
	)
	parts := Content(root, nil)
	found := false
	for _, p := range parts {
		if cb, ok := p.(content.CodeBlock); ok {
			found = true
			if cb.Language != "" || cb.Content != "plain" {
				t.Errorf("unexpected code block %#v", cb)
			}
		}
	}
	if !found {
		t.Fatal("expected a code block")
	}
}

func TestContent_InlineCodeAndLinks(t *testing.T) {
	root := el("p", nil,
		text("Run "), el("code", nil, text("go test")),
		text(" or see "), el("a", dom.Attrs{"href": "https://go.dev"}, text("the docs")),
		text("."),
	)
	md := markdown.Serialize(Content(root, nil))
	if md != "Run `go test` or see [the docs](https://go.dev)." {
		t.Errorf("unexpected markdown %q", md)
	}
}

func TestContent_LinkWithoutHrefIsText(t *testing.T) {
	root := el("span", nil, text("See"), el("a", nil, text("here")), text("."))
	assertParts(t, Content(root, nil), content.Text{Content: "See here."})
}

func TestContent_Headings(t *testing.T) {
	root := el("div", nil, el("h2", nil, text("  Big   Title ")), el("p", nil, text("body")))
	parts := Content(root, nil)
	if len(parts) == 0 {
		t.Fatal("expected parts")
	}
	if h, ok := parts[0].(content.Heading); !ok || h.Level != 2 || h.Content != "Big Title" {
		t.Errorf("unexpected first part %#v", parts[0])
	}
	if md := markdown.Serialize(parts); md != "## Big Title\n\nbody" {
		t.Errorf("unexpected markdown %q", md)
	}
}

func TestContent_SkipsNonContent(t *testing.T) {
	root := el("div", nil,
		el("script", nil, text("alert(1)")),
		el("button", nil, text("Copy")),
		el("style", nil, text(".x{}")),
		el("span", nil, text("kept")),
	)
	md := markdown.Serialize(Content(root, nil))
	if md != "kept" {
		t.Errorf("expected only visible content, got %q", md)
	}
}

func TestContent_BlockquoteAndTable(t *testing.T) {
	root := el("div", nil,
		el("blockquote", nil, el("p", nil, text("one")), el("p", nil, text("two"))),
		el("table", nil,
			el("thead", nil, el("tr", nil, el("th", nil, text("Name")), el("th", nil, text("Value")))),
			el("tbody", nil, el("tr", nil, el("td", nil, text("a")), el("td", nil, text("1")))),
		),
	)
	parts := Content(root, nil)
	assertParts(t, parts,
		content.Blockquote{Content: "one\n\ntwo"},
		content.Table{Header: []string{"Name", "Value"}, Rows: [][]string{{"a", "1"}}},
		content.ParagraphBreak{},
	)
}

func TestContent_NilRoot(t *testing.T) {
	if Content(nil, nil) != nil {
		t.Error("expected nil for nil root")
	}
}

func TestContent_FromParsedPage(t *testing.T) {
	root, err := dom.ParseString(`<div class="font-claude-response">
  <p>Hello <strong>there</strong>, friend.</p>
  <ul>
    <li>alpha</li>
    <li>beta</li>
  </ul>
</div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := markdown.Serialize(Content(root, nil))
	want := "Hello **there**, friend.\n\n- alpha\n- beta"
	if md != want {
		t.Errorf("expected %q, got %q", want, md)
	}
}
