package classify

import (
	"testing"

	"github.com/dgallion1/chatexport/internal/dom"
)

const page = `<html><head><title>Sorting help - Claude</title></head><body>
<div class="group relative inline-flex bg-bg-300">
  <div class="flex flex-row gap-2">
    <div>JD</div>
    <div><p>How do I sort a slice?</p></div>
  </div>
</div>
<div class="group relative -tracking-[0.015em]">
  <div class="transition-all duration-400 ease-out rounded-lg">
    <button>Thought process 4s</button>
    <div class="overflow-hidden" style="height: auto"><p>Think.</p></div>
  </div>
  <div class="font-claude-message"><p>Use sort.Ints.</p></div>
</div>
<div data-testid="user-message">Thanks</div>
<div data-is-streaming="false"><div class="font-claude-response"><p>Welcome.</p></div></div>
</body></html>`

func parse(t *testing.T, s string) dom.Node {
	t.Helper()
	root, err := dom.ParseString(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return root
}

func TestClassify_FindsMessagesInOrder(t *testing.T) {
	got := Classify(parse(t, page), DefaultOptions())
	if len(got) != 4 {
		t.Fatalf("expected 4 containers, got %d", len(got))
	}

	kinds := []Kind{User, Assistant, User, Assistant}
	for i, c := range got {
		if c.Kind != kinds[i] {
			t.Errorf("container %d: expected %s, got %s", i, kinds[i], c.Kind)
		}
		if i > 0 && c.Position <= got[i-1].Position {
			t.Errorf("container %d: position %d not after %d", i, c.Position, got[i-1].Position)
		}
	}

	if text := dom.CollapseSpace(got[0].Content.Text()); text != "How do I sort a slice?" {
		t.Errorf("expected user content without initials, got %q", text)
	}

	asst := got[1]
	if asst.Reasoning == nil {
		t.Fatal("expected reasoning aside on the assistant message")
	}
	if !dom.HasClass(asst.Content, "font-claude-message") {
		t.Errorf("expected assistant content to be the message body, got <%s class=%q>", asst.Content.Tag(), dom.AttrOr(asst.Content, "class"))
	}

	if text := got[2].Content.Text(); text != "Thanks" {
		t.Errorf("expected user message text, got %q", text)
	}
	if !dom.HasClass(got[3].Content, "font-claude-response") {
		t.Error("expected streaming container to resolve its response body")
	}
}

func TestClassify_ShortUserMessage(t *testing.T) {
	root := parse(t, `<div class="group relative inline-flex bg-bg-300"><div class="flex flex-row gap-2"><div>AB</div><div>Hi</div></div></div>`)
	got := Classify(root, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("expected 1 container, got %d", len(got))
	}
	if text := got[0].Content.Text(); text != "Hi" {
		t.Errorf("expected %q, got %q", "Hi", text)
	}
}

func TestClassify_OrphanReasoning(t *testing.T) {
	aside := `<div class="transition-all duration-400 ease-out rounded-lg"><button>Thinking</button><div class="overflow-hidden" style="height:auto"><p>r</p></div></div>`

	attached := Classify(parse(t, aside+`<div class="font-claude-response"><p>answer</p></div>`), DefaultOptions())
	if len(attached) != 1 {
		t.Fatalf("expected orphan to attach, got %d containers", len(attached))
	}
	if attached[0].Reasoning == nil {
		t.Error("expected reasoning attached to the following assistant message")
	}

	alone := Classify(parse(t, aside), DefaultOptions())
	if len(alone) != 1 || alone[0].Kind != Assistant || alone[0].Reasoning == nil || alone[0].Content != nil {
		t.Errorf("expected standalone reasoning message, got %+v", alone)
	}
}

func TestClassify_CustomKeywords(t *testing.T) {
	src := `<div class="font-claude-response"><div class="transition-all duration-400 ease-out rounded-lg"><button>Ragionamento</button></div><p>x</p></div>`
	if got := Classify(parse(t, src), DefaultOptions()); got[0].Reasoning != nil {
		t.Error("expected unknown label not to match")
	}
	got := Classify(parse(t, src), Options{ReasoningKeywords: []string{"Ragionamento"}})
	if got[0].Reasoning == nil {
		t.Error("expected custom keyword to match")
	}
}

func TestTitle(t *testing.T) {
	cases := []struct {
		html string
		want string
	}{
		{`<title>Sorting help - Claude</title>`, "Sorting help"},
		{`<title>Plan | Claude</title>`, "Plan"},
		{`<title>Claude</title>`, "fallback"},
		{`<p>no title</p>`, "fallback"},
	}
	for _, tc := range cases {
		if got := Title(parse(t, tc.html), "fallback"); got != tc.want {
			t.Errorf("Title(%q) = %q, want %q", tc.html, got, tc.want)
		}
	}
}
