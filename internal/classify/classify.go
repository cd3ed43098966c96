// Package classify locates user and assistant messages on a saved chat page.
// These are page-specific heuristics; everything downstream works on the
// containers they return.
package classify

import (
	"regexp"
	"strings"

	"github.com/dgallion1/chatexport/internal/dom"
)

// Kind is the author of a message.
type Kind int

const (
	User Kind = iota
	Assistant
)

func (k Kind) String() string {
	if k == User {
		return "User"
	}
	return "Assistant"
}

// Container is one classified message on the page.
type Container struct {
	Kind Kind
	// Position is the container's pre-order index in the page; it is unique
	// and follows document order.
	Position int
	Node     dom.Node
	// Content is the sub-node holding the message body.
	Content dom.Node
	// Reasoning is the collapsible aside inside an assistant message, or nil.
	Reasoning dom.Node
}

// Options tunes the heuristics.
type Options struct {
	// ReasoningKeywords identify an aside by its toggle button text.
	ReasoningKeywords []string
}

// DefaultReasoningKeywords covers the English and Italian UI labels.
var DefaultReasoningKeywords = []string{"Thinking", "Reasoning", "Processing", "Thought", "Processo di ragionamento"}

// DefaultOptions returns Options with the default keywords.
func DefaultOptions() Options {
	return Options{ReasoningKeywords: DefaultReasoningKeywords}
}

// Classify returns the page's message containers in document order.
// Reasoning asides found outside any assistant container are attached to the
// next assistant message that lacks one, or become a message of their own.
func Classify(root dom.Node, opts Options) []Container {
	if len(opts.ReasoningKeywords) == 0 {
		opts.ReasoningKeywords = DefaultReasoningKeywords
	}
	var out []Container
	var orphans []Container
	pos := 0
	dom.Walk(root, func(n dom.Node) dom.WalkStatus {
		pos++
		if n.Kind() != dom.ElementNode {
			return dom.WalkContinue
		}
		switch {
		case isReasoning(n, opts.ReasoningKeywords):
			orphans = append(orphans, Container{Kind: Assistant, Position: pos, Node: n, Reasoning: n})
			return dom.WalkSkipChildren
		case isUser(n):
			out = append(out, Container{Kind: User, Position: pos, Node: n, Content: userContent(n)})
			return dom.WalkSkipChildren
		case isAssistant(n):
			c := Container{Kind: Assistant, Position: pos, Node: n}
			c.Reasoning = dom.Find(n, func(d dom.Node) bool { return isReasoning(d, opts.ReasoningKeywords) })
			c.Content = assistantContent(n, c.Reasoning)
			out = append(out, c)
			return dom.WalkSkipChildren
		}
		return dom.WalkContinue
	})
	return attachOrphans(out, orphans)
}

func attachOrphans(msgs, orphans []Container) []Container {
	for _, o := range orphans {
		attached := false
		for i := range msgs {
			m := &msgs[i]
			if m.Kind == Assistant && m.Position > o.Position && m.Reasoning == nil {
				m.Reasoning = o.Node
				attached = true
				break
			}
		}
		if !attached {
			msgs = append(msgs, o)
		}
	}
	return msgs
}

func isReasoning(n dom.Node, keywords []string) bool {
	if !dom.HasAllClasses(n, "transition-all", "duration-400", "ease-out", "rounded-lg") {
		return false
	}
	button := dom.Find(n, func(d dom.Node) bool { return dom.Is(d, "button") })
	if button == nil {
		return false
	}
	label := button.Text()
	for _, k := range keywords {
		if strings.Contains(label, k) {
			return true
		}
	}
	return false
}

func isUser(n dom.Node) bool {
	return dom.HasAllClasses(n, "group", "relative", "inline-flex", "bg-bg-300") ||
		dom.AttrOr(n, "data-testid") == "user-message"
}

func isAssistant(n dom.Node) bool {
	if dom.HasAllClasses(n, "group", "relative", "-tracking-[0.015em]") || dom.HasClass(n, "font-claude-response") {
		return true
	}
	_, streaming := n.Attr("data-is-streaming")
	return streaming
}

func assistantContent(n, reasoning dom.Node) dom.Node {
	if dom.HasClass(n, "font-claude-message") || dom.HasClass(n, "font-claude-response") {
		return n
	}
	var found dom.Node
	dom.Walk(n, func(d dom.Node) dom.WalkStatus {
		if reasoning != nil && d == reasoning {
			return dom.WalkSkipChildren
		}
		if d != n && (dom.HasClass(d, "font-claude-message") || dom.HasClass(d, "font-claude-response")) {
			found = d
			return dom.WalkStop
		}
		return dom.WalkContinue
	})
	if found == nil {
		return n
	}
	return found
}

var initialsOnly = regexp.MustCompile(`^[A-Z]{1,3}$`)

// userContent picks the descendant holding the most text, skipping avatar
// initials.
func userContent(n dom.Node) dom.Node {
	if dom.AttrOr(n, "data-testid") == "user-message" {
		return n
	}
	base := n
	if row := dom.Find(n, func(d dom.Node) bool { return dom.HasAllClasses(d, "flex", "flex-row", "gap-2") }); row != nil {
		base = row
	}
	best, longest := base, 0
	dom.Walk(base, func(d dom.Node) dom.WalkStatus {
		if d == base || !dom.Is(d, "div", "p", "span") {
			return dom.WalkContinue
		}
		t := strings.TrimSpace(d.Text())
		if t != "" && !initialsOnly.MatchString(t) && len(t) > longest {
			best, longest = d, len(t)
		}
		return dom.WalkContinue
	})
	return best
}

var titleSuffix = regexp.MustCompile(`\s+[-|\\]\s+Claude$`)

// Title returns the page title without the product suffix, or fallback.
func Title(root dom.Node, fallback string) string {
	var title string
	dom.Walk(root, func(n dom.Node) dom.WalkStatus {
		if dom.Is(n, "title") {
			title = dom.CollapseSpace(n.Text())
			return dom.WalkStop
		}
		return dom.WalkContinue
	})
	title = strings.TrimSpace(titleSuffix.ReplaceAllString(title, ""))
	if title == "" || title == "Claude" {
		return fallback
	}
	return title
}
