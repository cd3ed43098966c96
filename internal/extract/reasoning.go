package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/chatexport/internal/dom"
)

// Reasoning is the visible text of a reasoning aside.
type Reasoning struct {
	Content string
	Time    string // elapsed-time label such as "12s"; empty when absent
}

var (
	collapsedStyle = regexp.MustCompile(`(?i)(?:^|;)\s*(?:height\s*:\s*0(?:px)?|opacity\s*:\s*0(?:\.0+)?)\s*(?:;|$)`)
	elapsedLabel   = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:ms|s|secs?|seconds?|m|mins?|minutes?|h|hrs?|hours?)\b`)
)

// ReasoningBlock returns the text of an expanded aside. ok is false when the
// aside is collapsed, has no expandable region, or holds no text.
func ReasoningBlock(aside dom.Node) (Reasoning, bool) {
	if aside == nil {
		return Reasoning{}, false
	}
	region := dom.Find(aside, isExpandable)
	if region == nil || collapsedStyle.MatchString(dom.AttrOr(region, "style")) {
		return Reasoning{}, false
	}
	body := region
	if inner := dom.Find(region, func(d dom.Node) bool { return dom.HasClass(d, "font-claude-response") }); inner != nil {
		body = inner
	}
	text := reasoningText(body)
	if text == "" {
		return Reasoning{}, false
	}
	return Reasoning{Content: text, Time: elapsed(aside, region)}, true
}

func isExpandable(n dom.Node) bool {
	if !dom.Is(n, "div") || !dom.HasClass(n, "overflow-hidden") {
		return false
	}
	_, ok := n.Attr("style")
	return ok
}

func reasoningText(body dom.Node) string {
	var blocks []string
	dom.Walk(body, func(n dom.Node) dom.WalkStatus {
		switch {
		case dom.Is(n, "p"):
			if s := dom.CollapseSpace(n.Text()); s != "" {
				blocks = append(blocks, s)
			}
			return dom.WalkSkipChildren
		case dom.Is(n, "ul", "ol"):
			if s := listText(n); s != "" {
				blocks = append(blocks, s)
			}
			return dom.WalkSkipChildren
		}
		return dom.WalkContinue
	})
	return strings.Join(blocks, "\n\n")
}

func listText(n dom.Node) string {
	var lines []string
	for _, li := range n.Children() {
		if !dom.Is(li, "li") {
			continue
		}
		s := dom.CollapseSpace(li.Text())
		if s == "" {
			continue
		}
		if n.Tag() == "ol" {
			lines = append(lines, fmt.Sprintf("%d. %s", len(lines)+1, s))
		} else {
			lines = append(lines, "- "+s)
		}
	}
	return strings.Join(lines, "\n")
}

// elapsed looks for the time label in the aside's header: its buttons first,
// then any text outside the expandable region.
func elapsed(aside, region dom.Node) string {
	var label string
	dom.Walk(aside, func(n dom.Node) dom.WalkStatus {
		if n == region {
			return dom.WalkSkipChildren
		}
		if dom.Is(n, "button") {
			label = elapsedLabel.FindString(n.Text())
			if label != "" {
				return dom.WalkStop
			}
		}
		return dom.WalkContinue
	})
	if label != "" {
		return label
	}
	header := dom.TextWithout(aside, func(n dom.Node) bool { return n == region })
	return elapsedLabel.FindString(header)
}
