// Package export assembles classified message containers into one Markdown
// document.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/chatexport/internal/classify"
	"github.com/dgallion1/chatexport/internal/dom"
	"github.com/dgallion1/chatexport/internal/extract"
	"github.com/dgallion1/chatexport/internal/markdown"
)

// ErrNoMessages means classification and extraction left nothing to export.
// It is not a processing fault.
var ErrNoMessages = errors.New("no conversation found")

// Message is one retained turn of the conversation.
type Message struct {
	Kind     classify.Kind
	Position int
	// Text is the user's text or the assistant's Markdown.
	Text         string
	Reasoning    extract.Reasoning
	HasReasoning bool
	Fingerprint  uint64
}

// Document is an assembled export.
type Document struct {
	Title      string
	ExportedAt time.Time
	Messages   []Message
	Markdown   string
}

// Options controls a page export.
type Options struct {
	// Title overrides the page title when set.
	Title        string
	DefaultTitle string
	Classify     classify.Options
}

// Assembler builds documents. It holds no state between calls.
type Assembler struct {
	log *slog.Logger
	// Now stamps the export; replaced in tests.
	Now func() time.Time
}

func NewAssembler(log *slog.Logger) *Assembler {
	return &Assembler{log: log, Now: time.Now}
}

// ExportPage classifies a parsed page and assembles its messages.
func (a *Assembler) ExportPage(root dom.Node, opts Options) (*Document, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = classify.Title(root, opts.DefaultTitle)
	}
	return a.Assemble(title, classify.Classify(root, opts.Classify))
}

// Assemble extracts every container, drops duplicates by fingerprint, and
// renders the survivors in document order. A container whose extraction
// fails is skipped without affecting the others.
func (a *Assembler) Assemble(title string, containers []classify.Container) (*Document, error) {
	ordered := make([]classify.Container, len(containers))
	copy(ordered, containers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	seen := make(map[uint64]struct{}, len(ordered))
	var msgs []Message
	for _, c := range ordered {
		msg, ok, err := a.message(c)
		if err != nil {
			a.log.Warn("message extraction failed", "position", c.Position, "kind", c.Kind.String(), "error", err)
			continue
		}
		if !ok {
			continue
		}
		if _, dup := seen[msg.Fingerprint]; dup {
			a.log.Debug("duplicate message dropped", "position", c.Position, "kind", c.Kind.String())
			continue
		}
		seen[msg.Fingerprint] = struct{}{}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}

	doc := &Document{
		Title:      title,
		ExportedAt: a.Now(),
		Messages:   msgs,
	}
	doc.Markdown = render(doc)
	a.log.Info("conversation assembled", "title", title, "containers", len(containers), "messages", len(msgs))
	return doc, nil
}

// message extracts one container. ok is false when it yields no text.
func (a *Assembler) message(c classify.Container) (msg Message, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg, ok, err = Message{}, false, fmt.Errorf("panic: %v", r)
		}
	}()

	msg = Message{Kind: c.Kind, Position: c.Position}
	switch c.Kind {
	case classify.User:
		if c.Content == nil {
			return msg, false, nil
		}
		text, err := UserText(c.Content)
		if err != nil {
			return msg, false, err
		}
		msg.Text = text
	default:
		if c.Content != nil {
			md := markdown.Serialize(extract.Content(c.Content, c.Reasoning))
			msg.Text = stripLeakedHeaders(md)
		}
		if c.Reasoning != nil {
			msg.Reasoning, msg.HasReasoning = extract.ReasoningBlock(c.Reasoning)
		}
	}
	if msg.Text == "" && !msg.HasReasoning {
		return msg, false, nil
	}
	msg.Fingerprint = Fingerprint(msg.Reasoning.Content, msg.Text)
	return msg, true, nil
}

var leakedHeader = regexp.MustCompile(`(?i)Processo di ragionamento\s*\d+s?`)

func stripLeakedHeaders(md string) string {
	return markdown.Normalize(leakedHeader.ReplaceAllString(md, ""))
}

func render(doc *Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "**Exported:** %s\n\n", doc.ExportedAt.Format(time.DateTime))
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(doc.Messages))
	for _, m := range doc.Messages {
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "## %s\n\n", m.Kind)
		if m.HasReasoning {
			summary := "🧠 Reasoning"
			if m.Reasoning.Time != "" {
				summary += " (" + m.Reasoning.Time + ")"
			}
			fmt.Fprintf(&b, "<details>\n<summary>%s</summary>\n\n%s\n\n</details>\n\n", summary, m.Reasoning.Content)
		}
		if m.Text != "" {
			b.WriteString(m.Text)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
