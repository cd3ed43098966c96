// Package content defines the ordered part sequence that extraction produces
// and serialization consumes. Parts carry no reference to the nodes they came
// from.
package content

// Part is one typed unit of extracted content. The implementations in this
// package form a closed set.
type Part interface {
	part()
}

// Text is running prose. Adjacent text is merged during extraction.
type Text struct {
	Content string
}

type Bold struct {
	Content string
}

type Italic struct {
	Content string
}

// BoldMath is a math expression that sat inside bold formatting.
type BoldMath struct {
	Content string
}

type InlineCode struct {
	Content string
}

// CodeBlock holds preformatted code verbatim. Language may be empty.
type CodeBlock struct {
	Content  string
	Language string
}

// Heading has Level 1 through 6.
type Heading struct {
	Level   int
	Content string
}

// Math is an expression in its source notation.
type Math struct {
	Content string
	Display bool
}

// ListItem marks the start of a list item. The item's own content follows
// as separate parts until the next marker or break.
type ListItem struct {
	Ordered bool
	Depth   int
	Index   int // 1-based position within the parent list
}

// ParagraphBreak asks for a blank line between blocks.
type ParagraphBreak struct{}

// LineBreak asks for a single line break. Depth is the list nesting the
// next line belongs to: a line at Depth n continues the item at depth n-1
// and is indented under it. Zero means the line is outside any list.
type LineBreak struct {
	Depth int
}

type Link struct {
	Content string
	Href    string
}

// Blockquote is quoted text; paragraphs are separated by a blank line.
type Blockquote struct {
	Content string
}

// Table is a grid of flattened cell text.
type Table struct {
	Header []string
	Rows   [][]string
}

func (Text) part()           {}
func (Bold) part()           {}
func (Italic) part()         {}
func (BoldMath) part()       {}
func (InlineCode) part()     {}
func (CodeBlock) part()      {}
func (Heading) part()        {}
func (Math) part()           {}
func (ListItem) part()       {}
func (ParagraphBreak) part() {}
func (LineBreak) part()      {}
func (Link) part()           {}
func (Blockquote) part()     {}
func (Table) part()          {}
