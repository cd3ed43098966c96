package markdown

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dgallion1/chatexport/internal/content"
)

// table lays out a pipe table with columns padded to their display width, so
// wide (CJK) cells line up in a monospaced view.
func table(t content.Table) string {
	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, t.Header)
	rows = append(rows, t.Rows...)

	maxcol := 0
	for _, cols := range rows {
		maxcol = max(maxcol, len(cols))
	}
	widths := make([]int, maxcol)
	for i := range widths {
		widths[i] = 3
	}
	cells := make([][]string, len(rows))
	for i, cols := range rows {
		cells[i] = make([]string, maxcol)
		for j := 0; j < maxcol; j++ {
			if j < len(cols) {
				cells[i][j] = strings.ReplaceAll(cols[j], "|", `\|`)
			}
			widths[j] = max(widths[j], runewidth.StringWidth(cells[i][j]))
		}
	}

	var b strings.Builder
	for i, cols := range cells {
		for j, cell := range cols {
			b.WriteString("| ")
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[j]-runewidth.StringWidth(cell)))
			b.WriteString(" ")
		}
		b.WriteString("|")
		if i == 0 {
			b.WriteString("\n")
			for _, w := range widths {
				b.WriteString("|" + strings.Repeat("-", w+2))
			}
			b.WriteString("|")
		}
		if i < len(cells)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
