package cli

import (
	"io"
	"os"
	"strings"

	"github.com/routeglass/routeglass/pkg/util"
)

// Table prints column-aligned rows. Rows are buffered until Flush so widths
// can be measured on visible text; coloured cells align like plain ones.
// A table with no rows prints nothing, not even headers.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a table on stdout.
func NewTable(headers ...string) *Table {
	return NewTableTo(os.Stdout, headers...)
}

// NewTableTo creates a table writing to out.
func NewTableTo(out io.Writer, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// Row adds a row. Missing trailing cells print empty.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes headers, a dash divider and every buffered row.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	measure := func(cells []string) {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := util.VisibleWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.headers)
	for _, r := range t.rows {
		measure(r)
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", len(h))
	}

	var b strings.Builder
	t.writeLine(&b, t.headers, widths)
	t.writeLine(&b, dividers, widths)
	for _, r := range t.rows {
		t.writeLine(&b, r, widths)
	}
	io.WriteString(t.out, b.String())
	t.rows = nil
}

func (t *Table) writeLine(b *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i := range widths {
		var c string
		if i < len(cells) {
			c = cells[i]
		}
		line.WriteString(c)
		if i < len(widths)-1 {
			line.WriteString(strings.Repeat(" ", widths[i]-util.VisibleWidth(c)+2))
		}
	}
	b.WriteString(strings.TrimRight(line.String(), " "))
	b.WriteByte('\n')
}
