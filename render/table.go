package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align is a column's horizontal alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders fixed-width text tables. Column widths are measured in
// terminal cells, so labels with "≤" or CJK text still line up.
type Table struct {
	headers []string
	aligns  []Align
	rows    [][]string
	bold    []bool
	widths  []int
}

// NewTable creates a table with left-aligned columns.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &Table{
		headers: headers,
		aligns:  make([]Align, len(headers)),
		widths:  widths,
	}
}

// SetAlign sets the alignment of column i.
func (t *Table) SetAlign(i int, a Align) *Table {
	if i >= 0 && i < len(t.aligns) {
		t.aligns[i] = a
	}
	return t
}

// AddRow adds a row, padding or truncating cells to the header count.
func (t *Table) AddRow(cells ...string) {
	t.add(false, cells)
}

// AddBoldRow adds a row marked as a total.
func (t *Table) AddBoldRow(cells ...string) {
	t.add(true, cells)
}

func (t *Table) add(bold bool, cells []string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if w := runewidth.StringWidth(row[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
	t.bold = append(t.bold, bold)
}

// Len returns the number of body rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Lines returns the rendered table: the header, a separator, then every
// row. Total rows are preceded by a light rule.
func (t *Table) Lines() []string {
	out := make([]string, 0, len(t.rows)+2)
	out = append(out, t.line(t.headers), t.rule("─", "─┼─"))
	for i, row := range t.rows {
		if t.bold[i] && i > 0 {
			out = append(out, t.rule("┄", "┄┼┄"))
		}
		out = append(out, t.line(row))
	}
	return out
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	for _, l := range t.Lines() {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// String renders the table into a string.
func (t *Table) String() string {
	return strings.Join(t.Lines(), "\n") + "\n"
}

func (t *Table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if t.aligns[i] == AlignRight {
			parts[i] = runewidth.FillLeft(c, t.widths[i])
		} else {
			parts[i] = runewidth.FillRight(c, t.widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, " │ "), " ")
}

func (t *Table) rule(fill, joint string) string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat(fill, w)
	}
	return strings.Join(parts, joint)
}
