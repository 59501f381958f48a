package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// FORM GUIDE
// =============================================================================

// DefaultPageLines is the body height of one guide page.
const DefaultPageLines = 48

const minPageLines = 8

const (
	guideAuthority  = "LEMBAGA HASIL DALAM NEGERI MALAYSIA"
	guideYearLabel  = "TAHUN TAKSIRAN"
	guideGenerated  = "Dijana oleh CukaiKu"
	guideDisclaimer = "Ini adalah anggaran sahaja. Sahkan dengan LHDN atau ejen cukai berlesen sebelum pemfailan."
	guideWidth      = 96
)

var guideColumns = []string{"Rujukan", "Perkara", "Jumlah (RM)"}

// Page is one page of the guide body.
type Page struct {
	Number int      `json:"number"`
	Total  int      `json:"total"`
	Lines  []string `json:"lines"`
}

// Guide is the field-by-field filing guide for one return, laid out in
// form section order with BM wording.
type Guide struct {
	Year     int             `json:"year"`
	FormType engine.FormType `json:"form_type"`
	Pages    []Page          `json:"pages"`
}

// NewGuide lays out the result's form fields, followed by section H when
// a settlement is given. pageLines <= 0 uses DefaultPageLines.
func NewGuide(r *engine.ComputeResult, s *filing.Settlement, pageLines int) *Guide {
	if pageLines <= 0 {
		pageLines = DefaultPageLines
	}
	if pageLines < minPageLines {
		pageLines = minPageLines
	}

	fields := r.FormFields
	if s != nil {
		fields = s.FormFields(r)
	}

	p := &pager{size: pageLines}
	p.add(guideHeader(r.Year, r.FormType)...)

	for _, sec := range engine.SectionOrder {
		t := sectionTable(fields, sec)
		if t == nil {
			continue
		}
		lines := t.Lines()
		head, body := lines[:2], lines[2:]

		// Title, table head and at least one row stay together.
		if p.room() < 2+len(head)+1 {
			p.newPage()
		}
		if len(p.cur()) > 0 {
			p.add("")
		}
		p.add(SectionTitles[sec])
		p.add(head...)
		for _, l := range body {
			if p.room() == 0 {
				p.newPage()
				p.add(SectionTitles[sec] + " (samb.)")
				p.add(head...)
			}
			p.add(l)
		}
	}

	g := &Guide{Year: r.Year, FormType: r.FormType}
	total := len(p.pages)
	for i, lines := range p.pages {
		g.Pages = append(g.Pages, Page{Number: i + 1, Total: total, Lines: lines})
	}
	return g
}

func guideHeader(year int, form engine.FormType) []string {
	yearText := fmt.Sprintf("%s %d", guideYearLabel, year)
	gap := guideWidth - runewidth.StringWidth(guideAuthority) - runewidth.StringWidth(yearText)
	if gap < 1 {
		gap = 1
	}
	return []string{
		guideAuthority + strings.Repeat(" ", gap) + yearText,
		fmt.Sprintf("BORANG %s", form),
		FormSubtitles[form],
		guideGenerated,
		strings.Repeat("─", guideWidth),
	}
}

func sectionTable(fields []engine.FormField, sec engine.Section) *Table {
	t := NewTable(guideColumns...).SetAlign(2, AlignRight)
	for _, f := range fields {
		if f.Section != sec {
			continue
		}
		cells := []string{f.Ref, BMLabel(f.Label), Amount(f.Value.Abs())}
		if f.Bold {
			t.AddBoldRow(cells...)
		} else {
			t.AddRow(cells...)
		}
	}
	if t.Len() == 0 {
		return nil
	}
	return t
}

// Render writes every page followed by its footer. Pages are separated by
// a form feed.
func (g *Guide) Render(w io.Writer) error {
	var sb strings.Builder
	for i, p := range g.Pages {
		if i > 0 {
			sb.WriteString("\f\n")
		}
		for _, l := range p.Lines {
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
		sb.WriteString(guideDisclaimer)
		sb.WriteByte('\n')
		sb.WriteString(footerLine(p))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders the guide into a string.
func (g *Guide) String() string {
	var sb strings.Builder
	_ = g.Render(&sb)
	return sb.String()
}

func footerLine(p Page) string {
	left := "CukaiKu"
	right := fmt.Sprintf("Muka surat %d/%d", p.Number, p.Total)
	return left + strings.Repeat(" ", guideWidth-len(left)-len(right)) + right
}

// pager splits lines into fixed-height pages.
type pager struct {
	size  int
	pages [][]string
}

func (p *pager) cur() []string {
	if len(p.pages) == 0 {
		p.pages = append(p.pages, nil)
	}
	return p.pages[len(p.pages)-1]
}

func (p *pager) room() int {
	return p.size - len(p.cur())
}

func (p *pager) newPage() {
	p.pages = append(p.pages, nil)
}

func (p *pager) add(lines ...string) {
	for _, l := range lines {
		if p.room() == 0 {
			p.newPage()
		}
		cur := p.cur()
		p.pages[len(p.pages)-1] = append(cur, l)
	}
}
