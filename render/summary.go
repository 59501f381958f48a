package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/cukaiku/tax-engine/engine"
)

// tableFormatter prints the terminal summary.
type tableFormatter struct{}

func (tableFormatter) Format() Format { return FormatTable }

func (tableFormatter) Render(w io.Writer, rep *Report) error {
	_, err := io.WriteString(w, Summary(rep))
	return err
}

// Summary renders the terminal summary: one table per form section, the
// headline figures and the top unclaimed reliefs.
func Summary(rep *Report) string {
	r := rep.Result
	s := rep.Settlement
	var sb strings.Builder

	fmt.Fprintf(&sb, "━━━ Form %s · YA %d ━━━\n", r.FormType, r.Year)

	fields := s.FormFields(r)
	for _, sec := range engine.SectionOrder {
		t := NewTable("Ref", "Item", "Amount (RM)").SetAlign(2, AlignRight)
		for _, f := range fields {
			if f.Section != sec {
				continue
			}
			if f.Bold {
				t.AddBoldRow(f.Ref, f.Label, Amount(f.Value))
			} else {
				t.AddRow(f.Ref, f.Label, Amount(f.Value))
			}
		}
		if t.Len() == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n▸ %s\n", SectionNames[sec])
		sb.WriteString(t.String())
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Tax payable:     %s\n", RM(r.FinalTax))
	fmt.Fprintf(&sb, "Effective rate:  %s\n", Percent(r.EffectiveRate()))
	if r.TaxSaved.IsPositive() {
		fmt.Fprintf(&sb, "Tax saved:       %s\n", RM(r.TaxSaved))
	}
	if s.HasPCB() {
		if s.Refund {
			fmt.Fprintf(&sb, "Refund:          %s\n", RM(s.RefundAmount()))
		} else {
			fmt.Fprintf(&sb, "Balance payable: %s\n", RM(s.BalanceDue))
		}
	}

	if len(rep.TopMissed) > 0 {
		sb.WriteString("\nUnclaimed reliefs:\n")
		for _, m := range rep.TopMissed {
			fmt.Fprintf(&sb, "  • %s: up to %s\n", m.Name, RM(m.Potential))
			if m.Tip != "" {
				fmt.Fprintf(&sb, "    %s\n", m.Tip)
			}
		}
	}
	return sb.String()
}
