/*
formfields.go - Projection of figures onto the official form layout

PURPOSE:
  Every figure the engine produces is folded into FormField records keyed
  by the form's section and reference codes. The form guide, the email and
  the on-screen summary all render from this one list, so they can never
  disagree about which line a number belongs on.

SECTIONS:
  B  Statutory income          C1, C2, C3, C3a, C6
  C  Aggregate and deductions  C4, C7
  D  Reliefs                   D1 ... D21, D_TOTAL
  E  Tax computation           E1, E2, E2a, E_FINAL
  F  Rebates                   F1, F2, F3
  H  PCB and balance           produced by the caller (filing.Settle)

SEE ALSO:
  - reliefs.go: Calls the income and relief projections
  - compute.go: Calls the summary projection
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FieldSet accumulates form fields in emission order.
type FieldSet struct {
	fields []FormField
}

// Add appends a field.
func (fs *FieldSet) Add(section Section, ref, label string, value decimal.Decimal, highlight bool) {
	fs.fields = append(fs.fields, FormField{
		Section:   section,
		Ref:       ref,
		Label:     label,
		Value:     value,
		Highlight: highlight,
	})
}

// AddBold appends a highlighted total line.
func (fs *FieldSet) AddBold(section Section, ref, label string, value decimal.Decimal) {
	fs.fields = append(fs.fields, FormField{
		Section:   section,
		Ref:       ref,
		Label:     label,
		Value:     value,
		Highlight: true,
		Bold:      true,
	})
}

// AddIfPositive appends a highlighted field only when value > 0.
func (fs *FieldSet) AddIfPositive(section Section, ref, label string, value decimal.Decimal) {
	if value.IsPositive() {
		fs.Add(section, ref, label, value, true)
	}
}

// Fields returns the accumulated fields.
func (fs *FieldSet) Fields() []FormField {
	out := make([]FormField, len(fs.fields))
	copy(out, fs.fields)
	return out
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// projectIncome emits sections B and C.
func projectIncome(fs *FieldSet, s *Schedule, in Income, form FormType, donation decimal.Decimal) {
	fs.Add(SectionIncome, "C1", "Statutory employment income", in.Employment, in.Employment.IsPositive())
	if form == FormB {
		fs.Add(SectionIncome, "C6", "Statutory business income (adjusted)", in.Business, in.Business.IsPositive())
	}
	fs.Add(SectionIncome, "C2", "Statutory rental income (net)", in.RentalNet, in.RentalNet.IsPositive())
	other := in.OtherStatutory()
	fs.Add(SectionIncome, "C3", "Interest, discounts, royalties, premiums, pensions, annuities, other", other, other.IsPositive())
	if in.Dividend.IsPositive() {
		fs.Add(SectionIncome, "C3a", dividendLabel(s), in.Dividend, true)
	}
	fs.Add(SectionAggregate, "C4", "Aggregate income", in.Total().Add(in.Dividend), true)

	pct := s.Limits.Value(LimitDonationPercent).Mul(hundred).Round(0)
	fs.AddIfPositive(SectionAggregate, "C7", fmt.Sprintf("Approved donations (max %s%% of aggregate income)", pct), donation)
}

// projectRelief emits one section D line.
func projectRelief(fs *FieldSet, r Relief) {
	fs.Add(SectionReliefs, r.Ref, r.Name, r.Amount, true)
}

// projectSummary emits the totals, section E and section F.
func projectSummary(fs *FieldSet, s *Schedule, r *ComputeResult) {
	fs.AddBold(SectionReliefs, "D_TOTAL", "Total tax reliefs", r.TotalRelief)
	fs.AddBold(SectionComputation, "E1", "Chargeable income", r.ChargeableIncome)
	if r.FormType == FormM {
		fs.Add(SectionComputation, "E2", fmt.Sprintf("Tax payable (%s%% flat rate — non-resident)", s.NonResidentRate), r.TaxBeforeRebate, true)
	} else {
		fs.Add(SectionComputation, "E2", "Tax on chargeable income", r.TaxBeforeRebate, true)
	}
	rate := s.Limits.Value(LimitDividendFlatRate).Mul(hundred)
	fs.AddIfPositive(SectionComputation, "E2a", fmt.Sprintf("Tax on dividend income (%s%% flat)", rate), r.DividendTax)
	fs.AddIfPositive(SectionRebates, "F1", "Zakat / fitrah rebate", r.Zakat)
	fs.AddIfPositive(SectionRebates, "F2", fmt.Sprintf("Self rebate (chargeable income ≤ RM%s)", labelPrinter.Sprintf("%d", s.Rebate.Threshold.IntPart())), r.SelfRebate)
	fs.AddIfPositive(SectionRebates, "F3", "Spouse rebate", r.SpouseRebate)
	fs.AddBold(SectionComputation, "E_FINAL", "TAX PAYABLE", r.FinalTax)
}

func dividendLabel(s *Schedule) string {
	threshold := s.Limits.Value(LimitDividendExempt).Div(decimal.NewFromInt(1000)).Round(0)
	rate := s.Limits.Value(LimitDividendFlatRate).Mul(hundred)
	return fmt.Sprintf("Dividend income (above RM%sk — flat %s%% tax, verify with LHDN)", threshold, rate)
}
