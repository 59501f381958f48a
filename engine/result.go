package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Relief is a claimed, clamped deduction.
type Relief struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Ref    string          `json:"ref"`
}

// MissedOpportunity is advisory only.
type MissedOpportunity struct {
	Name      string          `json:"name"`
	Potential decimal.Decimal `json:"potential"`
	Tip       string          `json:"tip"`
}

// Section is an official form section code.
type Section string

const (
	SectionIncome      Section = "B"
	SectionAggregate   Section = "C"
	SectionReliefs     Section = "D"
	SectionComputation Section = "E"
	SectionRebates     Section = "F"
	SectionPayments    Section = "H"
)

// SectionOrder is the order in which renderers lay out sections.
var SectionOrder = []Section{
	SectionIncome, SectionAggregate, SectionReliefs,
	SectionComputation, SectionRebates, SectionPayments,
}

// FormField is one line of the official form.
type FormField struct {
	Section   Section         `json:"section"`
	Ref       string          `json:"ref"`
	Label     string          `json:"label"`
	Value     decimal.Decimal `json:"value"`
	Highlight bool            `json:"highlight"`
	Bold      bool            `json:"bold,omitempty"`
}

// FormType is the return the taxpayer files.
type FormType string

const (
	FormBE FormType = "BE" // resident, no business income
	FormB  FormType = "B"  // resident with business income
	FormM  FormType = "M"  // non-resident
)

// ParseFormType maps an answer to a form type; anything unknown is BE.
func ParseFormType(s string) FormType {
	switch FormType(s) {
	case FormB:
		return FormB
	case FormM:
		return FormM
	}
	return FormBE
}

// ComputeResult is the complete, immutable output for one answers snapshot.
type ComputeResult struct {
	Year       int                 `json:"year"`
	FormType   FormType            `json:"form_type"`
	Reliefs    []Relief            `json:"reliefs"`
	Missed     []MissedOpportunity `json:"missed"`
	FormFields []FormField         `json:"form_fields"`
	Brackets   []BandSlice         `json:"-"`

	TotalIncome               decimal.Decimal `json:"total_income"`
	TotalIncomeAfterDeduction decimal.Decimal `json:"total_income_after_deduction"`
	Donation                  decimal.Decimal `json:"donation"`
	TotalRelief               decimal.Decimal `json:"total_relief"`
	ChargeableIncome          decimal.Decimal `json:"chargeable_income"`
	TaxBeforeRebate           decimal.Decimal `json:"tax_before_rebate"`
	Dividend                  decimal.Decimal `json:"dividend"`
	DividendTax               decimal.Decimal `json:"dividend_tax"`
	TaxWithDividend           decimal.Decimal `json:"tax_with_dividend"`
	Zakat                     decimal.Decimal `json:"zakat"`
	SelfRebate                decimal.Decimal `json:"self_rebate"`
	SpouseRebate              decimal.Decimal `json:"spouse_rebate"`
	TotalRebate               decimal.Decimal `json:"total_rebate"`
	FinalTax                  decimal.Decimal `json:"final_tax"`
	TaxSaved                  decimal.Decimal `json:"tax_saved"`
}

// FieldsIn returns the form fields of one section in emission order.
func (r *ComputeResult) FieldsIn(section Section) []FormField {
	var out []FormField
	for _, f := range r.FormFields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// Field returns the first field with the given ref.
func (r *ComputeResult) Field(ref string) (FormField, bool) {
	for _, f := range r.FormFields {
		if f.Ref == ref {
			return f, true
		}
	}
	return FormField{}, false
}

// Relief returns the claimed relief with the given ref.
func (r *ComputeResult) Relief(ref string) (Relief, bool) {
	for _, rl := range r.Reliefs {
		if rl.Ref == ref {
			return rl, true
		}
	}
	return Relief{}, false
}

// EffectiveRate returns final tax as a percentage of total income.
func (r *ComputeResult) EffectiveRate() decimal.Decimal {
	if !r.TotalIncome.IsPositive() {
		return decimal.Zero
	}
	return r.FinalTax.Div(r.TotalIncome).Mul(hundred)
}

// TopMissed returns at most n suggestions ordered by potential, largest
// first. Ties keep emission order.
func (r *ComputeResult) TopMissed(n int) []MissedOpportunity {
	out := make([]MissedOpportunity, len(r.Missed))
	copy(out, r.Missed)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Potential.GreaterThan(out[j].Potential)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
