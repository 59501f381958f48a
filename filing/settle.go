/*
Package filing holds the caller-side steps that follow a computation.

PURPOSE:
  The engine stops at tax payable. What the taxpayer still owes after the
  employer's monthly deductions (PCB), and which analytics checkpoints a
  questionnaire session has passed, depend on data outside the engine and
  are handled here.

SETTLEMENT:
  BalanceDue = FinalTax - PCB
  Refund     = PCB > 0 AND BalanceDue < 0

  Section H lines are emitted only when PCB was declared:
    H4  PCB deducted by employer
    H5  Balance payable to LHDN    (bold, when not a refund)
    H6  Refund from LHDN           (bold, absolute value, when a refund)

SEE ALSO:
  - checkpoint.go: Once-per-session checkpoint tracker
  - engine/formfields.go: Sections B to F
*/
package filing

import (
	"github.com/cukaiku/tax-engine/engine"
	"github.com/shopspring/decimal"
)

// Settlement is the PCB reconciliation of one result.
type Settlement struct {
	FinalTax   decimal.Decimal    `json:"final_tax"`
	PCB        decimal.Decimal    `json:"pcb"`
	BalanceDue decimal.Decimal    `json:"balance_due"`
	Refund     bool               `json:"refund"`
	Fields     []engine.FormField `json:"form_fields,omitempty"`
}

// Settle reconciles tax payable against PCB already withheld. A negative
// PCB is treated as zero.
func Settle(r *engine.ComputeResult, pcb decimal.Decimal) Settlement {
	if pcb.IsNegative() {
		pcb = decimal.Zero
	}
	s := Settlement{
		FinalTax:   r.FinalTax,
		PCB:        pcb,
		BalanceDue: r.FinalTax.Sub(pcb),
	}
	s.Refund = pcb.IsPositive() && s.BalanceDue.IsNegative()

	if !pcb.IsPositive() {
		return s
	}
	var fs engine.FieldSet
	fs.Add(engine.SectionPayments, "H4", "PCB deducted by employer", pcb, true)
	if s.Refund {
		fs.AddBold(engine.SectionPayments, "H6", "Refund from LHDN", s.BalanceDue.Abs())
	} else {
		fs.AddBold(engine.SectionPayments, "H5", "Balance payable to LHDN", s.BalanceDue)
	}
	s.Fields = fs.Fields()
	return s
}

// SettleAnswers reads PCB from the pcbAmount answer.
func SettleAnswers(r *engine.ComputeResult, a engine.Answers) Settlement {
	return Settle(r, a.Amount("pcbAmount"))
}

// HasPCB reports whether any PCB was declared.
func (s Settlement) HasPCB() bool {
	return s.PCB.IsPositive()
}

// Payable is the amount still owed, floored at zero.
func (s Settlement) Payable() decimal.Decimal {
	if s.BalanceDue.IsNegative() {
		return decimal.Zero
	}
	return s.BalanceDue
}

// RefundAmount is the amount LHDN returns, or zero.
func (s Settlement) RefundAmount() decimal.Decimal {
	if !s.Refund {
		return decimal.Zero
	}
	return s.BalanceDue.Abs()
}

// FormFields returns the result's fields followed by section H.
func (s Settlement) FormFields(r *engine.ComputeResult) []engine.FormField {
	out := make([]engine.FormField, 0, len(r.FormFields)+len(s.Fields))
	out = append(out, r.FormFields...)
	return append(out, s.Fields...)
}
