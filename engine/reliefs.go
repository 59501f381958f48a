/*
reliefs.go - Income aggregation, deductions and relief evaluation

PURPOSE:
  Derives every income component from its opt-in, applies the donation
  deduction, runs the relief rule table and collects advisory suggestions.

DIVIDEND ISOLATION:
  The dividend figure is the portion above the exemption threshold and is
  taxed at a flat rate by the assembler. It is never part of Total(), the
  base for the progressive brackets. Merging the two would tax the same
  ringgit twice at different rates.

NON-RESIDENTS:
  Form M taxpayers get no personal reliefs and no suggestions.

SEE ALSO:
  - rules.go: The relief table and its evaluator
  - missed.go: The suggestion table
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// Income is the set of statutory income components.
type Income struct {
	Employment decimal.Decimal
	Business   decimal.Decimal // Form B only
	RentalNet  decimal.Decimal
	Interest   decimal.Decimal
	Royalty    decimal.Decimal
	Pension    decimal.Decimal
	Other      decimal.Decimal
	Dividend   decimal.Decimal // excess above the exemption, flat-rate taxed
}

// OtherStatutory is interest, royalty, pension and other income (C3).
func (in Income) OtherStatutory() decimal.Decimal {
	return sum(in.Interest, in.Royalty, in.Pension, in.Other)
}

// Total is the progressive bracket base. Dividend is excluded.
func (in Income) Total() decimal.Decimal {
	return sum(in.Employment, in.Business, in.RentalNet, in.OtherStatutory())
}

// ReliefOutcome is the output of the relief engine.
type ReliefOutcome struct {
	Income                    Income
	TotalIncome               decimal.Decimal
	Donation                  decimal.Decimal
	TotalIncomeAfterDeduction decimal.Decimal
	Dividend                  decimal.Decimal
	Reliefs                   []Relief
	TotalRelief               decimal.Decimal
	Missed                    []MissedOpportunity
	Fields                    FieldSet
}

// gated returns the amount when the opt-in is "yes", otherwise zero.
func gated(a Answers, trigger, field string) decimal.Decimal {
	if !a.Yes(trigger) {
		return decimal.Zero
	}
	return a.Amount(field)
}

// deriveIncome reads every income component from answers.
func deriveIncome(a Answers, form FormType) Income {
	in := Income{
		Employment: a.Amount("employmentIncome"),
		Interest:   gated(a, "hasInterestIncome", "interestIncome"),
		Royalty:    gated(a, "hasRoyaltyIncome", "royaltyIncome"),
		Pension:    gated(a, "hasPensionIncome", "pensionIncome"),
		Other:      gated(a, "hasOtherIncome", "otherIncome"),
		Dividend:   gated(a, "hasDividendIncome", "dividendIncome"),
	}
	if a.Yes("hasRentalIncome") {
		in.RentalNet = floorZero(a.Amount("rentalGross").Sub(a.Amount("rentalExpenses")))
	}
	if form == FormB {
		in.Business = a.Amount("businessAdjustedIncome")
	}
	return in
}

// evaluateReliefs runs income aggregation, donations, the relief table and
// the suggestion table.
func (c *Calculator) evaluateReliefs(a Answers, form FormType) ReliefOutcome {
	s := c.schedule
	out := ReliefOutcome{Income: deriveIncome(a, form)}
	out.TotalIncome = out.Income.Total()
	out.Dividend = out.Income.Dividend

	if a.Yes("hasDonations") {
		ceiling := out.TotalIncome.Mul(s.Limits.Value(LimitDonationPercent))
		out.Donation = clamp(a.Amount("donationAmount"), ceiling)
	}
	out.TotalIncomeAfterDeduction = floorZero(out.TotalIncome.Sub(out.Donation))

	projectIncome(&out.Fields, s, out.Income, form, out.Donation)

	if form == FormM {
		out.TotalRelief = decimal.Zero
		return out
	}

	claimed := make(map[string]decimal.Decimal, len(c.rules))
	for _, rule := range c.rules {
		amount, label := rule.evaluate(s, a)
		claimed[rule.Ref] = claimed[rule.Ref].Add(amount)
		if !amount.IsPositive() {
			continue
		}
		r := Relief{Name: label, Amount: amount, Ref: rule.Ref}
		out.Reliefs = append(out.Reliefs, r)
		out.TotalRelief = out.TotalRelief.Add(amount)
		projectRelief(&out.Fields, r)
	}

	out.Missed = missedOpportunities(s, c.missed, a, claimed)
	return out
}
