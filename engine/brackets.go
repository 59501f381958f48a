package engine

import (
	"github.com/shopspring/decimal"
)

// BandSlice is the portion of chargeable income taxed in one bracket.
type BandSlice struct {
	Bracket Bracket
	Taxable decimal.Decimal
	Tax     decimal.Decimal
}

// BracketTax computes progressive tax over a validated bracket table.
type BracketTax struct {
	brackets []Bracket
}

// NewBracketTax wraps a bracket table. The table must already be validated.
func NewBracketTax(brackets []Bracket) *BracketTax {
	cp := make([]Bracket, len(brackets))
	copy(cp, brackets)
	return &BracketTax{brackets: cp}
}

// Tax returns the progressive tax on chargeable income. Negative input is
// treated as zero.
func (bt *BracketTax) Tax(chargeable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, s := range bt.Breakdown(chargeable) {
		tax = tax.Add(s.Tax)
	}
	return tax
}

// Breakdown returns the non-empty band slices in ascending order.
// A boundary amount falls in the next band, so no ringgit is taxed twice.
func (bt *BracketTax) Breakdown(chargeable decimal.Decimal) []BandSlice {
	remaining := floorZero(chargeable)
	var slices []BandSlice
	for _, b := range bt.brackets {
		if !remaining.IsPositive() {
			break
		}
		taxable := decimal.Min(remaining, b.Size(remaining))
		slices = append(slices, BandSlice{
			Bracket: b,
			Taxable: taxable,
			Tax:     taxable.Mul(b.Rate).Div(hundred),
		})
		remaining = remaining.Sub(taxable)
	}
	return slices
}
