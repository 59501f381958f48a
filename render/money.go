/*
Package render turns a ComputeResult into documents a taxpayer reads.

PURPOSE:
  Every renderer works from the same FormField list the engine emits, so a
  figure shown in the terminal, the form guide and the email is always the
  same figure. Renderers never compute tax; they format.

FORMATS:
  json   Machine-readable result plus settlement
  table  Terminal summary with a section B to H breakdown
  guide  Paginated Borang BE / B / M field guide in Bahasa Malaysia

SEE ALSO:
  - labels.go: English to BM label mapping
  - guide.go: Form guide pagination
  - email.go: Localised summary email
*/
package render

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var hundred = decimal.NewFromInt(100)

// Amount formats d with thousands separators and exactly two decimals,
// keeping the sign: -1234.5 is "-1,234.50".
func Amount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Mul(hundred).IntPart()
	return sign + printer.Sprintf("%d", whole) + fmt.Sprintf(".%02d", cents)
}

// RM formats the magnitude of d as ringgit: "RM 1,234.56". The sign is
// dropped; callers say "refund" or "payable" in words.
func RM(d decimal.Decimal) string {
	return "RM " + Amount(d.Abs())
}

// Percent formats a ratio already scaled to 0..100 with one decimal.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
