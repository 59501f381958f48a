/*
compute.go - The ComputeResult assembler

PURPOSE:
  Orchestrates the relief engine, the bracket engine, the dividend
  carve-out and the rebate engine into one immutable result.

COMPUTATION ORDER:
  1. Reliefs and income aggregates
  2. chargeable      = max(0, incomeAfterDeduction - totalRelief)
  3. taxBeforeRebate = brackets(chargeable)       (Form M: flat rate)
  4. dividendTax     = dividend x flat rate
  5. taxWithDividend = taxBeforeRebate + dividendTax
  6. rebates         = zakat + self + spouse
  7. finalTax        = max(0, taxWithDividend - rebates)
  8. taxSaved        = brackets(incomeAfterDeduction - individual) - finalTax

  Rebates reduce tax payable, never chargeable income. taxSaved is an
  advisory counterfactual and reuses the same bracket engine as step 3.

CONCURRENCY:
  A Calculator holds only immutable schedule data. Compute may be called
  from any number of goroutines.

USAGE:
  calc, err := engine.NewCalculator(schedule)
  if err != nil {
      log.Fatal(err) // authoring error in the schedule
  }
  result := calc.Compute(answers)

SEE ALSO:
  - reliefs.go, rebates.go, brackets.go, formfields.go
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// Calculator computes results for one validated schedule.
type Calculator struct {
	schedule *Schedule
	brackets *BracketTax
	rules    []ReliefRule
	missed   []MissedRule
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithRules replaces the relief table.
func WithRules(rules []ReliefRule) Option {
	return func(c *Calculator) { c.rules = rules }
}

// WithMissedRules replaces the suggestion table.
func WithMissedRules(rules []MissedRule) Option {
	return func(c *Calculator) { c.missed = rules }
}

// NewCalculator validates the schedule and the rule tables against it.
func NewCalculator(s *Schedule, opts ...Option) (*Calculator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Calculator{
		schedule: s,
		brackets: NewBracketTax(s.Brackets),
		rules:    ReliefTable,
		missed:   MissedTable,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := checkRules(s, c.rules); err != nil {
		return nil, err
	}
	for _, m := range c.missed {
		if _, ok := s.Limits.Get(m.Limit); !ok {
			return nil, &MissingLimitError{Year: s.Year, Limit: m.Limit, Ref: "missed " + m.Ref}
		}
	}
	return c, nil
}

// MustCalculator is NewCalculator that panics on an invalid schedule.
func MustCalculator(s *Schedule, opts ...Option) *Calculator {
	c, err := NewCalculator(s, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Schedule returns the schedule the calculator runs on.
func (c *Calculator) Schedule() *Schedule {
	return c.schedule
}

// Year returns the assessment year.
func (c *Calculator) Year() int {
	return c.schedule.Year
}

// Tax exposes the bracket engine.
func (c *Calculator) Tax(chargeable decimal.Decimal) decimal.Decimal {
	return c.brackets.Tax(chargeable)
}

// Breakdown exposes the per-band slices.
func (c *Calculator) Breakdown(chargeable decimal.Decimal) []BandSlice {
	return c.brackets.Breakdown(chargeable)
}

// Compute produces the result for one answers snapshot. It never fails.
func (c *Calculator) Compute(a Answers) *ComputeResult {
	s := c.schedule
	form := ParseFormType(a["formType"])
	rel := c.evaluateReliefs(a, form)

	r := &ComputeResult{
		Year:                      s.Year,
		FormType:                  form,
		Reliefs:                   rel.Reliefs,
		Missed:                    rel.Missed,
		TotalIncome:               rel.TotalIncome,
		TotalIncomeAfterDeduction: rel.TotalIncomeAfterDeduction,
		Donation:                  rel.Donation,
		TotalRelief:               rel.TotalRelief,
		Dividend:                  rel.Dividend,
	}
	r.ChargeableIncome = floorZero(rel.TotalIncomeAfterDeduction.Sub(rel.TotalRelief))

	if form == FormM {
		r.TaxBeforeRebate = r.ChargeableIncome.Mul(s.NonResidentRate).Div(hundred)
	} else {
		r.Brackets = c.brackets.Breakdown(r.ChargeableIncome)
		r.TaxBeforeRebate = c.brackets.Tax(r.ChargeableIncome)
	}

	r.DividendTax = r.Dividend.Mul(s.Limits.Value(LimitDividendFlatRate))
	r.TaxWithDividend = r.TaxBeforeRebate.Add(r.DividendTax)

	zakat := a.Amount("zakatAmount")
	var rb Rebates
	if form == FormM {
		rb = Rebates{Zakat: zakat, Total: zakat}
	} else {
		spouseHasIncome := !a.Is("spouseWorking", no)
		rb = ComputeRebates(s.Rebate, r.ChargeableIncome, zakat, a["maritalStatus"], spouseHasIncome)
	}
	r.Zakat, r.SelfRebate, r.SpouseRebate, r.TotalRebate = rb.Zakat, rb.Self, rb.Spouse, rb.Total
	r.FinalTax = floorZero(r.TaxWithDividend.Sub(r.TotalRebate))

	baseline := floorZero(rel.TotalIncomeAfterDeduction.Sub(s.Limits.Value(LimitIndividual)))
	r.TaxSaved = c.brackets.Tax(baseline).Sub(r.FinalTax)

	fields := rel.Fields
	projectSummary(&fields, s, r)
	r.FormFields = fields.Fields()
	return r
}
