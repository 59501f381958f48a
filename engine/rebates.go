package engine

import (
	"github.com/shopspring/decimal"
)

// Rebates are post-tax credits subtracted from tax payable.
type Rebates struct {
	Zakat  decimal.Decimal
	Self   decimal.Decimal
	Spouse decimal.Decimal
	Total  decimal.Decimal
}

// ComputeRebates stacks zakat, the self rebate and the spouse rebate.
// Zakat is a declared direct credit and is not capped.
func ComputeRebates(cfg RebateConfig, chargeable, zakat decimal.Decimal, maritalStatus string, spouseHasIncome bool) Rebates {
	r := Rebates{Zakat: floorZero(zakat)}
	if chargeable.LessThanOrEqual(cfg.Threshold) {
		r.Self = cfg.Amount
		if maritalStatus == "married" && !spouseHasIncome {
			r.Spouse = cfg.Amount
		}
	}
	r.Total = sum(r.Zakat, r.Self, r.Spouse)
	return r
}
