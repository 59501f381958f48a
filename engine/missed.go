package engine

import (
	"github.com/shopspring/decimal"
)

// MissedMode selects how the unclaimed potential of a relief is measured.
type MissedMode string

const (
	// MissedOptOut suggests the full limit when the opt-in is not "yes".
	MissedOptOut MissedMode = "opt_out"
	// MissedHeadroom suggests limit minus the amount already claimed.
	MissedHeadroom MissedMode = "headroom"
)

// MissedRule is one advisory suggestion. Tips are static text and never
// influence any tax figure.
type MissedRule struct {
	Ref      string // relief the suggestion relates to
	Name     string
	Tip      string
	Mode     MissedMode
	Trigger  string // MissedOptOut: the relief's opt-in
	Requires string // answer that must be "yes" for the suggestion to apply
	Limit    string
}

// MissedTable lists the categories that produce suggestions.
var MissedTable = []MissedRule{
	{Ref: "D3", Name: "Education fees", Mode: MissedOptOut, Trigger: "selfEducation", Limit: LimitEducation,
		Tip: "Consider upskilling courses (RM2,000 sub-limit) or a professional qualification. Up to RM7,000."},
	{Ref: "D7", Name: "Lifestyle relief", Mode: MissedHeadroom, Limit: LimitLifestyle,
		Tip: "Books, laptops, phones, internet bills, gym memberships all count. Up to RM2,500."},
	{Ref: "D15", Name: "SSPN deposit", Mode: MissedOptOut, Trigger: "sspnDeposit", Requires: "hasChildren", Limit: LimitSSPN,
		Tip: "Open SSPN and deposit up to RM8,000 — save for your children's education AND reduce tax."},
	{Ref: "D17", Name: "EPF & life insurance", Mode: MissedHeadroom, Limit: LimitEPFLifeCombined,
		Tip: "Consider voluntary EPF top-up or increasing life insurance coverage."},
	{Ref: "D18", Name: "Medical / education insurance", Mode: MissedHeadroom, Limit: LimitEduMedInsurance,
		Tip: "Medical and education insurance premiums are claimable up to RM4,000."},
	{Ref: "D20", Name: "PRS contribution", Mode: MissedOptOut, Trigger: "prsContribution", Limit: LimitPRS,
		Tip: "PRS gives up to RM3,000 relief AND builds retirement savings. Open an account before December!"},
}

// missedOpportunities evaluates the table against answers and the amounts
// already claimed, keyed by relief ref.
func missedOpportunities(s *Schedule, rules []MissedRule, a Answers, claimed map[string]decimal.Decimal) []MissedOpportunity {
	var out []MissedOpportunity
	for _, r := range rules {
		if r.Requires != "" && !a.Yes(r.Requires) {
			continue
		}
		limit := s.Limits.Value(r.Limit)
		var potential decimal.Decimal
		switch r.Mode {
		case MissedOptOut:
			if a.Yes(r.Trigger) {
				continue
			}
			potential = limit
		case MissedHeadroom:
			potential = limit.Sub(claimed[r.Ref])
		}
		if !potential.IsPositive() {
			continue
		}
		out = append(out, MissedOpportunity{Name: r.Name, Potential: potential, Tip: r.Tip})
	}
	return out
}
