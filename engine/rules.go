/*
rules.go - Declarative relief rule table

PURPOSE:
  Every relief category is one row: which answer opts in, which answer
  carries the claimed amount or count, which named limit caps it, and the
  form reference it lands on. A single evaluator walks the table, so a cap
  can only ever be written in one place.

RULE KINDS:
  KindFixed:    Grants the full limit when the opt-in (and When) holds
  KindAmount:   min(amount, limit), gated by the opt-in when one is set
  KindPerUnit:  count x limit; Bound caps the count by another count answer
  KindCombined: each part clamped to its own limit, the sum clamped again
  KindTiered:   limit chosen from the schedule's housing tiers

EXAMPLE:
  {Ref: "D3", Name: "Education fees (self)", Kind: KindAmount,
   Trigger: "selfEducation", Field: "educationAmount", Limit: LimitEducation}

SEE ALSO:
  - reliefs.go: Runs the evaluator
  - missed.go: Advisory table for unclaimed reliefs
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// RULE TYPES
// =============================================================================

// RuleKind selects how a rule turns answers into a relief amount.
type RuleKind string

const (
	KindFixed    RuleKind = "fixed"
	KindAmount   RuleKind = "amount"
	KindPerUnit  RuleKind = "per_unit"
	KindCombined RuleKind = "combined"
	KindTiered   RuleKind = "tiered"
)

// ReliefRule is one row of the relief table.
type ReliefRule struct {
	Ref     string
	Name    string
	Kind    RuleKind
	Trigger string // opt-in answer that must be "yes"; empty means ungated
	Field   string // amount or count answer
	Limit   string // named cap; per-unit cap for KindPerUnit

	// When is an extra precondition on answers other than the opt-in.
	When func(Answers) bool

	// KindPerUnit: count answer that bounds Field's count.
	Bound string

	// KindCombined: parts, each clamped to the matching PartLimits entry.
	Parts      []string
	PartLimits []string

	// KindTiered: answer selecting the tier.
	TierField string
}

// limits returns every limit name the rule reads.
func (r ReliefRule) limits() []string {
	var names []string
	if r.Limit != "" && r.Kind != KindTiered {
		names = append(names, r.Limit)
	}
	return append(names, r.PartLimits...)
}

// =============================================================================
// RELIEF TABLE
// =============================================================================

func married(a Answers) bool {
	return a.Is("maritalStatus", "married")
}

// ReliefTable lists the reliefs in form order.
var ReliefTable = []ReliefRule{
	{Ref: "D1", Name: "Individual & dependents", Kind: KindFixed, Limit: LimitIndividual},
	{Ref: "D2", Name: "Spouse (no income / joint assessment)", Kind: KindFixed, Limit: LimitSpouse,
		When: func(a Answers) bool { return married(a) && a.Is("spouseWorking", no) }},
	{Ref: "D2", Name: "Alimony (formal agreement)", Kind: KindFixed, Limit: LimitSpouse,
		When: func(a Answers) bool { return a.Is("maritalStatus", "divorced") }},
	{Ref: "D2a", Name: "Disabled individual (self)", Kind: KindFixed, Trigger: "isDisabled", Limit: LimitDisabledSelf},
	{Ref: "D2b", Name: "Disabled spouse", Kind: KindFixed, Trigger: "spouseDisabled", Limit: LimitDisabledSpouse},

	{Ref: "D3", Name: "Education fees (self)", Kind: KindAmount,
		Trigger: "selfEducation", Field: "educationAmount", Limit: LimitEducation},
	{Ref: "D4", Name: "Parents medical / carer expenses", Kind: KindAmount,
		Trigger: "parentsMedical", Field: "parentsMedicalAmount", Limit: LimitParentsMedical},
	{Ref: "D5", Name: "Medical expenses (self / spouse / child)", Kind: KindAmount,
		Trigger: "medicalSelf", Field: "medicalSelfAmount", Limit: LimitMedicalSelf},
	{Ref: "D5a", Name: "Learning disability treatment (child ≤18)", Kind: KindAmount,
		Trigger: "learningDisability", Field: "learningDisabilityAmount", Limit: LimitLearningDisability},
	{Ref: "D6", Name: "Disabled equipment", Kind: KindAmount,
		Trigger: "disabledEquipment", Field: "disabledEquipmentAmount", Limit: LimitDisabledEquipment},
	{Ref: "D7", Name: "Lifestyle (books, PC, internet, sports, gym)", Kind: KindAmount,
		Field: "lifestyleSpending", Limit: LimitLifestyle},
	{Ref: "D8", Name: "Additional sports activity", Kind: KindAmount,
		Trigger: "additionalSports", Field: "additionalSportsAmount", Limit: LimitAdditionalSports},

	{Ref: "D9", Name: "Children under 18", Kind: KindPerUnit, Field: "childrenUnder18", Limit: LimitChildUnder18},
	{Ref: "D10a", Name: "Children higher edu", Kind: KindPerUnit, Field: "childrenHigherEdu", Limit: LimitChildHigherEdu},
	{Ref: "D10b", Name: "Children pre-U", Kind: KindPerUnit, Field: "childrenPreU", Limit: LimitChildPreU},
	{Ref: "D11", Name: "Disabled children", Kind: KindPerUnit, Field: "disabledChildren", Limit: LimitDisabledChild},
	{Ref: "D12", Name: "Disabled children in higher edu", Kind: KindPerUnit,
		Field: "disabledChildInEdu", Bound: "disabledChildren", Limit: LimitDisabledChildHigherEdu},

	{Ref: "D13", Name: "Breastfeeding equipment", Kind: KindAmount,
		Trigger: "hasBreastfeedingChild", Field: "breastfeedingAmount", Limit: LimitBreastfeeding},
	{Ref: "D14", Name: "Childcare / kindergarten", Kind: KindAmount,
		Trigger: "childcareFees", Field: "childcareAmount", Limit: LimitChildcare},
	{Ref: "D15", Name: "SSPN net deposit", Kind: KindAmount,
		Trigger: "sspnDeposit", Field: "sspnAmount", Limit: LimitSSPN},
	{Ref: "D16", Name: "EV charging facility / compost machine", Kind: KindAmount,
		Trigger: "hasEV", Field: "evAmount", Limit: LimitEVCharging},
	{Ref: "D17", Name: "EPF & life insurance / takaful", Kind: KindCombined,
		Parts: []string{"epfAmount", "lifeInsurance"}, PartLimits: []string{LimitEPF, LimitLifeInsurance},
		Limit: LimitEPFLifeCombined},
	{Ref: "D18", Name: "Education & medical insurance", Kind: KindAmount,
		Field: "eduMedInsurance", Limit: LimitEduMedInsurance},
	{Ref: "D19", Name: "SOCSO / EIS contributions", Kind: KindAmount,
		Field: "socso", Limit: LimitSOCSO},
	{Ref: "D20", Name: "Private Retirement Scheme (PRS)", Kind: KindAmount,
		Trigger: "prsContribution", Field: "prsAmount", Limit: LimitPRS},
	{Ref: "D21", Name: "Housing loan interest (first home)", Kind: KindTiered,
		Trigger: "firstHomeLoan", Field: "housingInterest", TierField: "housePrice"},
}

// =============================================================================
// EVALUATOR
// =============================================================================

var labelPrinter = message.NewPrinter(language.English)

// checkRules verifies every limit a rule needs is present in the schedule.
func checkRules(s *Schedule, rules []ReliefRule) error {
	for _, r := range rules {
		switch r.Kind {
		case KindFixed, KindAmount, KindPerUnit, KindCombined, KindTiered:
		default:
			return &ScheduleError{Year: s.Year, Field: "rules." + r.Ref, Reason: fmt.Sprintf("unknown kind %q", r.Kind)}
		}
		for _, name := range r.limits() {
			if _, ok := s.Limits.Get(name); !ok {
				return &MissingLimitError{Year: s.Year, Limit: name, Ref: r.Ref}
			}
		}
		if len(r.Parts) != len(r.PartLimits) {
			return &ScheduleError{Year: s.Year, Field: "rules." + r.Ref, Reason: "parts and part limits differ in length"}
		}
		if r.Kind == KindTiered && len(s.HousingTiers) == 0 {
			return &ScheduleError{Year: s.Year, Field: "housing_tiers", Reason: "required by rule " + r.Ref}
		}
	}
	return nil
}

// evaluate returns the clamped relief amount and its display label.
func (r ReliefRule) evaluate(s *Schedule, a Answers) (decimal.Decimal, string) {
	if r.Trigger != "" && !a.Yes(r.Trigger) {
		return decimal.Zero, r.Name
	}
	if r.When != nil && !r.When(a) {
		return decimal.Zero, r.Name
	}
	limit := s.Limits.Value(r.Limit)

	switch r.Kind {
	case KindFixed:
		return limit, r.Name

	case KindAmount:
		return clamp(a.Amount(r.Field), limit), r.Name

	case KindPerUnit:
		n := a.Count(r.Field)
		if r.Bound != "" && n > a.Count(r.Bound) {
			n = a.Count(r.Bound)
		}
		if n == 0 {
			return decimal.Zero, r.Name
		}
		label := labelPrinter.Sprintf("%s (%d × RM%d)", r.Name, n, limit.IntPart())
		return limit.Mul(decimal.NewFromInt(int64(n))), label

	case KindCombined:
		total := decimal.Zero
		for i, field := range r.Parts {
			total = total.Add(clamp(a.Amount(field), s.Limits.Value(r.PartLimits[i])))
		}
		return clamp(total, limit), r.Name

	case KindTiered:
		code := a[r.TierField]
		if code == "" {
			code = s.DefaultHousing
		}
		tier, ok := s.HousingTier(code)
		if !ok || !tier.Eligible {
			return decimal.Zero, r.Name
		}
		return clamp(a.Amount(r.Field), tier.Cap), r.Name
	}
	panic(fmt.Sprintf("engine: unknown rule kind %q", r.Kind))
}
