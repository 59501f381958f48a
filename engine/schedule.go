/*
schedule.go - Static configuration for one assessment year

PURPOSE:
  A Schedule is the versioned data the engine runs on: the progressive
  bracket table, the named relief caps, the rebate rule and the housing
  price tiers. Swapping the schedule is the only thing needed to move the
  engine to a new assessment year.

BRACKET INVARIANTS:
  - Ascending and contiguous: brackets[i+1].Min == brackets[i].Max
  - First bracket starts at 0
  - Only the last bracket is unbounded (Max not valid), and it must be
  - Band size = Max - Min; min is inclusive, max is exclusive

  These are checked by Validate. A schedule that fails validation is an
  authoring error and must stop the program before any tax is computed.

SEE ALSO:
  - factory/schedule.go: Loads schedules from YAML
  - brackets.go: Uses Brackets
  - rules.go: References Limits by name
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// Bracket is one progressive income band.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.NullDecimal // invalid = unbounded
	Rate decimal.Decimal     // percentage, e.g. 3 for 3%
}

// Unbounded reports whether the band has no upper bound.
func (b Bracket) Unbounded() bool {
	return !b.Max.Valid
}

// Size returns the band width. For the unbounded band it returns remaining.
func (b Bracket) Size(remaining decimal.Decimal) decimal.Decimal {
	if b.Unbounded() {
		return remaining
	}
	return b.Max.Decimal.Sub(b.Min)
}

// Limits holds named caps, percentages and thresholds.
type Limits map[string]decimal.Decimal

// Get returns the named limit and whether it exists.
func (l Limits) Get(name string) (decimal.Decimal, bool) {
	v, ok := l[name]
	return v, ok
}

// Value returns the named limit or zero.
func (l Limits) Value(name string) decimal.Decimal {
	return l[name]
}

// RebateConfig is the flat self/spouse rebate rule.
type RebateConfig struct {
	Amount    decimal.Decimal
	Threshold decimal.Decimal // chargeable income <= Threshold qualifies
}

// HousingTier maps a property price answer to its loan interest cap.
type HousingTier struct {
	Code     string
	Cap      decimal.Decimal
	Eligible bool
}

// Schedule is the complete configuration for one assessment year.
type Schedule struct {
	Year            int
	Brackets        []Bracket
	Limits          Limits
	Rebate          RebateConfig
	HousingTiers    []HousingTier
	DefaultHousing  string          // tier used when the price answer is absent
	NonResidentRate decimal.Decimal // percentage applied to Form M chargeable income
}

// Clone returns a deep copy, for callers that derive a variant schedule.
func (s *Schedule) Clone() *Schedule {
	cp := *s
	cp.Brackets = append([]Bracket(nil), s.Brackets...)
	cp.HousingTiers = append([]HousingTier(nil), s.HousingTiers...)
	cp.Limits = make(Limits, len(s.Limits))
	for k, v := range s.Limits {
		cp.Limits[k] = v
	}
	return &cp
}

// HousingTier returns the tier for code.
func (s *Schedule) HousingTier(code string) (HousingTier, bool) {
	for _, t := range s.HousingTiers {
		if t.Code == code {
			return t, true
		}
	}
	return HousingTier{}, false
}

// =============================================================================
// LIMIT NAMES
// =============================================================================

const (
	LimitIndividual             = "individual"
	LimitSpouse                 = "spouse"
	LimitDisabledSelf           = "disabled_self"
	LimitDisabledSpouse         = "disabled_spouse"
	LimitEducation              = "education"
	LimitParentsMedical         = "parents_medical"
	LimitMedicalSelf            = "medical_self"
	LimitLearningDisability     = "learning_disability"
	LimitDisabledEquipment      = "disabled_equipment"
	LimitLifestyle              = "lifestyle"
	LimitAdditionalSports       = "additional_sports"
	LimitChildUnder18           = "child_under_18"
	LimitChildHigherEdu         = "child_higher_edu"
	LimitChildPreU              = "child_pre_u"
	LimitDisabledChild          = "disabled_child"
	LimitDisabledChildHigherEdu = "disabled_child_higher_edu"
	LimitBreastfeeding          = "breastfeeding"
	LimitChildcare              = "childcare"
	LimitSSPN                   = "sspn"
	LimitEVCharging             = "ev_charging"
	LimitEPF                    = "epf"
	LimitLifeInsurance          = "life_insurance"
	LimitEPFLifeCombined        = "epf_life_combined"
	LimitEduMedInsurance        = "edu_med_insurance"
	LimitSOCSO                  = "socso"
	LimitPRS                    = "prs"
	LimitDonationPercent        = "donation_percent"
	LimitDividendFlatRate       = "dividend_flat_rate"
	LimitDividendExempt         = "dividend_exempt_threshold"
)

// requiredLimits are read directly by the assembler, outside the rule table.
var requiredLimits = []string{
	LimitIndividual,
	LimitEPF,
	LimitLifeInsurance,
	LimitEPFLifeCombined,
	LimitDonationPercent,
	LimitDividendFlatRate,
	LimitDividendExempt,
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the schedule's structural invariants.
func (s *Schedule) Validate() error {
	if len(s.Brackets) == 0 {
		return s.fail("brackets", "at least one bracket is required")
	}
	if !s.Brackets[0].Min.IsZero() {
		return s.fail("brackets[0].min", "first bracket must start at 0")
	}
	for i, b := range s.Brackets {
		field := fmt.Sprintf("brackets[%d]", i)
		if b.Rate.IsNegative() || b.Rate.GreaterThan(hundred) {
			return s.fail(field+".rate", "rate must be between 0 and 100")
		}
		last := i == len(s.Brackets)-1
		if b.Unbounded() {
			if !last {
				return s.fail(field+".max", "only the last bracket may be unbounded")
			}
			continue
		}
		if last {
			return s.fail(field+".max", "last bracket must be unbounded")
		}
		if !b.Max.Decimal.GreaterThan(b.Min) {
			return s.fail(field+".max", "max must be greater than min")
		}
		if next := s.Brackets[i+1]; !next.Min.Equal(b.Max.Decimal) {
			return s.fail(fmt.Sprintf("brackets[%d].min", i+1),
				fmt.Sprintf("must equal previous max %s", b.Max.Decimal))
		}
	}

	names := make([]string, 0, len(s.Limits))
	for name := range s.Limits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s.Limits[name].IsNegative() {
			return s.fail("limits."+name, "must not be negative")
		}
	}
	for _, name := range requiredLimits {
		if _, ok := s.Limits[name]; !ok {
			return &MissingLimitError{Year: s.Year, Limit: name, Ref: "calculator"}
		}
	}

	if s.Rebate.Amount.IsNegative() || s.Rebate.Threshold.IsNegative() {
		return s.fail("rebate", "amount and threshold must not be negative")
	}
	if s.NonResidentRate.IsNegative() || s.NonResidentRate.GreaterThan(hundred) {
		return s.fail("non_resident_rate", "rate must be between 0 and 100")
	}

	seen := make(map[string]bool, len(s.HousingTiers))
	for i, t := range s.HousingTiers {
		field := fmt.Sprintf("housing_tiers[%d]", i)
		if t.Code == "" {
			return s.fail(field+".code", "code is required")
		}
		if seen[t.Code] {
			return s.fail(field+".code", "duplicate tier "+t.Code)
		}
		seen[t.Code] = true
		if t.Cap.IsNegative() {
			return s.fail(field+".cap", "must not be negative")
		}
	}
	if s.DefaultHousing != "" && !seen[s.DefaultHousing] {
		return s.fail("default_housing_tier", "unknown tier "+s.DefaultHousing)
	}
	return nil
}

func (s *Schedule) fail(field, reason string) error {
	return &ScheduleError{Year: s.Year, Field: field, Reason: reason}
}
