package engine_test

import (
	"testing"
	"time"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/factory"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newCalculator(t *testing.T) *engine.Calculator {
	t.Helper()
	calc, err := factory.Calculator(2025)
	require.NoError(t, err)
	return calc
}

func rm(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertRM(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, rm(want).Equal(got), "expected RM%s, got RM%s %v", want, got, msgAndArgs)
}

func refs(reliefs []engine.Relief) []string {
	out := make([]string, len(reliefs))
	for i, r := range reliefs {
		out[i] = r.Ref
	}
	return out
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// =============================================================================
// BRACKET ENGINE
// =============================================================================

func TestTax_BoundaryBelongsToNextBand(t *testing.T) {
	// GIVEN: 0–5000@0%, 5000–20000@1%, 20000–35000@3%
	// WHEN: Chargeable income sits exactly on and just past 20000
	// THEN: 20000 is 15000×1% and 20001 adds only 1×3%

	calc := newCalculator(t)

	assertRM(t, "150", calc.Tax(rm("20000")))
	assertRM(t, "150.03", calc.Tax(rm("20001")))
	assertRM(t, "0", calc.Tax(rm("5000")))
	assertRM(t, "0.01", calc.Tax(rm("5001")))
}

func TestTax_NegativeAndZero(t *testing.T) {
	calc := newCalculator(t)

	assertRM(t, "0", calc.Tax(decimal.Zero))
	assertRM(t, "0", calc.Tax(rm("-5000")))
	assert.Empty(t, calc.Breakdown(rm("-1")))
}

func TestTax_Monotonic(t *testing.T) {
	calc := newCalculator(t)

	prev := decimal.Zero
	for income := int64(0); income <= 2_500_000; income += 997 {
		tax := calc.Tax(decimal.NewFromInt(income))
		assert.Falsef(t, tax.LessThan(prev), "tax(%d)=%s is below previous %s", income, tax, prev)
		prev = tax
	}
}

func TestTax_TopBandIsUnbounded(t *testing.T) {
	calc := newCalculator(t)

	// 2,000,000 taxed through all bounded bands, then 1,000,000 at 30%.
	below := calc.Tax(rm("2000000"))
	assertRM(t, below.Add(rm("300000")).String(), calc.Tax(rm("3000000")))
}

func TestBreakdown_SumsToTax(t *testing.T) {
	calc := newCalculator(t)

	for _, income := range []string{"0", "4999.99", "51000", "123456.78", "2500000"} {
		slices := calc.Breakdown(rm(income))
		total := decimal.Zero
		taxable := decimal.Zero
		for _, s := range slices {
			assert.True(t, s.Taxable.IsPositive(), "breakdown must skip empty bands")
			total = total.Add(s.Tax)
			taxable = taxable.Add(s.Taxable)
		}
		assertRM(t, calc.Tax(rm(income)).String(), total, income)
		assertRM(t, income, taxable, income)
	}
}

// =============================================================================
// END TO END
// =============================================================================

func TestCompute_EmploymentOnly(t *testing.T) {
	// GIVEN: RM60,000 employment income and nothing else
	// WHEN: Computing
	// THEN: 51,000 chargeable, 0 + 150 + 450 + 900 + 110 = 1,610 payable

	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{"employmentIncome": "60000"})

	assertRM(t, "60000", r.TotalIncome)
	assertRM(t, "9000", r.TotalRelief)
	assertRM(t, "51000", r.ChargeableIncome)
	assertRM(t, "1610", r.TaxBeforeRebate)
	assertRM(t, "0", r.TotalRebate)
	assertRM(t, "1610", r.FinalTax)
	assertRM(t, "0", r.TaxSaved)
	assert.Equal(t, []string{"D1"}, refs(r.Reliefs))
	assert.Equal(t, engine.FormBE, r.FormType)
	assert.Equal(t, 2025, r.Year)
}

func TestCompute_EmptyAnswers(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{})

	require.Len(t, r.Reliefs, 1)
	assert.Equal(t, "D1", r.Reliefs[0].Ref)
	assertRM(t, "9000", r.Reliefs[0].Amount)
	assertRM(t, "0", r.ChargeableIncome)
	assertRM(t, "0", r.FinalTax)
	assertRM(t, "0", r.TaxSaved)
}

func TestAnswers_UnmarshalJSONAcceptsLooseTypes(t *testing.T) {
	// GIVEN: Answers posted by a client that sends numbers and booleans
	// WHEN: They are decoded
	// THEN: Values keep their literal text and booleans become yes/no

	var a engine.Answers
	require.NoError(t, json.Unmarshal([]byte(`{
		"employmentIncome": 60000.50,
		"childrenUnder18": 2,
		"hasDividendIncome": true,
		"hasDonations": false,
		"formType": "BE",
		"email": null,
		"nested": {"x": 1}
	}`), &a))

	assert.Equal(t, engine.Answers{
		"employmentIncome":  "60000.50",
		"childrenUnder18":   "2",
		"hasDividendIncome": "yes",
		"hasDonations":      "no",
		"formType":          "BE",
	}, a)
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &a))
}

func TestParseAmount_Bounds(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" 1,234.50 ", "1234.5"},
		{"1e3", "1000"},
		{"1e15", "1000000000000000"},
		{"1000000000000001", "0"},
		{"1e16", "0"},
		{"1e50000000", "0"},
		{"1e-50000000", "0"},
		{"0.000000000000000000001", "0"},
		{"-5", "0"},
		{"abc", "0"},
	}
	for _, tt := range tests {
		assertRM(t, tt.want, engine.ParseAmount(tt.in), tt.in)
	}
}

func TestParseCount_Bounds(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{" 2.9 ", 2},
		{"1e2", 100},
		{"2147483647", engine.MaxCount},
		{"2147483648", 0},
		{"1e19", 0},
		{"99999999999999999999", 0},
		{"1e50000000", 0},
		{"-1", 0},
		{"two", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.ParseCount(tt.in), tt.in)
	}
}

func TestCompute_OversizedAnswersAreIgnored(t *testing.T) {
	// GIVEN: Answers with huge exponents and overflowing counts
	// WHEN: Computing
	// THEN: The result comes back promptly and the values count as zero

	calc := newCalculator(t)
	answers := engine.Answers{
		"employmentIncome": "1e50000000",
		"hasChildren":      "yes",
		"childrenUnder18":  "99999999999999999999",
	}

	done := make(chan *engine.ComputeResult, 1)
	go func() { done <- calc.Compute(answers) }()

	select {
	case r := <-done:
		assertRM(t, "0", r.TotalIncome)
		assertRM(t, "0", r.FinalTax)
		_, ok := r.Relief("D9")
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("compute did not finish")
	}
}

func TestCompute_Idempotent(t *testing.T) {
	calc := newCalculator(t)
	answers := engine.Answers{
		"employmentIncome":  "84000.50",
		"hasDividendIncome": "yes",
		"dividendIncome":    "25000",
		"lifestyleSpending": "1800",
		"epfAmount":         "9240",
		"hasChildren":       "yes",
		"childrenUnder18":   "2",
		"zakatAmount":       "300",
	}

	first := calc.Compute(answers)
	second := calc.Compute(answers)

	if diff := cmp.Diff(first, second, decimalEqual); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestCompute_TaxSavedUsesSameBrackets(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome":  "60000",
		"lifestyleSpending": "2500",
	})

	// 48,500 chargeable: 150 + 450 + 13,500×6% = 1,410
	assertRM(t, "1410", r.FinalTax)
	assertRM(t, "200", r.TaxSaved)
}

// =============================================================================
// DIVIDEND CARVE-OUT
// =============================================================================

func TestCompute_DividendExcludedFromBrackets(t *testing.T) {
	// GIVEN: RM100,000 employment and RM50,000 dividend above the exemption
	// THEN: Bracket base stays 100,000; dividend taxed 2% on top

	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome":  "100000",
		"hasDividendIncome": "yes",
		"dividendIncome":    "50000",
	})

	assertRM(t, "100000", r.TotalIncome)
	assertRM(t, "50000", r.Dividend)
	assertRM(t, "1000", r.DividendTax)
	assertRM(t, "91000", r.ChargeableIncome)
	// 150 + 450 + 900 + 2,200 + 21,000×19%
	assertRM(t, "7690", r.TaxBeforeRebate)
	assertRM(t, "8690", r.TaxWithDividend)
	assertRM(t, "8690", r.FinalTax)

	agg, ok := r.Field("C4")
	require.True(t, ok)
	assertRM(t, "150000", agg.Value, "aggregate line shows all income")
	_, ok = r.Field("C3a")
	assert.True(t, ok)
	_, ok = r.Field("E2a")
	assert.True(t, ok)
}

func TestCompute_DividendRequiresOptIn(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{"dividendIncome": "50000"})

	assertRM(t, "0", r.Dividend)
	assertRM(t, "0", r.DividendTax)
	_, ok := r.Field("C3a")
	assert.False(t, ok)
}

// =============================================================================
// INCOME AND DEDUCTIONS
// =============================================================================

func TestCompute_IncomeComponentsGatedByOptIn(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome":  "10000",
		"hasRentalIncome":   "yes",
		"rentalGross":       "24000",
		"rentalExpenses":    "4000",
		"hasInterestIncome": "no",
		"interestIncome":    "999",
		"hasRoyaltyIncome":  "yes",
		"royaltyIncome":     "1500",
		"pensionIncome":     "7000",
		"hasOtherIncome":    "yes",
		"otherIncome":       "2500",
	})

	assertRM(t, "34000", r.TotalIncome)
	c2, _ := r.Field("C2")
	assertRM(t, "20000", c2.Value)
	c3, _ := r.Field("C3")
	assertRM(t, "4000", c3.Value)
}

func TestCompute_RentalLossFloorsAtZero(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome": "30000",
		"hasRentalIncome":  "yes",
		"rentalGross":      "10000",
		"rentalExpenses":   "12000",
	})

	assertRM(t, "30000", r.TotalIncome)
}

func TestCompute_DonationCappedAtTenPercent(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome": "50000",
		"hasDonations":     "yes",
		"donationAmount":   "8000",
	})

	assertRM(t, "5000", r.Donation)
	assertRM(t, "45000", r.TotalIncomeAfterDeduction)
	assertRM(t, "36000", r.ChargeableIncome)

	c7, ok := r.Field("C7")
	require.True(t, ok)
	assert.Equal(t, "Approved donations (max 10% of aggregate income)", c7.Label)
}

func TestCompute_BusinessIncomeOnlyOnFormB(t *testing.T) {
	calc := newCalculator(t)

	b := calc.Compute(engine.Answers{"formType": "B", "businessAdjustedIncome": "40000"})
	assertRM(t, "40000", b.TotalIncome)
	c6, ok := b.Field("C6")
	require.True(t, ok)
	assertRM(t, "40000", c6.Value)

	be := calc.Compute(engine.Answers{"formType": "BE", "businessAdjustedIncome": "40000"})
	assertRM(t, "0", be.TotalIncome)
	_, ok = be.Field("C6")
	assert.False(t, ok)
}

// =============================================================================
// RELIEFS
// =============================================================================

func TestReliefs_ClaimAboveCapYieldsCap(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"selfEducation":          "yes",
		"educationAmount":        "9000",
		"medicalSelf":            "yes",
		"medicalSelfAmount":      "25000",
		"lifestyleSpending":      "4000",
		"socso":                  "600",
		"prsContribution":        "yes",
		"prsAmount":              "3000.01",
		"hasEV":                  "yes",
		"evAmount":               "1200",
		"additionalSports":       "yes",
		"additionalSportsAmount": "abc",
	})

	want := map[string]string{"D3": "7000", "D5": "10000", "D7": "2500", "D19": "350", "D20": "3000", "D16": "1200"}
	for ref, amount := range want {
		rl, ok := r.Relief(ref)
		require.Truef(t, ok, "relief %s missing", ref)
		assertRM(t, amount, rl.Amount, ref)
	}
	_, ok := r.Relief("D8")
	assert.False(t, ok, "unparsable amount claims nothing")
}

func TestReliefs_AmountIgnoredWithoutOptIn(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"educationAmount":      "5000",
		"parentsMedical":       "no",
		"parentsMedicalAmount": "5000",
	})

	assert.Equal(t, []string{"D1"}, refs(r.Reliefs))
}

func TestReliefs_EPFLifeCombinedCap(t *testing.T) {
	// GIVEN: EPF 5,000 (own cap 4,000) and life 3,000 (own cap 3,000)
	// THEN: min(4,000 + 3,000, 7,000) = 7,000, not 8,000

	calc := newCalculator(t)

	r := calc.Compute(engine.Answers{"epfAmount": "5000", "lifeInsurance": "3000"})
	d17, ok := r.Relief("D17")
	require.True(t, ok)
	assertRM(t, "7000", d17.Amount)

	r = calc.Compute(engine.Answers{"epfAmount": "3000", "lifeInsurance": "5000"})
	d17, _ = r.Relief("D17")
	assertRM(t, "6000", d17.Amount, "life clamps to its own 3,000 first")
}

func TestReliefs_SpouseAndAlimony(t *testing.T) {
	calc := newCalculator(t)

	r := calc.Compute(engine.Answers{"maritalStatus": "married", "spouseWorking": "no"})
	d2, ok := r.Relief("D2")
	require.True(t, ok)
	assert.Equal(t, "Spouse (no income / joint assessment)", d2.Name)
	assertRM(t, "4000", d2.Amount)

	r = calc.Compute(engine.Answers{"maritalStatus": "married", "spouseWorking": "yes"})
	_, ok = r.Relief("D2")
	assert.False(t, ok)

	r = calc.Compute(engine.Answers{"maritalStatus": "divorced"})
	d2, ok = r.Relief("D2")
	require.True(t, ok)
	assert.Equal(t, "Alimony (formal agreement)", d2.Name)
}

func TestReliefs_PerUnitChildren(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"hasChildren":       "yes",
		"childrenUnder18":   "2",
		"childrenHigherEdu": "1",
		"childrenPreU":      "-3",
	})

	d9, ok := r.Relief("D9")
	require.True(t, ok)
	assertRM(t, "4000", d9.Amount)
	assert.Equal(t, "Children under 18 (2 × RM2,000)", d9.Name)

	d10a, _ := r.Relief("D10a")
	assertRM(t, "8000", d10a.Amount)

	_, ok = r.Relief("D10b")
	assert.False(t, ok, "negative count clamps to zero")
}

func TestReliefs_DisabledChildHigherEduBoundedByDisabledChildren(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"disabledChildren":   "1",
		"disabledChildInEdu": "3",
	})

	d11, _ := r.Relief("D11")
	assertRM(t, "8000", d11.Amount)
	d12, ok := r.Relief("D12")
	require.True(t, ok)
	assertRM(t, "8000", d12.Amount)
	assertRM(t, "25000", r.TotalRelief)

	r = calc.Compute(engine.Answers{"disabledChildInEdu": "2"})
	_, ok = r.Relief("D12")
	assert.False(t, ok, "no disabled children counted")
}

func TestReliefs_HousingTiers(t *testing.T) {
	calc := newCalculator(t)

	tests := []struct {
		name   string
		price  string
		loan   string
		want   string
		hasD21 bool
	}{
		{"under 500k", "under500k", "yes", "7000", true},
		{"500k to 750k", "500k750k", "yes", "5000", true},
		{"above 750k", "above750k", "yes", "", false},
		{"tier not answered", "", "yes", "5000", true},
		{"not first home", "under500k", "no", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := engine.Answers{"firstHomeLoan": tt.loan, "housingInterest": "9000"}
			if tt.price != "" {
				answers["housePrice"] = tt.price
			}
			r := calc.Compute(answers)
			d21, ok := r.Relief("D21")
			require.Equal(t, tt.hasD21, ok)
			if ok {
				assertRM(t, tt.want, d21.Amount)
			}
		})
	}
}

func TestReliefs_EveryReliefHasHighlightedField(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"isDisabled":        "yes",
		"lifestyleSpending": "100",
		"eduMedInsurance":   "800",
	})

	for _, rl := range r.Reliefs {
		f, ok := r.Field(rl.Ref)
		require.Truef(t, ok, "no field for %s", rl.Ref)
		assert.Equal(t, engine.SectionReliefs, f.Section)
		assert.True(t, f.Highlight)
		assert.True(t, f.Value.Equal(rl.Amount))
	}

	total, ok := r.Field("D_TOTAL")
	require.True(t, ok)
	assert.True(t, total.Bold)
	assertRM(t, "16900", total.Value)
}

// =============================================================================
// MISSED OPPORTUNITIES
// =============================================================================

func TestMissed_HeadroomAndOptOut(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome":  "80000",
		"lifestyleSpending": "1000",
		"epfAmount":         "4000",
		"lifeInsurance":     "3000",
		"selfEducation":     "yes",
		"educationAmount":   "100",
		"hasChildren":       "yes",
	})

	got := map[string]string{}
	for _, m := range r.Missed {
		got[m.Name] = m.Potential.String()
		assert.NotEmpty(t, m.Tip)
	}
	assert.Equal(t, map[string]string{
		"Lifestyle relief":              "1500",
		"SSPN deposit":                  "8000",
		"Medical / education insurance": "4000",
		"PRS contribution":              "3000",
	}, got)
}

func TestMissed_DoesNotAffectTax(t *testing.T) {
	calc := newCalculator(t)
	base := engine.Answers{"employmentIncome": "60000"}

	r := calc.Compute(base)
	require.NotEmpty(t, r.Missed)
	assertRM(t, "1610", r.FinalTax)
}

func TestTopMissed_OrdersByPotential(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{"hasChildren": "yes"})

	top := r.TopMissed(3)
	require.Len(t, top, 3)
	assert.Equal(t, "SSPN deposit", top[0].Name)
	assert.Equal(t, "Education fees", top[1].Name)
	assert.Equal(t, "EPF & life insurance", top[2].Name)
	assert.Len(t, r.TopMissed(-1), len(r.Missed))
}

// =============================================================================
// REBATES
// =============================================================================

func TestRebates_SelfRebateBoundary(t *testing.T) {
	cfg := engine.RebateConfig{Amount: rm("400"), Threshold: rm("35000")}

	at := engine.ComputeRebates(cfg, rm("35000"), decimal.Zero, "single", false)
	assertRM(t, "400", at.Self)

	above := engine.ComputeRebates(cfg, rm("35001"), decimal.Zero, "single", false)
	assertRM(t, "0", above.Self)
	assertRM(t, "0", above.Total)
}

func TestRebates_SpouseRebateRequiresNonWorkingSpouse(t *testing.T) {
	cfg := engine.RebateConfig{Amount: rm("400"), Threshold: rm("35000")}

	r := engine.ComputeRebates(cfg, rm("30000"), rm("150"), "married", false)
	assertRM(t, "400", r.Spouse)
	assertRM(t, "950", r.Total)

	r = engine.ComputeRebates(cfg, rm("30000"), decimal.Zero, "married", true)
	assertRM(t, "0", r.Spouse)

	r = engine.ComputeRebates(cfg, rm("40000"), decimal.Zero, "married", false)
	assertRM(t, "0", r.Spouse)
}

func TestCompute_ZakatIsUncappedAndAppliedAfterDividend(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"employmentIncome":  "100000",
		"hasDividendIncome": "yes",
		"dividendIncome":    "50000",
		"zakatAmount":       "8000",
	})

	assertRM(t, "8000", r.Zakat)
	assertRM(t, "91000", r.ChargeableIncome, "zakat never reduces chargeable income")
	assertRM(t, "690", r.FinalTax)

	r = calc.Compute(engine.Answers{"employmentIncome": "60000", "zakatAmount": "100000"})
	assertRM(t, "100000", r.Zakat)
	assertRM(t, "0", r.FinalTax)
}

func TestCompute_LowIncomeGetsSelfRebate(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{"employmentIncome": "40000"})

	// 31,000 chargeable: 150 + 11,000×3% = 480, less 400
	assertRM(t, "480", r.TaxBeforeRebate)
	assertRM(t, "400", r.SelfRebate)
	assertRM(t, "80", r.FinalTax)
	f2, ok := r.Field("F2")
	require.True(t, ok)
	assert.Equal(t, "Self rebate (chargeable income ≤ RM35,000)", f2.Label)
}

// =============================================================================
// NON-RESIDENT
// =============================================================================

func TestCompute_NonResidentFlatRateNoReliefs(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{
		"formType":          "M",
		"employmentIncome":  "20000",
		"lifestyleSpending": "2500",
		"zakatAmount":       "100",
	})

	assert.Empty(t, r.Reliefs)
	assert.Empty(t, r.Missed)
	assertRM(t, "20000", r.ChargeableIncome)
	assertRM(t, "6000", r.TaxBeforeRebate)
	assertRM(t, "0", r.SelfRebate)
	assertRM(t, "5900", r.FinalTax)
	assert.Empty(t, r.Brackets)
}

// =============================================================================
// FORM FIELDS
// =============================================================================

func TestFormFields_SummaryLines(t *testing.T) {
	calc := newCalculator(t)
	r := calc.Compute(engine.Answers{"employmentIncome": "60000"})

	final, ok := r.Field("E_FINAL")
	require.True(t, ok)
	assert.True(t, final.Bold)
	assert.Equal(t, engine.SectionComputation, final.Section)
	assertRM(t, "1610", final.Value)

	e1, _ := r.Field("E1")
	assertRM(t, "51000", e1.Value)

	for _, ref := range []string{"E2a", "F1", "F2", "F3", "C7"} {
		_, ok := r.Field(ref)
		assert.Falsef(t, ok, "%s should be omitted when zero", ref)
	}

	var sections []engine.Section
	for _, f := range r.FormFields {
		sections = append(sections, f.Section)
	}
	assert.Equal(t, []engine.Section{"B", "B", "B", "C", "D", "D", "E", "E", "E"}, sections)
}
