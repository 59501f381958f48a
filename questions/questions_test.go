package questions

import (
	"testing"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_IDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, q := range Catalog {
		assert.Falsef(t, seen[q.ID], "duplicate question %s", q.ID)
		seen[q.ID] = true
		assert.NotEmpty(t, q.Text, q.ID)
		assert.NotEmpty(t, q.Section, q.ID)
	}
}

func TestCatalog_DependenciesPrecedeDependents(t *testing.T) {
	// GIVEN: The static dependency list
	// THEN: Every field a question's visibility reads is a question listed
	//       earlier, so one pass in catalog order settles visibility

	position := make(map[string]int, len(Catalog))
	for i, q := range Catalog {
		position[q.ID] = i
	}

	for id, deps := range Dependencies() {
		for _, dep := range deps {
			pos, ok := position[dep]
			require.Truef(t, ok, "%s depends on unknown field %s", id, dep)
			assert.Lessf(t, pos, position[id], "%s depends on later question %s", id, dep)
		}
	}
}

func TestCatalog_SelectOptionsForSelects(t *testing.T) {
	for _, q := range Catalog {
		if q.Kind == KindSelect {
			assert.NotEmpty(t, q.Options, q.ID)
		} else {
			assert.Empty(t, q.Options, q.ID)
		}
	}
}

func TestVisible_EmptyAnswers(t *testing.T) {
	ids := VisibleIDs(engine.Answers{})

	assert.Contains(t, ids, "formType")
	assert.Contains(t, ids, "maritalStatus")
	assert.Contains(t, ids, "hasChildren")
	assert.NotContains(t, ids, "businessAdjustedIncome")
	assert.NotContains(t, ids, "rentalGross")
	assert.NotContains(t, ids, "spouseWorking")
	assert.NotContains(t, ids, "childrenUnder18")
	assert.NotContains(t, ids, "disabledChildInEdu")
	assert.Equal(t, "formType", ids[0])
	assert.Equal(t, "email", ids[len(ids)-1])
}

func TestVisible_FormMHidesReliefQuestions(t *testing.T) {
	ids := VisibleIDs(engine.Answers{"formType": "M"})

	assert.Contains(t, ids, "employmentIncome")
	assert.Contains(t, ids, "hasRentalIncome")
	assert.NotContains(t, ids, "maritalStatus")
	assert.NotContains(t, ids, "lifestyleSpending")
	assert.NotContains(t, ids, "pcbAmount")
	assert.NotContains(t, ids, "zakatAmount")
}

func TestVisible_Conditions(t *testing.T) {
	tests := []struct {
		name    string
		answers engine.Answers
		id      string
		want    bool
	}{
		{"business on form B", engine.Answers{"formType": "B"}, "businessAdjustedIncome", true},
		{"business on form BE", engine.Answers{"formType": "BE"}, "businessAdjustedIncome", false},
		{"spouse when married", engine.Answers{"maritalStatus": "married"}, "spouseWorking", true},
		{"spouse when divorced", engine.Answers{"maritalStatus": "divorced"}, "spouseWorking", false},
		{"disabled child edu with count", engine.Answers{"disabledChildren": "2"}, "disabledChildInEdu", true},
		{"disabled child edu with zero", engine.Answers{"disabledChildren": "0"}, "disabledChildInEdu", false},
		{"disabled child edu with junk", engine.Answers{"disabledChildren": "two"}, "disabledChildInEdu", false},
		{"housing interest no tier", engine.Answers{"firstHomeLoan": "yes"}, "housingInterest", true},
		{"housing interest ineligible", engine.Answers{"firstHomeLoan": "yes", "housePrice": "above750k"}, "housingInterest", false},
		{"children count", engine.Answers{"hasChildren": "yes"}, "childrenUnder18", true},
		{"children count on form M", engine.Answers{"hasChildren": "yes", "formType": "M"}, "childrenUnder18", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := ByID(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.want, q.Visible(tt.answers))
		})
	}
}

func TestDependsOn_Deduplicates(t *testing.T) {
	q := Question{ShowIf: when(Equals("a", "x"), NotEquals("a", "y"), Positive("b"))}
	assert.Equal(t, []string{"a", "b"}, q.DependsOn())
	assert.Nil(t, Question{}.DependsOn())
}

func TestCompletesSection(t *testing.T) {
	visible := Visible(engine.Answers{"hasOtherIncome": "yes"})

	last := -1
	for i, q := range visible {
		if q.Section == SectionOtherIncome {
			last = i
		}
	}
	require.NotEqual(t, -1, last)
	assert.Equal(t, "otherIncome", visible[last].ID)
	assert.True(t, CompletesSection(visible, last, SectionOtherIncome))
	assert.False(t, CompletesSection(visible, last-1, SectionOtherIncome))
	assert.False(t, CompletesSection(visible, last+1, SectionOtherIncome))
	assert.True(t, CompletesSection(visible, len(visible)-1, SectionEmail))
	assert.False(t, CompletesSection(visible, len(visible), SectionEmail))
}

func TestPrune_DropsHiddenAnswers(t *testing.T) {
	a := engine.Answers{
		"formType":       "M",
		"maritalStatus":  "married",
		"spouseWorking":  "no",
		"rentalGross":    "5000",
		"hasOtherIncome": "yes",
		"otherIncome":    "1200",
		"sessionNote":    "kept",
	}

	pruned := Prune(a)

	assert.Equal(t, engine.Answers{
		"formType":       "M",
		"hasOtherIncome": "yes",
		"otherIncome":    "1200",
		"sessionNote":    "kept",
	}, pruned)
	assert.Len(t, a, 7, "input is not modified")
}

func TestSections_Order(t *testing.T) {
	sections := Sections()
	require.NotEmpty(t, sections)
	assert.Equal(t, SectionFormType, sections[0])
	assert.Equal(t, SectionEmail, sections[len(sections)-1])
	assert.Less(t, indexOf(sections, SectionOtherIncome), indexOf(sections, SectionInsurance))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
