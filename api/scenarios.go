/*
scenarios.go - Sample taxpayer profiles for demos and smoke tests

PURPOSE:

	Provides pre-built answer snapshots that exercise specific parts of the
	engine. The front end offers them as "try an example" presets and the
	CLI accepts them in place of an answers file.

AVAILABLE SCENARIOS:

	fresh-graduate:  Form BE, employment only, PCB refund
	young-family:    Married, single-income household with two children
	freelancer:      Form B with business income and PRS
	investor:        Dividends and donations on top of salary
	non-resident:    Form M flat rate with zakat

USAGE VIA API:

	GET /api/scenarios
	GET /api/scenarios/{id}     Profile answers and computed result

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and answers
 2. Add a test asserting the behaviour it demonstrates

SEE ALSO:
  - handlers.go: Compute endpoint
  - questions/catalog.go: Answer keys
*/
package api

import (
	"net/http"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/render"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO is one sample profile.
type ScenarioDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	FormType    string         `json:"form_type"`
	Answers     engine.Answers `json:"answers"`
}

// ScenarioResponse is a profile with its computed result.
type ScenarioResponse struct {
	Scenario ScenarioDTO     `json:"scenario"`
	Compute  ComputeResponse `json:"compute"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-graduate",
		Name:        "Fresh Graduate",
		Description: "RM 60,000 salary, no other claims, employer over-deducted PCB",
		FormType:    "BE",
		Answers: engine.Answers{
			"formType":         "BE",
			"employmentIncome": "60000",
			"maritalStatus":    "single",
			"pcbAmount":        "2000",
		},
	},
	{
		ID:          "young-family",
		Name:        "Young Family",
		Description: "Married, spouse not working, two young children, EPF and insurance",
		FormType:    "BE",
		Answers: engine.Answers{
			"formType":          "BE",
			"employmentIncome":  "96000",
			"maritalStatus":     "married",
			"spouseWorking":     "no",
			"hasChildren":       "yes",
			"childrenUnder18":   "2",
			"childcareFees":     "yes",
			"childcareAmount":   "4800",
			"epfAmount":         "10560",
			"lifeInsurance":     "2400",
			"eduMedInsurance":   "1800",
			"socso":             "420",
			"lifestyleSpending": "2500",
			"pcbAmount":         "4500",
		},
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Registered sole proprietor filing Form B, contributes to PRS",
		FormType:    "B",
		Answers: engine.Answers{
			"formType":               "B",
			"businessGrossIncome":    "120000",
			"businessAdjustedIncome": "85000",
			"maritalStatus":          "single",
			"lifestyleSpending":      "2500",
			"medicalSelf":            "yes",
			"medicalSelfAmount":      "1200",
			"prsContribution":        "yes",
			"prsAmount":              "3000",
		},
	},
	{
		ID:          "investor",
		Name:        "Salaried Investor",
		Description: "Salary with Malaysian dividends and approved donations",
		FormType:    "BE",
		Answers: engine.Answers{
			"formType":          "BE",
			"employmentIncome":  "150000",
			"maritalStatus":     "single",
			"hasDividendIncome": "yes",
			"dividendIncome":    "200000",
			"hasDonations":      "yes",
			"donationAmount":    "5000",
			"epfAmount":         "16500",
			"lifeInsurance":     "3000",
			"pcbAmount":         "18000",
		},
	},
	{
		ID:          "non-resident",
		Name:        "Non-Resident",
		Description: "Form M, taxed at the flat non-resident rate, pays zakat",
		FormType:    "M",
		Answers: engine.Answers{
			"formType":         "M",
			"employmentIncome": "20000",
			"zakatAmount":      "100",
		},
	},
}

// Scenarios returns copies of the sample profiles.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		s.Answers = s.Answers.Clone()
		out[i] = s
	}
	return out
}

// ScenarioByID looks up a sample profile.
func ScenarioByID(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			s.Answers = s.Answers.Clone()
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Scenarios())
}

// GetScenario returns one scenario computed against the default year.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := ScenarioByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	calc, err := h.calculator(0)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown assessment year", err)
		return
	}

	rep := render.NewReport(calc.Compute(s.Answers), s.Answers)
	writeJSON(w, http.StatusOK, ScenarioResponse{
		Scenario: s,
		Compute:  newComputeResponse(rep),
	})
}
