/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine results are
  already JSON-shaped and are embedded as-is; the types here wrap them
  with request metadata and add views the engine does not carry (the
  schedule, bracket slices, the visible question list).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Compute:     ComputeRequest, ComputeResponse, BandDTO
  Schedules:   ScheduleDTO, BracketDTO, HousingTierDTO, ScheduleListDTO
  Questions:   QuestionsRequest, QuestionsResponse, CatalogResponse
  Checkpoints: CheckpointRequest, AcceptedResponse, FunnelDTO
  Email:       EmailRequest, EmailResponse
  Form guide:  FormGuideRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. Answers are never
  rejected; malformed values count as zero in the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/result.go: ComputeResult
*/
package api

import (
	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/cukaiku/tax-engine/questions"
	"github.com/cukaiku/tax-engine/render"
	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPUTE
// =============================================================================

// ComputeRequest asks for one computation. Year 0 uses the default year.
// Complete marks the request as the questionnaire's summary step, which
// records the fully_completed checkpoint for SessionID.
type ComputeRequest struct {
	Year      int            `json:"year,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Complete  bool           `json:"complete,omitempty"`
	Answers   engine.Answers `json:"answers"`
}

// BandDTO is the portion of chargeable income taxed in one bracket.
type BandDTO struct {
	Min     decimal.Decimal  `json:"min"`
	Max     *decimal.Decimal `json:"max"`
	Rate    decimal.Decimal  `json:"rate"`
	Taxable decimal.Decimal  `json:"taxable"`
	Tax     decimal.Decimal  `json:"tax"`
}

// ComputeResponse is the result with its settlement.
type ComputeResponse struct {
	Result        *engine.ComputeResult      `json:"result"`
	Settlement    filing.Settlement          `json:"settlement"`
	TopMissed     []engine.MissedOpportunity `json:"top_missed"`
	Bands         []BandDTO                  `json:"bands"`
	EffectiveRate decimal.Decimal            `json:"effective_rate"`
}

func newComputeResponse(rep *render.Report) ComputeResponse {
	return ComputeResponse{
		Result:        rep.Result,
		Settlement:    rep.Settlement,
		TopMissed:     rep.TopMissed,
		Bands:         toBandDTOs(rep.Result.Brackets),
		EffectiveRate: rep.Result.EffectiveRate().Round(2),
	}
}

func toBandDTOs(slices []engine.BandSlice) []BandDTO {
	out := make([]BandDTO, len(slices))
	for i, s := range slices {
		out[i] = BandDTO{
			Min:     s.Bracket.Min,
			Max:     maxPtr(s.Bracket),
			Rate:    s.Bracket.Rate,
			Taxable: s.Taxable,
			Tax:     s.Tax,
		}
	}
	return out
}

func maxPtr(b engine.Bracket) *decimal.Decimal {
	if b.Unbounded() {
		return nil
	}
	m := b.Max.Decimal
	return &m
}

// =============================================================================
// SCHEDULES
// =============================================================================

// ScheduleListDTO lists the available assessment years.
type ScheduleListDTO struct {
	Years   []int `json:"years"`
	Default int   `json:"default"`
}

// BracketDTO is one progressive band. Max is null for the top band.
type BracketDTO struct {
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max"`
	Rate decimal.Decimal  `json:"rate"`
}

// HousingTierDTO is one property price tier.
type HousingTierDTO struct {
	Code     string          `json:"code"`
	Cap      decimal.Decimal `json:"cap"`
	Eligible bool            `json:"eligible"`
}

// ScheduleDTO is the full configuration for one year.
type ScheduleDTO struct {
	Year            int                        `json:"year"`
	Brackets        []BracketDTO               `json:"brackets"`
	Limits          map[string]decimal.Decimal `json:"limits"`
	RebateAmount    decimal.Decimal            `json:"rebate_amount"`
	RebateThreshold decimal.Decimal            `json:"rebate_threshold"`
	HousingTiers    []HousingTierDTO           `json:"housing_tiers"`
	DefaultHousing  string                     `json:"default_housing"`
	NonResidentRate decimal.Decimal            `json:"non_resident_rate"`
}

func toScheduleDTO(s *engine.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		Year:            s.Year,
		Limits:          make(map[string]decimal.Decimal, len(s.Limits)),
		RebateAmount:    s.Rebate.Amount,
		RebateThreshold: s.Rebate.Threshold,
		DefaultHousing:  s.DefaultHousing,
		NonResidentRate: s.NonResidentRate,
	}
	for _, b := range s.Brackets {
		dto.Brackets = append(dto.Brackets, BracketDTO{Min: b.Min, Max: maxPtr(b), Rate: b.Rate})
	}
	for k, v := range s.Limits {
		dto.Limits[k] = v
	}
	for _, t := range s.HousingTiers {
		dto.HousingTiers = append(dto.HousingTiers, HousingTierDTO{Code: t.Code, Cap: t.Cap, Eligible: t.Eligible})
	}
	return dto
}

// =============================================================================
// QUESTIONS
// =============================================================================

// QuestionsRequest asks which questions are visible for a snapshot.
// SessionID and Leaving (the question ID the user just moved past) are
// optional and drive checkpoint tracking.
type QuestionsRequest struct {
	Answers   engine.Answers `json:"answers"`
	SessionID string         `json:"session_id,omitempty"`
	Leaving   string         `json:"leaving,omitempty"`
}

// QuestionsResponse is the visible questionnaire. Answers holds the
// snapshot with values for hidden questions removed.
type QuestionsResponse struct {
	Questions []questions.Question `json:"questions"`
	Answers   engine.Answers       `json:"answers"`
	Total     int                  `json:"total"`
	Fired     []filing.Checkpoint  `json:"fired,omitempty"`
}

// CatalogResponse is the whole question catalog with its dependency list.
type CatalogResponse struct {
	Questions    []questions.Question `json:"questions"`
	Sections     []string             `json:"sections"`
	Dependencies map[string][]string  `json:"dependencies"`
}

// =============================================================================
// CHECKPOINTS
// =============================================================================

// CheckpointRequest records a questionnaire milestone.
type CheckpointRequest struct {
	SessionID  string         `json:"session_id"`
	Checkpoint string         `json:"checkpoint"`
	Year       int            `json:"year,omitempty"`
	Answers    engine.Answers `json:"answers"`
}

// AcceptedResponse acknowledges work handed to the dispatcher.
type AcceptedResponse struct {
	Accepted  bool   `json:"accepted"`
	SessionID string `json:"session_id,omitempty"`
}

// FunnelDTO counts sessions per checkpoint.
type FunnelDTO struct {
	Checkpoints map[filing.Checkpoint]int `json:"checkpoints"`
}

// =============================================================================
// EMAIL
// =============================================================================

// EmailRequest asks for the summary email.
type EmailRequest struct {
	To        string         `json:"to"`
	Locale    string         `json:"locale,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Year      int            `json:"year,omitempty"`
	Answers   engine.Answers `json:"answers"`
}

// EmailResponse confirms the email was queued.
type EmailResponse struct {
	Queued  bool   `json:"queued"`
	Subject string `json:"subject"`
}

// =============================================================================
// FORM GUIDE
// =============================================================================

// FormGuideRequest asks for the paginated form guide. Format "json"
// returns the pages; anything else returns text/plain.
type FormGuideRequest struct {
	Year      int            `json:"year,omitempty"`
	Answers   engine.Answers `json:"answers"`
	PageLines int            `json:"page_lines,omitempty"`
	Format    string         `json:"format,omitempty"`
}

// =============================================================================
// COMMON
// =============================================================================

// HealthDTO reports liveness.
type HealthDTO struct {
	Status string          `json:"status"`
	Years  []int           `json:"years"`
	Store  string          `json:"store"`
	Jobs   DispatcherStats `json:"jobs"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
