/*
Package factory provides YAML to Go schedule conversion.

PURPOSE:
  Converts per-year YAML tax schedules into validated engine.Schedule
  values. New assessment years are added by dropping a YAML file into
  schedules/ (or pointing the loader at an external file) without touching
  engine logic.

YAML SCHEMA:
  year: 2025
  brackets:
    - {min: "0", max: "5000", rate: "0"}
    - {min: "2000000", rate: "30"}        # no max: unbounded top band
  limits:
    individual: "9000"
    donation_percent: "0.10"
  rebate: {amount: "400", threshold: "35000"}
  housing_tiers:
    - {code: under500k, cap: "7000", eligible: true}
  default_housing_tier: 500k750k
  non_resident_rate: "30"

  Numbers are quoted strings so they parse into exact decimals.

KEY FEATURES:
  - Strict decoding: unknown keys are rejected
  - Every value is parsed with decimal.NewFromString (no float rounding)
  - The result is validated and checked against the relief rule table

USAGE:
  calc, err := factory.Calculator(2025)

  // From an external file
  f := factory.NewScheduleFactory()
  schedule, err := f.ParseFile("./ya2026.yaml")

SEE ALSO:
  - engine/schedule.go: Schedule type and validation
  - schedules/: Embedded schedules
*/
package factory

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed schedules/*.yaml
var embedded embed.FS

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// ScheduleYAML is the YAML representation of a schedule.
type ScheduleYAML struct {
	Year               int               `yaml:"year"`
	Description        string            `yaml:"description,omitempty"`
	Brackets           []BracketYAML     `yaml:"brackets"`
	Limits             map[string]string `yaml:"limits"`
	Rebate             RebateYAML        `yaml:"rebate"`
	HousingTiers       []HousingTierYAML `yaml:"housing_tiers"`
	DefaultHousingTier string            `yaml:"default_housing_tier,omitempty"`
	NonResidentRate    string            `yaml:"non_resident_rate"`
}

// BracketYAML represents one band. Max is omitted on the top band.
type BracketYAML struct {
	Min  string  `yaml:"min"`
	Max  *string `yaml:"max,omitempty"`
	Rate string  `yaml:"rate"`
}

// RebateYAML represents the self/spouse rebate rule.
type RebateYAML struct {
	Amount    string `yaml:"amount"`
	Threshold string `yaml:"threshold"`
}

// HousingTierYAML represents one property price tier.
type HousingTierYAML struct {
	Code     string `yaml:"code"`
	Cap      string `yaml:"cap"`
	Eligible bool   `yaml:"eligible"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts YAML schedules to engine schedules.
type ScheduleFactory struct{}

// NewScheduleFactory creates a new schedule factory.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseFile reads and parses a schedule from disk.
func (f *ScheduleFactory) ParseFile(filename string) (*engine.Schedule, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule %s: %w", filename, err)
	}
	s, err := f.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML schedule.
func (f *ScheduleFactory) Parse(data []byte) (*engine.Schedule, error) {
	var sy ScheduleYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sy); err != nil {
		return nil, fmt.Errorf("invalid schedule YAML: %w", err)
	}
	return f.Convert(sy)
}

// Convert turns the YAML representation into a validated schedule.
func (f *ScheduleFactory) Convert(sy ScheduleYAML) (*engine.Schedule, error) {
	p := &parser{year: sy.Year}
	s := &engine.Schedule{
		Year:            sy.Year,
		Limits:          make(engine.Limits, len(sy.Limits)),
		DefaultHousing:  sy.DefaultHousingTier,
		NonResidentRate: p.decimal("non_resident_rate", sy.NonResidentRate),
		Rebate: engine.RebateConfig{
			Amount:    p.decimal("rebate.amount", sy.Rebate.Amount),
			Threshold: p.decimal("rebate.threshold", sy.Rebate.Threshold),
		},
	}
	if sy.Year <= 0 {
		return nil, &engine.ScheduleError{Year: sy.Year, Field: "year", Reason: "must be a positive year"}
	}

	for i, b := range sy.Brackets {
		field := fmt.Sprintf("brackets[%d]", i)
		br := engine.Bracket{
			Min:  p.decimal(field+".min", b.Min),
			Rate: p.decimal(field+".rate", b.Rate),
		}
		if b.Max != nil {
			br.Max = decimal.NewNullDecimal(p.decimal(field+".max", *b.Max))
		}
		s.Brackets = append(s.Brackets, br)
	}

	names := make([]string, 0, len(sy.Limits))
	for name := range sy.Limits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Limits[name] = p.decimal("limits."+name, sy.Limits[name])
	}

	for i, t := range sy.HousingTiers {
		s.HousingTiers = append(s.HousingTiers, engine.HousingTier{
			Code:     t.Code,
			Cap:      p.decimal(fmt.Sprintf("housing_tiers[%d].cap", i), t.Cap),
			Eligible: t.Eligible,
		})
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// parser records the first decimal parse failure.
type parser struct {
	year int
	err  error
}

func (p *parser) decimal(field, value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		if p.err == nil {
			p.err = &engine.ScheduleError{Year: p.year, Field: field, Reason: "value is required"}
		}
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil && p.err == nil {
		p.err = &engine.ScheduleError{Year: p.year, Field: field, Reason: fmt.Sprintf("not a decimal: %q", value)}
	}
	return d
}

// =============================================================================
// EMBEDDED SCHEDULES
// =============================================================================

var (
	loadOnce  sync.Once
	loaded    map[int]*engine.Schedule
	loadError error
)

func loadEmbedded() {
	loaded = make(map[int]*engine.Schedule)
	entries, err := embedded.ReadDir("schedules")
	if err != nil {
		loadError = err
		return
	}
	f := NewScheduleFactory()
	for _, e := range entries {
		name := path.Join("schedules", e.Name())
		data, err := embedded.ReadFile(name)
		if err != nil {
			loadError = err
			return
		}
		s, err := f.Parse(data)
		if err != nil {
			loadError = fmt.Errorf("%s: %w", name, err)
			return
		}
		loaded[s.Year] = s
	}
}

// Load returns a copy of the embedded schedule for an assessment year.
// Callers may modify it without affecting later loads.
func Load(year int) (*engine.Schedule, error) {
	loadOnce.Do(loadEmbedded)
	if loadError != nil {
		return nil, loadError
	}
	s, ok := loaded[year]
	if !ok {
		return nil, fmt.Errorf("YA%d: %w", year, engine.ErrUnknownYear)
	}
	return s.Clone(), nil
}

// MustLoad is Load that panics. Embedded schedules are part of the build,
// so a failure is an authoring error.
func MustLoad(year int) *engine.Schedule {
	s, err := Load(year)
	if err != nil {
		panic(err)
	}
	return s
}

// Years lists the embedded assessment years in ascending order.
func Years() []int {
	loadOnce.Do(loadEmbedded)
	years := make([]int, 0, len(loaded))
	for y := range loaded {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Latest returns the most recent embedded assessment year.
func Latest() int {
	years := Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}

// Calculator loads the embedded schedule for year and builds a calculator.
func Calculator(year int) (*engine.Calculator, error) {
	s, err := Load(year)
	if err != nil {
		return nil, err
	}
	return engine.NewCalculator(s)
}
