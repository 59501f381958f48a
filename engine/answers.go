/*
Package engine provides the Malaysian personal income tax computation engine.

PURPOSE:
  Turns a sparse set of questionnaire answers into a tax estimate: income
  aggregation, capped reliefs, progressive bracket tax, the flat-rate
  dividend carve-out, rebates, and a field-by-field projection onto the
  official return layout.

KEY CONCEPTS IN THIS FILE (answers.go):
  - Answers: Raw string answers keyed by question ID
  - Money helpers: decimal parsing, clamping and rounding

DESIGN PRINCIPLES:
  1. Never reject user data: malformed input becomes zero
  2. Precision: all money uses decimal.Decimal
  3. Purity: no I/O, no shared mutable state

USAGE:
  calc := engine.MustCalculator(schedule)
  result := calc.Compute(engine.Answers{"employmentIncome": "60000"})

SEE ALSO:
  - schedule.go: Brackets, limits and validation
  - compute.go: The assembler
*/
package engine

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ANSWERS - Raw questionnaire input
// =============================================================================

// Answers maps question IDs to the raw answer text. A key is absent when
// the question was never reached.
type Answers map[string]string

const (
	yes = "yes"
	no  = "no"
)

// Amount parses a money answer. Invalid, absent and negative values are 0.
func (a Answers) Amount(key string) decimal.Decimal {
	return ParseAmount(a[key])
}

// Count parses a count answer. Invalid, absent and negative values are 0.
func (a Answers) Count(key string) int {
	return ParseCount(a[key])
}

// Yes reports whether the answer is exactly "yes".
func (a Answers) Yes(key string) bool {
	return a[key] == yes
}

// Is reports whether the answer equals value.
func (a Answers) Is(key, value string) bool {
	return a[key] == value
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// UnmarshalJSON accepts strings, numbers and booleans as answer values.
// Numbers keep their literal text and booleans become "yes" or "no".
// Nulls and nested values are dropped.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out := make(Answers, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case json.Number:
			out[k] = v.String()
		case bool:
			if v {
				out[k] = yes
			} else {
				out[k] = no
			}
		}
	}
	*a = out
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// Bounds on parsed answers. Anything outside them is treated as malformed.
// The exponent is checked before any arithmetic because comparing or
// rescaling a value like 1e50000000 allocates a 50M digit integer.
const (
	minAnswerExponent = -20
	maxAnswerExponent = 15

	// MaxCount is the largest count an answer may carry.
	MaxCount = math.MaxInt32
)

// MaxAmount is the largest amount an answer may carry (RM 10^15).
var MaxAmount = decimal.New(1, maxAnswerExponent)

var maxCountDecimal = decimal.NewFromInt(MaxCount)

// parseAnswer parses a non-negative decimal within the answer bounds.
func parseAnswer(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	if e := d.Exponent(); e < minAnswerExponent || e > maxAnswerExponent {
		return decimal.Zero, false
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// ParseAmount converts a decimal string to a non-negative amount.
// Surrounding whitespace and thousands separators are ignored. Values
// above MaxAmount or with more than 20 decimal places are zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, _ := parseAnswer(s)
	return d
}

// ParseCount converts an integer string to a count in [0, MaxCount].
// A fractional value truncates toward zero; anything above MaxCount is 0.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > MaxCount {
			return 0
		}
		return n
	}
	d, ok := parseAnswer(s)
	if !ok || d.GreaterThan(maxCountDecimal) {
		return 0
	}
	return int(d.IntPart())
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

var hundred = decimal.NewFromInt(100)

// clamp limits v to [0, limit].
func clamp(v, limit decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(v, limit)
}

// floorZero returns max(0, v).
func floorZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// sum adds all values.
func sum(vs ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(v)
	}
	return total
}
