/*
Package questions defines the questionnaire that produces engine.Answers.

PURPOSE:
  The engine reads a sparse answers map and treats every absent key as
  "not claiming". This package owns the other half of that contract: which
  question exists, which section it belongs to, and when it is shown.

VISIBILITY:
  A question's ShowIf is a list of conditions over other answers, all of
  which must hold. Conditions are data, not closures, so the full
  dependency graph is statically enumerable: Dependencies() lists, for
  every question, the fields its visibility reads.

  Ops:
    equals      answer == value
    not_equals  answer != value (an absent answer is not equal)
    positive    answer parses as a count > 0

USAGE:
  for _, q := range questions.Visible(answers) {
      fmt.Println(q.ID, q.Text)
  }

SEE ALSO:
  - catalog.go: The question list in display order
  - engine/answers.go: How answers are parsed
*/
package questions

import (
	"github.com/cukaiku/tax-engine/engine"
)

// =============================================================================
// TYPES
// =============================================================================

// Kind is the input control a question uses.
type Kind string

const (
	KindCurrency Kind = "currency"
	KindNumber   Kind = "number"
	KindYesNo    Kind = "yesno"
	KindSelect   Kind = "select"
	KindEmail    Kind = "email"
)

// Op is a visibility predicate over one answer.
type Op string

const (
	OpEquals    Op = "equals"
	OpNotEquals Op = "not_equals"
	OpPositive  Op = "positive"
)

// Condition is one visibility predicate.
type Condition struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value string `json:"value,omitempty"`
}

// Holds evaluates the condition against answers.
func (c Condition) Holds(a engine.Answers) bool {
	switch c.Op {
	case OpEquals:
		return a[c.Field] == c.Value
	case OpNotEquals:
		return a[c.Field] != c.Value
	case OpPositive:
		return a.Count(c.Field) > 0
	}
	return false
}

// Equals builds an equals condition.
func Equals(field, value string) Condition {
	return Condition{Field: field, Op: OpEquals, Value: value}
}

// NotEquals builds a not_equals condition.
func NotEquals(field, value string) Condition {
	return Condition{Field: field, Op: OpNotEquals, Value: value}
}

// Positive builds a positive-count condition.
func Positive(field string) Condition {
	return Condition{Field: field, Op: OpPositive}
}

// Option is one choice of a select question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is one step of the questionnaire.
type Question struct {
	ID      string      `json:"id"`
	Section string      `json:"section"`
	Text    string      `json:"question"`
	Tip     string      `json:"tip,omitempty"`
	Kind    Kind        `json:"type"`
	Options []Option    `json:"options,omitempty"`
	ShowIf  []Condition `json:"show_if,omitempty"`
	Max     int64       `json:"max,omitempty"` // input hint only; caps live in the schedule
	FormRef string      `json:"form_ref,omitempty"`
}

// Visible reports whether every ShowIf condition holds.
func (q Question) Visible(a engine.Answers) bool {
	for _, c := range q.ShowIf {
		if !c.Holds(a) {
			return false
		}
	}
	return true
}

// DependsOn returns the fields the question's visibility reads, in order
// and without duplicates.
func (q Question) DependsOn() []string {
	var out []string
	seen := make(map[string]bool, len(q.ShowIf))
	for _, c := range q.ShowIf {
		if !seen[c.Field] {
			seen[c.Field] = true
			out = append(out, c.Field)
		}
	}
	return out
}

// =============================================================================
// CATALOG QUERIES
// =============================================================================

// Visible returns the questions shown for answers, in catalog order.
func Visible(a engine.Answers) []Question {
	var out []Question
	for _, q := range Catalog {
		if q.Visible(a) {
			out = append(out, q)
		}
	}
	return out
}

// VisibleIDs returns the IDs of Visible(a).
func VisibleIDs(a engine.Answers) []string {
	visible := Visible(a)
	ids := make([]string, len(visible))
	for i, q := range visible {
		ids[i] = q.ID
	}
	return ids
}

// ByID looks up a question.
func ByID(id string) (Question, bool) {
	for _, q := range Catalog {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Dependencies maps each conditionally shown question to the fields its
// visibility reads.
func Dependencies() map[string][]string {
	deps := make(map[string][]string)
	for _, q := range Catalog {
		if d := q.DependsOn(); len(d) > 0 {
			deps[q.ID] = d
		}
	}
	return deps
}

// Sections returns the section keys in first-appearance order.
func Sections() []string {
	var out []string
	seen := make(map[string]bool)
	for _, q := range Catalog {
		if !seen[q.Section] {
			seen[q.Section] = true
			out = append(out, q.Section)
		}
	}
	return out
}

// CompletesSection reports whether visible[i] is the last visible question
// of section, so that moving past it leaves the section.
func CompletesSection(visible []Question, i int, section string) bool {
	if i < 0 || i >= len(visible) || visible[i].Section != section {
		return false
	}
	return i == len(visible)-1 || visible[i+1].Section != section
}

// Prune drops answers whose question is no longer visible. Keys that are
// not catalog questions are kept.
func Prune(a engine.Answers) engine.Answers {
	out := a.Clone()
	for _, q := range Catalog {
		if _, ok := out[q.ID]; ok && !q.Visible(out) {
			delete(out, q.ID)
		}
	}
	return out
}
