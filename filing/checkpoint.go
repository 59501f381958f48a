package filing

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/questions"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CHECKPOINTS
// =============================================================================

// Checkpoint is a questionnaire milestone recorded for analytics.
type Checkpoint string

const (
	CheckpointIncome    Checkpoint = "income_completed"
	CheckpointPRS       Checkpoint = "prs_completed"
	CheckpointCompleted Checkpoint = "fully_completed"
	CheckpointEmail     Checkpoint = "email_captured"
)

// Checkpoints lists every checkpoint in the order a session reaches them.
var Checkpoints = []Checkpoint{CheckpointIncome, CheckpointPRS, CheckpointCompleted, CheckpointEmail}

// ErrUnknownCheckpoint is returned for a checkpoint name outside Checkpoints.
var ErrUnknownCheckpoint = errors.New("unknown checkpoint")

// ParseCheckpoint validates a checkpoint name.
func ParseCheckpoint(s string) (Checkpoint, error) {
	for _, cp := range Checkpoints {
		if string(cp) == s {
			return cp, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownCheckpoint)
}

// Sections whose completion fires a checkpoint.
var sectionCheckpoints = map[string]Checkpoint{
	questions.SectionOtherIncome: CheckpointIncome,
	questions.SectionInsurance:   CheckpointPRS,
}

// Summary is attached to the fully_completed checkpoint.
type Summary struct {
	TotalIncome decimal.Decimal `json:"total_income"`
	FinalTax    decimal.Decimal `json:"final_tax"`
	TotalRelief decimal.Decimal `json:"total_relief"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
}

// NewSummary builds the checkpoint summary from a result and its settlement.
func NewSummary(r *engine.ComputeResult, s Settlement) *Summary {
	return &Summary{
		TotalIncome: r.TotalIncome,
		FinalTax:    r.FinalTax,
		TotalRelief: r.TotalRelief,
		BalanceDue:  s.BalanceDue,
	}
}

// Event is one recorded checkpoint.
type Event struct {
	SessionID  string         `json:"session_id"`
	Checkpoint Checkpoint     `json:"checkpoint"`
	Timestamp  time.Time      `json:"timestamp"`
	FormType   string         `json:"form_type,omitempty"`
	Answers    engine.Answers `json:"answers"`
	Summary    *Summary       `json:"summary,omitempty"`
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidEmail is the questionnaire's email check.
func ValidEmail(email string) bool {
	return strings.Contains(email, "@")
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker fires each checkpoint at most once per session.
type Tracker struct {
	sessionID string
	emit      func(Event)
	now       func() time.Time

	mu    sync.Mutex
	fired map[Checkpoint]bool
}

// NewTracker creates a tracker. emit receives each event exactly once and
// must not block; hand slow work to a dispatcher.
func NewTracker(sessionID string, emit func(Event)) *Tracker {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return &Tracker{
		sessionID: sessionID,
		emit:      emit,
		now:       time.Now,
		fired:     make(map[Checkpoint]bool),
	}
}

// SessionID returns the session the tracker records for.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Fire records cp unless it already fired. It reports whether an event was
// emitted.
func (t *Tracker) Fire(cp Checkpoint, a engine.Answers, summary *Summary) bool {
	return t.fire(cp, a, a["formType"], summary)
}

func (t *Tracker) fire(cp Checkpoint, a engine.Answers, formType string, summary *Summary) bool {
	t.mu.Lock()
	if t.fired[cp] {
		t.mu.Unlock()
		return false
	}
	t.fired[cp] = true
	t.mu.Unlock()

	if t.emit != nil {
		t.emit(Event{
			SessionID:  t.sessionID,
			Checkpoint: cp,
			Timestamp:  t.now().UTC(),
			FormType:   formType,
			Answers:    a.Clone(),
			Summary:    summary,
		})
	}
	return true
}

// Fired reports whether cp already fired.
func (t *Tracker) Fired(cp Checkpoint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired[cp]
}

// Advance is called when the user moves past visible[i]. Leaving the last
// question of a tracked section fires that section's checkpoint, which is
// returned.
func (t *Tracker) Advance(visible []questions.Question, i int, a engine.Answers) (Checkpoint, bool) {
	if i < 0 || i >= len(visible) {
		return "", false
	}
	section := visible[i].Section
	cp, ok := sectionCheckpoints[section]
	if ok && questions.CompletesSection(visible, i, section) && t.Fire(cp, a, nil) {
		return cp, true
	}
	return "", false
}

// Observe is called on every answer change.
func (t *Tracker) Observe(a engine.Answers) bool {
	if ValidEmail(a["email"]) {
		return t.Fire(CheckpointEmail, a, nil)
	}
	return false
}

// Complete fires fully_completed with the result summary. The event's form
// type is the one the engine resolved.
func (t *Tracker) Complete(a engine.Answers, r *engine.ComputeResult, s Settlement) bool {
	return t.fire(CheckpointCompleted, a, string(r.FormType), NewSummary(r, s))
}

// =============================================================================
// SESSIONS
// =============================================================================

// DefaultMaxSessions bounds the trackers a Sessions keeps in memory.
const DefaultMaxSessions = 10000

// Sessions keeps one Tracker per session ID for a server. Once more than
// max sessions are held the oldest is forgotten; a forgotten session may
// emit again and the store's unique key absorbs the duplicate.
type Sessions struct {
	max  int
	now  func() time.Time
	emit func(Event)

	mu       sync.Mutex
	trackers map[string]*Tracker
	order    []string
}

// NewSessions creates a registry whose trackers share emit and now.
// max <= 0 selects DefaultMaxSessions; a nil now uses time.Now.
func NewSessions(max int, now func() time.Time, emit func(Event)) *Sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{
		max:      max,
		now:      now,
		emit:     emit,
		trackers: make(map[string]*Tracker),
	}
}

// Tracker returns the tracker for sessionID, creating it on first use.
func (s *Sessions) Tracker(sessionID string) *Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.trackers[sessionID]; ok {
		return t
	}
	t := NewTracker(sessionID, s.emit)
	t.now = s.now
	s.trackers[sessionID] = t
	s.order = append(s.order, sessionID)

	for len(s.order) > s.max {
		delete(s.trackers, s.order[0])
		s.order = s.order[1:]
	}
	return t
}

// Len returns the number of sessions held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trackers)
}
