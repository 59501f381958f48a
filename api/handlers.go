/*
handlers.go - HTTP API handlers for the tax estimator

PURPOSE:
  Exposes the tax engine via REST API. Handles HTTP request/response and
  JSON serialization, and delegates to the engine, the settlement step and
  the renderers. Collaborator work (checkpoint writes, emails) is handed
  to the dispatcher after the response is decided.

ENDPOINTS:
  Compute:
    POST   /api/compute                    Compute tax for an answers snapshot
    POST   /api/form-guide                 Paginated BM form guide

  Schedules:
    GET    /api/schedules                  Available assessment years
    GET    /api/schedules/{year}           Brackets, limits and rebates

  Questions:
    GET    /api/questions                  Full catalog with dependencies
    POST   /api/questions/visible          Visible questions for a snapshot

  Checkpoints:
    POST   /api/checkpoints                Record a questionnaire milestone
    GET    /api/checkpoints/funnel         Sessions per checkpoint
    GET    /api/sessions/{id}/checkpoints  One session's timeline

  Email:
    POST   /api/email                      Queue the summary email

  Scenarios:
    GET    /api/scenarios                  Sample taxpayer profiles
    GET    /api/scenarios/{id}             One profile, computed

  Health:
    GET    /api/healthz                    Liveness and store status

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Checkpoint and email records
  - Dispatcher: Background collaborator jobs
  - Mailer: Email delivery
  - Sessions: One checkpoint tracker per session, so repeats are dropped
    before they reach the dispatcher
  - One calculator per loaded assessment year

ERROR HANDLING:
  Answers never produce an error; malformed values count as zero.
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, invalid checkpoint or email
  - 404: Unknown assessment year
  - 500: Store failures
  - 503: Store unreachable (health only)

SECURITY NOTE:
  No authentication. Stored answers contain income figures; keep the
  database private.

SEE ALSO:
  - dto.go: Request/response data structures
  - dispatcher.go: Background jobs
  - scenarios.go: Sample profiles
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/factory"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/cukaiku/tax-engine/questions"
	"github.com/cukaiku/tax-engine/render"
	"github.com/cukaiku/tax-engine/store/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Dispatcher *Dispatcher
	Mailer     Mailer
	Locale     render.Locale

	log      *zap.Logger
	now      func() time.Time
	sessions *filing.Sessions

	mu          sync.RWMutex
	calcs       map[int]*engine.Calculator
	defaultYear int
}

// NewHandler creates a handler with a calculator for every embedded
// assessment year. The latest year is the default.
func NewHandler(store *sqlite.Store, d *Dispatcher, m Mailer, log *zap.Logger) (*Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		Store:      store,
		Dispatcher: d,
		Mailer:     m,
		Locale:     render.LocaleEN,
		log:        log.Named("api"),
		now:        time.Now,
		calcs:      make(map[int]*engine.Calculator),
	}
	h.sessions = filing.NewSessions(filing.DefaultMaxSessions,
		func() time.Time { return h.now() },
		func(e filing.Event) { h.record(e) })
	for _, year := range factory.Years() {
		calc, err := factory.Calculator(year)
		if err != nil {
			return nil, fmt.Errorf("load YA%d: %w", year, err)
		}
		h.calcs[year] = calc
	}
	h.defaultYear = factory.Latest()
	return h, nil
}

// AddSchedule registers (or replaces) the calculator for s.Year.
func (h *Handler) AddSchedule(s *engine.Schedule) error {
	calc, err := engine.NewCalculator(s)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calcs[s.Year] = calc
	if h.defaultYear == 0 {
		h.defaultYear = s.Year
	}
	return nil
}

// SetDefaultYear selects the year used when a request names none.
func (h *Handler) SetDefaultYear(year int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.calcs[year]; !ok {
		return fmt.Errorf("YA%d: %w", year, engine.ErrUnknownYear)
	}
	h.defaultYear = year
	return nil
}

// DefaultYear returns the year used when a request names none.
func (h *Handler) DefaultYear() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultYear
}

// calculator returns the calculator for year; 0 selects the default.
func (h *Handler) calculator(year int) (*engine.Calculator, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if year == 0 {
		year = h.defaultYear
	}
	calc, ok := h.calcs[year]
	if !ok {
		return nil, fmt.Errorf("YA%d: %w", year, engine.ErrUnknownYear)
	}
	return calc, nil
}

func (h *Handler) years() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int, 0, len(h.calcs))
	for y := range h.calcs {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// =============================================================================
// COMPUTE ENDPOINTS
// =============================================================================

// Compute runs the engine for one answers snapshot.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc, err := h.calculator(req.Year)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown assessment year", err)
		return
	}

	result := calc.Compute(req.Answers)
	rep := render.NewReport(result, req.Answers)

	if req.Complete && req.SessionID != "" {
		h.sessions.Tracker(req.SessionID).Complete(req.Answers, result, rep.Settlement)
	}

	writeJSON(w, http.StatusOK, newComputeResponse(rep))
}

// FormGuide renders the paginated guide as text, or as JSON pages.
func (h *Handler) FormGuide(w http.ResponseWriter, r *http.Request) {
	var req FormGuideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc, err := h.calculator(req.Year)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown assessment year", err)
		return
	}

	result := calc.Compute(req.Answers)
	settlement := filing.SettleAnswers(result, req.Answers)
	guide := render.NewGuide(result, &settlement, req.PageLines)

	if req.Format == string(render.FormatJSON) {
		writeJSON(w, http.StatusOK, guide)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := guide.Render(w); err != nil {
		h.log.Warn("form guide write failed", zap.Error(err))
	}
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

// ListSchedules returns the loaded assessment years.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ScheduleListDTO{
		Years:   h.years(),
		Default: h.DefaultYear(),
	})
}

// GetSchedule returns one year's schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	calc, err := h.calculator(year)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown assessment year", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(calc.Schedule()))
}

// =============================================================================
// QUESTION ENDPOINTS
// =============================================================================

// ListQuestions returns the whole catalog.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Questions:    questions.Catalog,
		Sections:     questions.Sections(),
		Dependencies: questions.Dependencies(),
	})
}

// VisibleQuestions returns the questions shown for a snapshot, with
// answers to hidden questions dropped. With a session, the snapshot is
// also observed for checkpoints: a valid email fires email_captured and
// leaving the last question of a tracked section fires its checkpoint.
func (h *Handler) VisibleQuestions(w http.ResponseWriter, r *http.Request) {
	var req QuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pruned := questions.Prune(req.Answers)
	visible := questions.Visible(pruned)
	resp := QuestionsResponse{
		Questions: visible,
		Answers:   pruned,
		Total:     len(visible),
	}

	if req.SessionID != "" {
		tr := h.sessions.Tracker(req.SessionID)
		if tr.Observe(pruned) {
			resp.Fired = append(resp.Fired, filing.CheckpointEmail)
		}
		if req.Leaving != "" {
			if cp, ok := tr.Advance(visible, indexOf(visible, req.Leaving), pruned); ok {
				resp.Fired = append(resp.Fired, cp)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func indexOf(visible []questions.Question, id string) int {
	for i, q := range visible {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// CHECKPOINT ENDPOINTS
// =============================================================================

// RecordCheckpoint stores a milestone in the background. fully_completed
// carries a summary computed here from the answers. Accepted is false when
// the session already reached the checkpoint.
func (h *Handler) RecordCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req CheckpointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required", nil)
		return
	}
	cp, err := filing.ParseCheckpoint(req.Checkpoint)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid checkpoint", err)
		return
	}
	if cp == filing.CheckpointEmail && !filing.ValidEmail(req.Answers["email"]) {
		writeError(w, http.StatusBadRequest, "Invalid email address", nil)
		return
	}

	tr := h.sessions.Tracker(req.SessionID)
	var fired bool
	if cp == filing.CheckpointCompleted {
		calc, err := h.calculator(req.Year)
		if err != nil {
			writeError(w, http.StatusNotFound, "Unknown assessment year", err)
			return
		}
		result := calc.Compute(req.Answers)
		fired = tr.Complete(req.Answers, result, filing.SettleAnswers(result, req.Answers))
	} else {
		fired = tr.Fire(cp, req.Answers, nil)
	}

	writeJSON(w, http.StatusAccepted, AcceptedResponse{
		Accepted:  fired,
		SessionID: req.SessionID,
	})
}

// Funnel counts sessions per checkpoint.
func (h *Handler) Funnel(w http.ResponseWriter, r *http.Request) {
	funnel, err := h.Store.Funnel(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load funnel", err)
		return
	}
	writeJSON(w, http.StatusOK, FunnelDTO{Checkpoints: funnel})
}

// SessionCheckpoints lists one session's recorded checkpoints.
func (h *Handler) SessionCheckpoints(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListCheckpoints(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load checkpoints", err)
		return
	}
	if events == nil {
		events = []filing.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// record hands an event to the dispatcher. It reports whether the job was
// queued.
func (h *Handler) record(e filing.Event) bool {
	if h.Store == nil || h.Dispatcher == nil {
		return false
	}
	return h.Dispatcher.Submit("checkpoint:"+string(e.Checkpoint), func(ctx context.Context) error {
		inserted, err := h.Store.SaveCheckpoint(ctx, e)
		if err != nil {
			return err
		}
		h.log.Debug("checkpoint",
			zap.String("session_id", e.SessionID),
			zap.String("checkpoint", string(e.Checkpoint)),
			zap.Bool("inserted", inserted))
		return nil
	})
}

// =============================================================================
// EMAIL ENDPOINTS
// =============================================================================

// SendEmail renders the summary email and queues its delivery. The
// delivery outcome is recorded, never returned.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !filing.ValidEmail(req.To) {
		writeError(w, http.StatusBadRequest, "Invalid email address", nil)
		return
	}

	calc, err := h.calculator(req.Year)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown assessment year", err)
		return
	}

	locale := h.Locale
	if req.Locale != "" {
		locale = render.ParseLocale(req.Locale)
	}

	result := calc.Compute(req.Answers)
	msg, err := render.Email(locale, req.To, render.NewReport(result, req.Answers))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render email", err)
		return
	}

	queued := h.deliver(req.SessionID, locale, msg)
	if req.SessionID != "" {
		answers := req.Answers.Clone()
		answers["email"] = req.To
		h.sessions.Tracker(req.SessionID).Observe(answers)
	}

	writeJSON(w, http.StatusAccepted, EmailResponse{Queued: queued, Subject: msg.Subject})
}

func (h *Handler) deliver(sessionID string, locale render.Locale, msg *render.Message) bool {
	if h.Mailer == nil || h.Dispatcher == nil {
		return false
	}
	return h.Dispatcher.Submit("email", func(ctx context.Context) error {
		sendErr := h.Mailer.Send(ctx, msg)
		if h.Store != nil {
			rec := sqlite.EmailRecord{
				SessionID: sessionID,
				To:        msg.To,
				Subject:   msg.Subject,
				Locale:    string(locale),
				Status:    sqlite.EmailSent,
			}
			if sendErr != nil {
				rec.Status = sqlite.EmailFailed
				rec.Error = sendErr.Error()
			}
			if _, err := h.Store.SaveEmail(ctx, rec); err != nil {
				return errors.Join(sendErr, err)
			}
		}
		return sendErr
	})
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthDTO{Status: "ok", Years: h.years(), Store: "none"}
	if h.Dispatcher != nil {
		resp.Jobs = h.Dispatcher.Stats()
	}
	status := http.StatusOK
	if h.Store != nil {
		resp.Store = "ok"
		if err := h.Store.Ping(r.Context()); err != nil {
			resp.Status, resp.Store = "degraded", "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeJSON reads a request body. An empty body decodes as the zero value.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
