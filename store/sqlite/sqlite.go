/*
Package sqlite persists questionnaire checkpoints and sent emails in SQLite.

PURPOSE:
  The checkpoint tracker fires each checkpoint once per browser session.
  Sessions restart, tabs are duplicated and clients retry, so the store
  enforces the same rule a second time: a (session, checkpoint) pair is
  stored at most once and later duplicates are ignored.

KEY TABLES:
  checkpoints:  One row per (session_id, checkpoint), answers snapshot and
                the optional completion summary as JSON
  emails:       Summary emails handed to the mailer, with delivery status

INDEXES:
  - idx_checkpoints_session: Session timeline
  - idx_checkpoints_name_time: Funnel counts per checkpoint

CONCURRENCY:
  Uses sync.RWMutex around the connection, as SQLite allows one writer.

WAL MODE:
  Opened with WAL so analytics reads do not block checkpoint writes.

USAGE:
  store, err := sqlite.New("./data/cukai.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  inserted, err := store.SaveCheckpoint(ctx, event)

SEE ALSO:
  - filing/checkpoint.go: Event and Tracker
  - api/dispatcher.go: Writes run as background jobs
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

// Fixed width so that text ordering is time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store persists checkpoint events.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		checkpoint TEXT NOT NULL,
		form_type TEXT,
		answers_json TEXT NOT NULL,
		summary_json TEXT,
		recorded_at TEXT NOT NULL,
		UNIQUE(session_id, checkpoint)
	);

	CREATE INDEX IF NOT EXISTS idx_checkpoints_session
		ON checkpoints(session_id, recorded_at);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_name_time
		ON checkpoints(checkpoint, recorded_at);

	CREATE TABLE IF NOT EXISTS emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		to_address TEXT NOT NULL,
		subject TEXT NOT NULL,
		locale TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CHECKPOINTS
// =============================================================================

// SaveCheckpoint stores an event. It reports false without error when the
// session already recorded this checkpoint.
func (s *Store) SaveCheckpoint(ctx context.Context, e filing.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers, err := json.Marshal(e.Answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}
	var summary sql.NullString
	if e.Summary != nil {
		b, err := json.Marshal(e.Summary)
		if err != nil {
			return false, fmt.Errorf("marshal summary: %w", err)
		}
		summary = sql.NullString{String: string(b), Valid: true}
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO checkpoints
			(session_id, checkpoint, form_type, answers_json, summary_json, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, string(e.Checkpoint), e.FormType, string(answers), summary,
		ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("insert checkpoint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListCheckpoints returns a session's events in the order they were
// recorded.
func (s *Store) ListCheckpoints(ctx context.Context, sessionID string) ([]filing.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, checkpoint, form_type, answers_json, summary_json, recorded_at
		FROM checkpoints
		WHERE session_id = ?
		ORDER BY recorded_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []filing.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (filing.Event, error) {
	var (
		e           filing.Event
		checkpoint  string
		formType    sql.NullString
		answersJSON string
		summaryJSON sql.NullString
		recordedAt  string
	)
	if err := rows.Scan(&e.SessionID, &checkpoint, &formType, &answersJSON, &summaryJSON, &recordedAt); err != nil {
		return e, err
	}
	e.Checkpoint = filing.Checkpoint(checkpoint)
	e.FormType = formType.String

	e.Answers = engine.Answers{}
	if err := json.Unmarshal([]byte(answersJSON), &e.Answers); err != nil {
		return e, fmt.Errorf("decode answers: %w", err)
	}
	if summaryJSON.Valid {
		var sum filing.Summary
		if err := json.Unmarshal([]byte(summaryJSON.String), &sum); err != nil {
			return e, fmt.Errorf("decode summary: %w", err)
		}
		e.Summary = &sum
	}
	t, err := time.Parse(timeLayout, recordedAt)
	if err != nil {
		return e, fmt.Errorf("decode recorded_at: %w", err)
	}
	e.Timestamp = t
	return e, nil
}

// HasCheckpoint reports whether a session recorded cp.
func (s *Store) HasCheckpoint(ctx context.Context, sessionID string, cp filing.Checkpoint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM checkpoints WHERE session_id = ? AND checkpoint = ?",
		sessionID, string(cp)).Scan(&n)
	return n > 0, err
}

// Funnel counts sessions per checkpoint. Every known checkpoint is
// present, with zero when nothing recorded it.
func (s *Store) Funnel(ctx context.Context) (map[filing.Checkpoint]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[filing.Checkpoint]int, len(filing.Checkpoints))
	for _, cp := range filing.Checkpoints {
		out[cp] = 0
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT checkpoint, COUNT(*) FROM checkpoints GROUP BY checkpoint")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cp string
			n  int
		)
		if err := rows.Scan(&cp, &n); err != nil {
			return nil, err
		}
		out[filing.Checkpoint(cp)] = n
	}
	return out, rows.Err()
}

// =============================================================================
// EMAILS
// =============================================================================

// EmailStatus is the delivery outcome of a summary email.
type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailRecord is one summary email handed to the mailer.
type EmailRecord struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id,omitempty"`
	To        string      `json:"to"`
	Subject   string      `json:"subject"`
	Locale    string      `json:"locale"`
	Status    EmailStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// SaveEmail records a delivery attempt and returns its id.
func (s *Store) SaveEmail(ctx context.Context, r EmailRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (session_id, to_address, subject, locale, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.To, r.Subject, r.Locale, string(r.Status), r.Error,
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert email: %w", err)
	}
	return res.LastInsertId()
}

// GetEmail loads one email record.
func (s *Store) GetEmail(ctx context.Context, id int64) (*EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r         EmailRecord
		sessionID sql.NullString
		status    string
		errText   sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, to_address, subject, locale, status, error, created_at
		FROM emails WHERE id = ?`, id).
		Scan(&r.ID, &sessionID, &r.To, &r.Subject, &r.Locale, &status, &errText, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("email %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r.SessionID = sessionID.String
	r.Status = EmailStatus(status)
	r.Error = errText.String
	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	return &r, nil
}
