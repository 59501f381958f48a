package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func event(session string, cp filing.Checkpoint, at time.Time) filing.Event {
	return filing.Event{
		SessionID:  session,
		Checkpoint: cp,
		Timestamp:  at,
		FormType:   "BE",
		Answers:    engine.Answers{"formType": "BE", "employmentIncome": "60000"},
	}
}

// =============================================================================
// CHECKPOINTS
// =============================================================================

func TestSaveCheckpoint_OncePerSession(t *testing.T) {
	// GIVEN: A session that already recorded income_completed
	// WHEN: The same checkpoint arrives again
	// THEN: It is ignored without error

	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	inserted, err := s.SaveCheckpoint(ctx, event("sess-1", filing.CheckpointIncome, at))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.SaveCheckpoint(ctx, event("sess-1", filing.CheckpointIncome, at.Add(time.Minute)))
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = s.SaveCheckpoint(ctx, event("sess-2", filing.CheckpointIncome, at))
	require.NoError(t, err)
	assert.True(t, inserted, "other sessions are independent")

	events, err := s.ListCheckpoints(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(at), "first write wins")
}

func TestListCheckpoints_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)

	done := event("sess-1", filing.CheckpointCompleted, at.Add(time.Hour))
	done.Summary = &filing.Summary{
		TotalIncome: decimal.NewFromInt(60000),
		FinalTax:    decimal.NewFromInt(1610),
		TotalRelief: decimal.NewFromInt(9000),
		BalanceDue:  decimal.NewFromInt(-390),
	}
	_, err := s.SaveCheckpoint(ctx, done)
	require.NoError(t, err)
	_, err = s.SaveCheckpoint(ctx, event("sess-1", filing.CheckpointIncome, at))
	require.NoError(t, err)

	events, err := s.ListCheckpoints(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, filing.CheckpointIncome, events[0].Checkpoint, "ordered by time")
	assert.Nil(t, events[0].Summary)
	assert.True(t, events[0].Timestamp.Equal(at))
	assert.Equal(t, "60000", events[0].Answers["employmentIncome"])

	got := events[1]
	assert.Equal(t, filing.CheckpointCompleted, got.Checkpoint)
	assert.Equal(t, "BE", got.FormType)
	require.NotNil(t, got.Summary)
	assert.True(t, got.Summary.FinalTax.Equal(decimal.NewFromInt(1610)))
	assert.True(t, got.Summary.BalanceDue.Equal(decimal.NewFromInt(-390)))

	none, err := s.ListCheckpoints(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveCheckpoint_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.SaveCheckpoint(ctx, event("sess-1", filing.CheckpointPRS, time.Now()))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	has, err := s.HasCheckpoint(ctx, "sess-1", filing.CheckpointPRS)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestFunnel(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now()

	for _, e := range []filing.Event{
		event("a", filing.CheckpointIncome, now),
		event("b", filing.CheckpointIncome, now),
		event("a", filing.CheckpointPRS, now),
		event("a", filing.CheckpointIncome, now),
	} {
		_, err := s.SaveCheckpoint(ctx, e)
		require.NoError(t, err)
	}

	funnel, err := s.Funnel(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[filing.Checkpoint]int{
		filing.CheckpointIncome:    2,
		filing.CheckpointPRS:       1,
		filing.CheckpointCompleted: 0,
		filing.CheckpointEmail:     0,
	}, funnel)
}

func TestNew_FileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cukai.db")

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.SaveCheckpoint(ctx, event("sess-1", filing.CheckpointEmail, time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	has, err := s.HasCheckpoint(ctx, "sess-1", filing.CheckpointEmail)
	require.NoError(t, err)
	assert.True(t, has)
}

// =============================================================================
// EMAILS
// =============================================================================

func TestEmails(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	id, err := s.SaveEmail(ctx, EmailRecord{
		SessionID: "sess-1",
		To:        "a@b.my",
		Subject:   "Your YA 2025 Form BE Guide",
		Locale:    "en",
		Status:    EmailFailed,
		Error:     "smtp timeout",
	})
	require.NoError(t, err)

	got, err := s.GetEmail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.my", got.To)
	assert.Equal(t, EmailFailed, got.Status)
	assert.Equal(t, "smtp timeout", got.Error)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.GetEmail(ctx, id+1)
	assert.True(t, errors.Is(err, ErrNotFound))
}
