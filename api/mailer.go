package api

import (
	"context"
	"sync"

	"github.com/cukaiku/tax-engine/render"
	"go.uber.org/zap"
)

// Mailer delivers a rendered summary email.
type Mailer interface {
	Send(ctx context.Context, msg *render.Message) error
}

// LogMailer logs messages instead of delivering them. It is the default
// until a delivery provider is configured.
type LogMailer struct {
	From string
	log  *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(from string, log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{From: from, log: log.Named("mailer")}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg *render.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info("email",
		zap.String("from", m.From),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)))
	return nil
}

// MemoryMailer keeps sent messages in memory.
type MemoryMailer struct {
	mu   sync.Mutex
	sent []render.Message
	Err  error // returned by Send when set
}

// Send implements Mailer.
func (m *MemoryMailer) Send(ctx context.Context, msg *render.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, *msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *MemoryMailer) Sent() []render.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]render.Message(nil), m.sent...)
}
