package testutil

import (
	"context"
	"sync"

	"scribe/internal/mailer"
)

// MailRecorder is a mailer.Mailer that keeps every message in memory.
type MailRecorder struct {
	mu       sync.Mutex
	Sent     []mailer.Message
	FailWith error
}

// Send records msg or returns FailWith.
func (m *MailRecorder) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *MailRecorder) Messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.Sent...)
}
