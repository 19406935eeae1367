package mailer

import (
	"context"
	"log/slog"

	"scribe/internal/middleware"
)

// LogMailer writes messages to the application log instead of sending them.
// Used in development so verification and reset links can be copied from
// the console.
type LogMailer struct{}

// NewLogMailer returns a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	middleware.Logger.InfoContext(ctx, "email not sent (log driver)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text),
	)
	return nil
}
