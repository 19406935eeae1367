// Package mailer delivers account emails through SES or the application log.
package mailer

import (
	"bytes"
	"context"
	"html/template"

	"scribe/internal/models"
	"scribe/internal/observability"
)

// Message is a single outgoing email.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Text     string
	Template string
}

// Mailer sends one message. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var (
	verifyTmpl = template.Must(template.New("verify").Parse(
		`<div><p>Click on the link below to verify your email</p><a href="{{.}}">Verify</a></div>`))
	resetTmpl = template.Must(template.New("reset").Parse(
		`<div><p>Click on the link below to reset your password</p><a href="{{.}}">Reset Password</a></div>`))
)

// VerificationEmail builds the email sent after registration.
func VerificationEmail(to, link string) (Message, error) {
	html, err := render(verifyTmpl, link)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Verify Your Email",
		HTML:     html,
		Text:     "Open the following link to verify your email: " + link,
		Template: "verify",
	}, nil
}

// ResetPasswordEmail builds the email carrying a password reset link.
func ResetPasswordEmail(to, link string) (Message, error) {
	html, err := render(resetTmpl, link)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Reset Password",
		HTML:     html,
		Text:     "Open the following link to reset your password: " + link,
		Template: "reset",
	}, nil
}

func render(t *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, link); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Instrument wraps a mailer so that every failure is traced, counted and
// returned as a DELEGATE_ERROR.
func Instrument(m Mailer) Mailer {
	return &instrumented{next: m}
}

type instrumented struct {
	next Mailer
}

func (m *instrumented) Send(ctx context.Context, msg Message) error {
	ctx, span := observability.StartDelegateSpan(ctx, "mailer", "send")
	err := m.next.Send(ctx, msg)
	observability.EndSpan(span, err)

	tmpl := msg.Template
	if tmpl == "" {
		tmpl = "other"
	}
	if err != nil {
		observability.RecordDelegateFailure("mailer", "send")
		observability.EmailsSent.WithLabelValues(tmpl, "failed").Inc()
		return models.NewDelegateError("email delivery", err)
	}
	observability.EmailsSent.WithLabelValues(tmpl, "sent").Inc()
	return nil
}
