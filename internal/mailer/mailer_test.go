package mailer

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	sesiface.SESAPI
	mock.Mock
}

func (m *mockSES) SendEmailWithContext(ctx aws.Context, in *ses.SendEmailInput, _ ...request.Option) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	return &ses.SendEmailOutput{}, args.Error(0)
}

func TestVerificationEmail(t *testing.T) {
	msg, err := VerificationEmail("jane@example.com", "http://localhost:3000/verify/abc")
	require.NoError(t, err)
	assert.Equal(t, "Verify Your Email", msg.Subject)
	assert.Contains(t, msg.HTML, `href="http://localhost:3000/verify/abc"`)
	assert.Contains(t, msg.Text, "http://localhost:3000/verify/abc")
}

func TestResetPasswordEmail_EscapesLink(t *testing.T) {
	msg, err := ResetPasswordEmail("jane@example.com", `http://x/"><script>`)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestSESMailer_Send(t *testing.T) {
	client := &mockSES{}
	m := NewSESMailerWithClient(client, "no-reply@example.com")

	client.On("SendEmailWithContext", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.StringValue(in.Source) == "no-reply@example.com" &&
			aws.StringValue(in.Destination.ToAddresses[0]) == "jane@example.com" &&
			aws.StringValue(in.Message.Subject.Data) == "Reset Password"
	})).Return(nil).Once()

	msg, err := ResetPasswordEmail("jane@example.com", "http://localhost:3000/reset-password/1/abc")
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), msg))
	client.AssertExpectations(t)
}

func TestInstrument_WrapsFailure(t *testing.T) {
	client := &mockSES{}
	client.On("SendEmailWithContext", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	m := Instrument(NewSESMailerWithClient(client, "no-reply@example.com"))
	err := m.Send(context.Background(), Message{To: "jane@example.com", Template: "verify"})
	assert.True(t, models.IsCode(err, models.CodeDelegate))
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, Instrument(NewLogMailer()).Send(context.Background(), Message{To: "a@b.co"}))
}
