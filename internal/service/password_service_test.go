package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"scribe/internal/auth"
	"scribe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordService_ResetFlow(t *testing.T) {
	f := newFixture(t)
	svc := f.passwordService()
	ctx := context.Background()

	user, _ := f.createUser(t, "gina", "gina@example.com", false)

	require.NoError(t, svc.SendResetLink(ctx, "gina@example.com"))
	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.HasToken())
	token := *stored.VerificationToken

	sent := f.mail.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Reset Password", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, fmt.Sprintf("%s/reset-password/%d/%s", testClientDomain, user.ID, token))

	// A second request reuses the live token.
	require.NoError(t, svc.SendResetLink(ctx, "gina@example.com"))
	again, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, token, *again.VerificationToken)

	require.NoError(t, svc.CheckResetLink(ctx, user.ID, token))
	requireCode(t, svc.CheckResetLink(ctx, user.ID, "wrong"), models.CodeValidation)
	requireCode(t, svc.CheckResetLink(ctx, 9999, token), models.CodeValidation)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, token, "N3w!Password"))
	reset, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("N3w!Password", reset.Password))
	assert.False(t, reset.HasToken())
	assert.True(t, reset.IsAccountVerified)

	err = svc.ResetPassword(ctx, user.ID, token, "An0ther!Pass")
	requireCode(t, err, models.CodeValidation)
	assert.Equal(t, "invalid link", err.Error())
}

func TestPasswordService_ResetRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)
	user, _ := f.createUser(t, "hank", "hank@example.com", false)

	err := f.passwordService().ResetPassword(context.Background(), user.ID, "whatever", "weak")
	requireCode(t, err, models.CodeValidation)
}

func TestPasswordService_ResetRequiresLiveToken(t *testing.T) {
	f := newFixture(t)
	user, _ := f.createUser(t, "ivan", "ivan@example.com", false)

	// No token was ever issued, so an empty token must not match.
	err := f.passwordService().ResetPassword(context.Background(), user.ID, "", "N3w!Password")
	requireCode(t, err, models.CodeValidation)
}

func TestPasswordService_SendResetLink_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.passwordService()
	ctx := context.Background()

	requireCode(t, svc.SendResetLink(ctx, "missing@example.com"), models.CodeNotFound)
	requireCode(t, svc.SendResetLink(ctx, "nope"), models.CodeValidation)

	f.createUser(t, "jane", "jane@example.com", false)
	f.mail.FailWith = errors.New("provider rejected")
	requireCode(t, svc.SendResetLink(ctx, "jane@example.com"), models.CodeDelegate)
}
