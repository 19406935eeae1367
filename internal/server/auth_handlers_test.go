package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"scribe/internal/models"
	"scribe/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) liveToken(t *testing.T, email string) string {
	t.Helper()
	user, err := repository.NewUserRepository(ts.db).GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.True(t, user.HasToken())
	return *user.VerificationToken
}

func TestAuthFlow_RegisterVerifyLogin(t *testing.T) {
	ts := newTestServer(t)
	register := map[string]string{"username": "Carol", "email": "carol@example.com", "password": testPassword}
	login := map[string]string{"email": "carol@example.com", "password": testPassword}

	resp, body := ts.doJSON(t, http.MethodPost, "/api/auth/register", register, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Please verify your email address")
	require.Len(t, ts.mail.Messages(), 1)
	assert.Equal(t, "carol@example.com", ts.mail.Messages()[0].To)

	// Unverified accounts are refused and mailed again.
	resp, body = ts.doJSON(t, http.MethodPost, "/api/auth/login", login, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, decodeError(t, body).Code)
	assert.Len(t, ts.mail.Messages(), 2)

	token := ts.liveToken(t, "carol@example.com")
	resp, body = ts.doJSON(t, http.MethodGet, "/api/auth/verify/"+token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "verified successfully")

	resp, body = ts.doJSON(t, http.MethodGet, "/api/auth/verify/"+token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid link", decodeError(t, body).Error)

	resp, body = ts.doJSON(t, http.MethodPost, "/api/auth/login", login, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var result struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"isAdmin"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "carol", result.Username)
	assert.False(t, result.IsAdmin)
	assert.NotEmpty(t, result.Token)

	identity, err := ts.srv.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.ID, identity.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "dave", "dave@example.com", false)

	resp, body := ts.doJSON(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "dave2", "email": "dave@example.com", "password": testPassword}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "user already exist", decodeError(t, body).Error)
}

func TestRegister_MailFailureStillCreatesAccount(t *testing.T) {
	ts := newTestServer(t)
	ts.mail.FailWith = errors.New("smtp down")

	resp, body := ts.doJSON(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "erin", "email": "erin@example.com", "password": testPassword}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ts.liveToken(t, "erin@example.com")
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"weak password", map[string]string{"username": "frank", "email": "frank@example.com", "password": "password"}},
		{"bad email", map[string]string{"username": "frank", "email": "frank", "password": testPassword}},
		{"short username", map[string]string{"username": "f", "email": "frank@example.com", "password": testPassword}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.doJSON(t, http.MethodPost, "/api/auth/register", tt.payload, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, models.CodeValidation, decodeError(t, body).Code)
		})
	}

	resp, _ := ts.doJSON(t, http.MethodPost, "/api/auth/register", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "gina", "gina@example.com", false)

	resp, body := ts.doJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "gina@example.com", "password": "Wr0ng!Pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	wrongPassword := decodeError(t, body)

	resp, body = ts.doJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@example.com", "password": testPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrongPassword, decodeError(t, body))
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.createUser(t, "hank", "hank@example.com", false)
	base := "/api/password/reset-password/" + itoa(user.ID) + "/"

	resp, body := ts.doJSON(t, http.MethodPost, "/api/password/reset-password-link",
		map[string]string{"email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	resp, body = ts.doJSON(t, http.MethodPost, "/api/password/reset-password-link",
		map[string]string{"email": "hank@example.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Len(t, ts.mail.Messages(), 1)
	token := ts.liveToken(t, "hank@example.com")
	assert.Contains(t, ts.mail.Messages()[0].Text, "/reset-password/"+itoa(user.ID)+"/"+token)

	resp, _ = ts.doJSON(t, http.MethodGet, base+"wrong-token", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.doJSON(t, http.MethodGet, base+token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "valid link")

	const newPassword = "N3w!Passw0rd"
	resp, body = ts.doJSON(t, http.MethodPost, base+token, map[string]string{"password": newPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// The token is single-use.
	resp, body = ts.doJSON(t, http.MethodPost, base+token, map[string]string{"password": newPassword}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid link", decodeError(t, body).Error)

	resp, _ = ts.doJSON(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "hank@example.com", "password": newPassword}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSendResetLink_MailFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "ivan", "ivan@example.com", false)
	ts.mail.FailWith = errors.New("provider rejected")

	resp, body := ts.doJSON(t, http.MethodPost, "/api/password/reset-password-link",
		map[string]string{"email": "ivan@example.com"}, "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	errResp := decodeError(t, body)
	assert.Equal(t, models.CodeDelegate, errResp.Code)
	assert.NotContains(t, errResp.Error, "provider rejected")
}
