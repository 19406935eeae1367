package models

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"not found", NewNotFoundError("post"), fiber.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("no token"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("nope"), fiber.StatusForbidden},
		{"conflict", NewConflictError("dup"), fiber.StatusConflict},
		{"delegate", NewDelegateError("upload image", errors.New("boom")), fiber.StatusBadGateway},
		{"internal", NewInternalError(errors.New("db")), fiber.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NewForbiddenError("nope")), fiber.StatusForbidden},
		{"plain", errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestRespondWithError_HidesCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("pq: password=secret")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`, string(body))
}

func TestUserTokenMatches(t *testing.T) {
	tok := "abc"
	u := &User{VerificationToken: &tok}
	assert.True(t, u.TokenMatches("abc"))
	assert.False(t, u.TokenMatches(""))
	assert.False(t, u.TokenMatches("abd"))

	u.VerificationToken = nil
	assert.False(t, u.TokenMatches("abc"))
}
