// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strconv"
	"strings"

	"scribe/internal/auth"
	"scribe/internal/models"
	"scribe/internal/policy"

	"github.com/gofiber/fiber/v2"
)

const (
	localIdentity  = "identity"
	localUserID    = "userID"
	localAuthError = "authError"
)

// Authenticate extracts the bearer token when present and stores the caller
// identity in Fiber locals. A missing or unusable token leaves the request
// anonymous; the failure is kept so protected routes can report it.
func Authenticate(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Locals(localAuthError, models.NewUnauthorizedError("invalid authorization header format"))
			return c.Next()
		}

		identity, err := issuer.Verify(parts[1])
		if err != nil {
			c.Locals(localAuthError, models.NewUnauthorizedError("invalid token, access denied"))
			return c.Next()
		}

		setIdentity(c, identity)
		return c.Next()
	}
}

// WebSocketAuthRequired validates a token passed in the `token` query parameter,
// falling back to the Authorization header.
func WebSocketAuthRequired(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}

		identity, err := issuer.Verify(token)
		if err != nil {
			msg := "invalid token, access denied"
			if err == auth.ErrTokenMissing {
				msg = policy.MsgNoToken
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}

		setIdentity(c, identity)
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, identity *auth.Identity) {
	c.Locals(localIdentity, identity)
	c.Locals(localUserID, identity.UserID)
}

// IdentityFrom returns the caller identity stored by Authenticate, or nil for
// anonymous requests.
func IdentityFrom(c *fiber.Ctx) *auth.Identity {
	identity, _ := c.Locals(localIdentity).(*auth.Identity)
	return identity
}

// rejectedToken returns the error recorded by Authenticate for an unusable
// bearer token.
func rejectedToken(c *fiber.Ctx) error {
	if IdentityFrom(c) != nil {
		return nil
	}
	if err, ok := c.Locals(localAuthError).(*models.AppError); ok {
		return err
	}
	return nil
}

// Require enforces an identity-only policy.
func Require(check policy.Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := rejectedToken(c); err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if err := check(IdentityFrom(c), 0); err != nil {
			return models.RespondWithError(c, models.StatusCode(err), err)
		}
		return c.Next()
	}
}

// RequireForParam enforces a policy whose owner is the user id found in the
// named route parameter.
func RequireForParam(check policy.Check, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Missing identity is reported before a malformed id.
		if err := rejectedToken(c); err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if err := policy.Authenticated(IdentityFrom(c), 0); err != nil {
			return models.RespondWithError(c, models.StatusCode(err), err)
		}
		ownerID, err := strconv.ParseUint(c.Params(param), 10, 32)
		if err != nil || ownerID == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("invalid id"))
		}
		if err := check(IdentityFrom(c), uint(ownerID)); err != nil {
			return models.RespondWithError(c, models.StatusCode(err), err)
		}
		return c.Next()
	}
}

// AuthRequired rejects anonymous callers.
func AuthRequired() fiber.Handler {
	return Require(policy.Authenticated)
}

// AdminRequired rejects callers without the admin flag.
func AdminRequired() fiber.Handler {
	return Require(policy.Admin)
}

// SelfRequired allows only the user addressed by the route parameter.
func SelfRequired(param string) fiber.Handler {
	return RequireForParam(policy.Self, param)
}

// SelfOrAdminRequired allows the addressed user or any admin.
func SelfOrAdminRequired(param string) fiber.Handler {
	return RequireForParam(policy.OwnerOrAdmin, param)
}
