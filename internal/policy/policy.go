// Package policy holds the named authorization predicates shared by route
// middleware and services. Every check returns nil when the caller is allowed,
// an UNAUTHORIZED AppError when no identity is present and a FORBIDDEN AppError
// when the identity lacks the required rights.
package policy

import (
	"scribe/internal/auth"
	"scribe/internal/models"
)

// Messages returned to callers that fail a policy.
const (
	MsgNoToken      = "no token provided, access denied"
	MsgAdminOnly    = "not allowed, only admin"
	MsgSelfOnly     = "not allowed, only user himself"
	MsgOwnerOnly    = "access denied, forbidden"
	MsgOwnerOrAdmin = "not allowed, only user himself or admin"
)

// Check is a policy evaluated against a caller and the owner of the target resource.
type Check func(caller *auth.Identity, ownerID uint) error

// Public always allows.
func Public(*auth.Identity, uint) error {
	return nil
}

// Authenticated allows any caller with an identity.
func Authenticated(caller *auth.Identity, _ uint) error {
	if caller == nil {
		return models.NewUnauthorizedError(MsgNoToken)
	}
	return nil
}

// Admin allows only administrators.
func Admin(caller *auth.Identity, _ uint) error {
	if caller == nil {
		return models.NewUnauthorizedError(MsgNoToken)
	}
	if !caller.IsAdmin {
		return models.NewForbiddenError(MsgAdminOnly)
	}
	return nil
}

// Self allows only the account holder. Admins are not exempt.
func Self(caller *auth.Identity, userID uint) error {
	if caller == nil {
		return models.NewUnauthorizedError(MsgNoToken)
	}
	if caller.UserID != userID {
		return models.NewForbiddenError(MsgSelfOnly)
	}
	return nil
}

// Owner allows only the owner of a resource. Admins are not exempt.
func Owner(caller *auth.Identity, ownerID uint) error {
	if caller == nil {
		return models.NewUnauthorizedError(MsgNoToken)
	}
	if caller.UserID != ownerID {
		return models.NewForbiddenError(MsgOwnerOnly)
	}
	return nil
}

// OwnerOrAdmin allows the owner of a resource or any administrator.
func OwnerOrAdmin(caller *auth.Identity, ownerID uint) error {
	if caller == nil {
		return models.NewUnauthorizedError(MsgNoToken)
	}
	if caller.UserID != ownerID && !caller.IsAdmin {
		return models.NewForbiddenError(MsgOwnerOrAdmin)
	}
	return nil
}
