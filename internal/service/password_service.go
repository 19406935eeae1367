package service

import (
	"context"
	"fmt"

	"scribe/internal/auth"
	"scribe/internal/mailer"
	"scribe/internal/models"
	"scribe/internal/repository"
	"scribe/internal/validation"
)

// PasswordService issues and consumes password reset links.
type PasswordService struct {
	users        repository.UserRepository
	mail         mailer.Mailer
	clientDomain string
}

func NewPasswordService(users repository.UserRepository, mail mailer.Mailer, clientDomain string) *PasswordService {
	return &PasswordService{users: users, mail: mail, clientDomain: clientDomain}
}

// SendResetLink mails a reset link to the account registered under email.
// An existing one-time token is reused.
func (s *PasswordService) SendResetLink(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return invalid(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("user with given email")
	}

	if !user.HasToken() {
		token, err := auth.NewOneTimeToken()
		if err != nil {
			return models.NewInternalError(err)
		}
		user.VerificationToken = &token
		if err := s.users.Update(ctx, user, "VerificationToken"); err != nil {
			return err
		}
	}

	link := fmt.Sprintf("%s/reset-password/%d/%s", s.clientDomain, user.ID, *user.VerificationToken)
	msg, err := mailer.ResetPasswordEmail(user.Email, link)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		if models.IsCode(err, models.CodeDelegate) {
			return err
		}
		return models.NewDelegateError("email delivery", err)
	}
	return nil
}

// CheckResetLink reports whether token is the live token of userID.
func (s *PasswordService) CheckResetLink(ctx context.Context, userID uint, token string) error {
	_, err := s.lookup(ctx, userID, token)
	return err
}

// ResetPassword replaces the password of userID, verifies the account and
// consumes the token.
func (s *PasswordService) ResetPassword(ctx context.Context, userID uint, token, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return invalid(err)
	}
	user, err := s.lookup(ctx, userID, token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash
	user.IsAccountVerified = true
	user.VerificationToken = nil
	return s.users.Update(ctx, user, "Password", "IsAccountVerified", "VerificationToken")
}

func (s *PasswordService) lookup(ctx context.Context, userID uint, token string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewValidationError(msgInvalidLink)
		}
		return nil, err
	}
	if !user.TokenMatches(token) {
		return nil, models.NewValidationError(msgInvalidLink)
	}
	return user, nil
}
