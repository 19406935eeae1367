package service

import (
	"context"
	"log/slog"

	"scribe/internal/auth"
	"scribe/internal/mailer"
	"scribe/internal/models"
	"scribe/internal/repository"
	"scribe/internal/validation"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgVerifyEmailSent    = "we sent to you an email, please verify your email address"
	msgInvalidLink        = "invalid link"
)

// AuthService handles registration, login and email verification.
type AuthService struct {
	users        repository.UserRepository
	tokens       *auth.TokenIssuer
	mail         mailer.Mailer
	clientDomain string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the profile summary returned with a fresh bearer token.
type LoginResult struct {
	ID           uint         `json:"id"`
	Username     string       `json:"username"`
	IsAdmin      bool         `json:"isAdmin"`
	ProfilePhoto models.Image `json:"profilePhoto"`
	Token        string       `json:"token"`
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenIssuer,
	mail mailer.Mailer,
	clientDomain string,
) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		mail:         mail,
		clientDomain: clientDomain,
	}
}

// Register creates an unverified account and mails its verification link.
// Mail delivery failures are logged and never fail the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if err := validation.First(
		validation.ValidateUsername(username),
		validation.ValidateEmail(email),
		validation.ValidatePassword(in.Password),
	); err != nil {
		return nil, invalid(err)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("user already exist")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	token, err := auth.NewOneTimeToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:          username,
		Email:             email,
		Password:          hash,
		ProfilePhoto:      models.Image{URL: models.DefaultProfilePhotoURL},
		VerificationToken: &token,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerification(ctx, user)
	return user, nil
}

// Login checks credentials. Unknown emails and wrong passwords produce the
// same error. Unverified accounts get a fresh copy of their verification
// link and are denied.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.First(
		validation.ValidateEmail(email),
		validation.Required("password", in.Password),
	); err != nil {
		return nil, invalid(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		auth.RejectUnknown(in.Password)
		return nil, models.NewUnauthorizedError(msgInvalidCredentials)
	}
	if !auth.CheckPassword(in.Password, user.Password) {
		return nil, models.NewUnauthorizedError(msgInvalidCredentials)
	}

	if !user.IsAccountVerified {
		if !user.HasToken() {
			token, err := auth.NewOneTimeToken()
			if err != nil {
				return nil, models.NewInternalError(err)
			}
			user.VerificationToken = &token
			if err := s.users.Update(ctx, user, "VerificationToken"); err != nil {
				return nil, err
			}
		}
		s.sendVerification(ctx, user)
		return nil, models.NewForbiddenError(msgVerifyEmailSent)
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{
		ID:           user.ID,
		Username:     user.Username,
		IsAdmin:      user.IsAdmin,
		ProfilePhoto: user.ProfilePhoto,
		Token:        token,
	}, nil
}

// VerifyAccount consumes a verification token.
func (s *AuthService) VerifyAccount(ctx context.Context, token string) error {
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewValidationError(msgInvalidLink)
	}
	user.IsAccountVerified = true
	user.VerificationToken = nil
	return s.users.Update(ctx, user, "IsAccountVerified", "VerificationToken")
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) {
	if s.mail == nil || !user.HasToken() {
		return
	}
	msg, err := mailer.VerificationEmail(user.Email, s.clientDomain+"/verify/"+*user.VerificationToken)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		warnBestEffort(ctx, "send_verification_email", err, slog.Uint64("user_id", uint64(user.ID)))
	}
}
