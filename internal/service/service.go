// Package service holds the business rules behind each HTTP operation.
// Services load resources, evaluate resource-level policies and drive the
// repositories and external delegates.
package service

import (
	"context"
	"log/slog"

	"scribe/internal/auth"
	"scribe/internal/media"
	"scribe/internal/middleware"
	"scribe/internal/models"
	"scribe/internal/policy"
	"scribe/internal/repository"
)

// msgAccountGone is returned to a token whose account has been deleted.
const msgAccountGone = "account no longer exists, access denied"

// Event type constants prevent typos in event names.
const (
	EventPostLiked      = "post_liked"
	EventCommentCreated = "comment_created"
)

// PublishFunc delivers a realtime event to one user. A nil PublishFunc
// disables events.
type PublishFunc func(ctx context.Context, userID uint, eventType string, payload map[string]interface{})

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return models.NewValidationError(err.Error())
}

func warnBestEffort(ctx context.Context, operation string, err error, attrs ...slog.Attr) {
	args := []any{slog.String("operation", operation), slog.String("error", err.Error())}
	for _, a := range attrs {
		args = append(args, a)
	}
	middleware.Logger.WarnContext(ctx, "best-effort operation failed", args...)
}

// prepareUpload validates an incoming image. A nil upload means the request
// carried no file.
func prepareUpload(in *media.Upload, maxBytes int64) (media.Upload, error) {
	if in == nil {
		return media.Upload{}, models.NewValidationError("no image provided")
	}
	return media.Prepare(*in, maxBytes)
}

// activeCaller loads the account behind caller. Tokens outlive deleted
// accounts, so writes attributed to the caller must go through here.
func activeCaller(ctx context.Context, users repository.UserRepository, caller *auth.Identity) (*models.User, error) {
	if err := policy.Authenticated(caller, 0); err != nil {
		return nil, err
	}
	user, err := users.GetByID(ctx, caller.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError(msgAccountGone)
		}
		return nil, err
	}
	return user, nil
}
