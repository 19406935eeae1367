package service

import (
	"context"
	"log/slog"

	"scribe/internal/auth"
	"scribe/internal/cache"
	"scribe/internal/media"
	"scribe/internal/models"
	"scribe/internal/policy"
	"scribe/internal/repository"
	"scribe/internal/validation"
)

// UserService manages profiles and account deletion.
type UserService struct {
	users          repository.UserRepository
	posts          repository.PostRepository
	store          media.Store
	maxUploadBytes int64
}

// UpdateProfileInput carries the editable profile fields. Nil fields are left untouched.
type UpdateProfileInput struct {
	Username *string
	Password *string
	Bio      *string
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	store media.Store,
	maxUploadBytes int64,
) *UserService {
	return &UserService{
		users:          users,
		posts:          posts,
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// GetProfile returns a user together with their posts, newest first.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetPublicByID(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Posts = posts
	return user, nil
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

// UpdateProfile edits the caller's own profile. A new password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, caller *auth.Identity, id uint, in UpdateProfileInput) (*models.User, error) {
	if err := policy.Self(caller, id); err != nil {
		return nil, err
	}

	var fields []string
	var username, hash string
	if in.Username != nil {
		username = validation.NormalizeUsername(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, invalid(err)
		}
		fields = append(fields, "Username")
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, invalid(err)
		}
		h, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		hash = h
		fields = append(fields, "Password")
	}
	if in.Bio != nil {
		fields = append(fields, "Bio")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if in.Username != nil {
			user.Username = username
		}
		if in.Password != nil {
			user.Password = hash
		}
		if in.Bio != nil {
			user.Bio = *in.Bio
		}
		if err := s.users.Update(ctx, user, fields...); err != nil {
			return nil, err
		}
		s.invalidateAuthoredPosts(ctx, id)
	}
	return s.GetProfile(ctx, id)
}

// UploadProfilePhoto replaces the caller's profile photo. The previous asset
// is removed first; a failure there aborts the upload.
func (s *UserService) UploadProfilePhoto(ctx context.Context, caller *auth.Identity, upload *media.Upload) (models.Image, error) {
	if err := policy.Authenticated(caller, 0); err != nil {
		return models.Image{}, err
	}
	prepared, err := prepareUpload(upload, s.maxUploadBytes)
	if err != nil {
		return models.Image{}, err
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return models.Image{}, err
	}
	if user.ProfilePhoto.HasAsset() {
		if err := s.store.Delete(ctx, user.ProfilePhoto.PublicID); err != nil {
			return models.Image{}, err
		}
	}

	img, err := s.store.Upload(ctx, prepared)
	if err != nil {
		return models.Image{}, err
	}
	user.ProfilePhoto = img
	if err := s.users.Update(ctx, user, "profile_photo_url", "profile_photo_public_id"); err != nil {
		return models.Image{}, err
	}
	s.invalidateAuthoredPosts(ctx, user.ID)
	return img, nil
}

// DeleteAccount removes a user and everything they authored. Stored images
// are deleted first; if that fails no rows are touched.
func (s *UserService) DeleteAccount(ctx context.Context, caller *auth.Identity, id uint) error {
	if err := policy.OwnerOrAdmin(caller, id); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	imageIDs, err := s.posts.ImageIDsByUser(ctx, id)
	if err != nil {
		return err
	}
	if len(imageIDs) > 0 {
		if err := s.store.DeleteMany(ctx, imageIDs); err != nil {
			return err
		}
	}
	if user.ProfilePhoto.HasAsset() {
		if err := s.store.Delete(ctx, user.ProfilePhoto.PublicID); err != nil {
			return err
		}
	}

	return s.users.DeleteCascade(ctx, id)
}

// invalidateAuthoredPosts drops cached posts that embed the user's profile.
func (s *UserService) invalidateAuthoredPosts(ctx context.Context, userID uint) {
	ids, err := s.posts.IDsByUser(ctx, userID)
	if err != nil {
		warnBestEffort(ctx, "invalidate_user_posts", err, slog.Uint64("user_id", uint64(userID)))
		return
	}
	cache.InvalidatePosts(ctx, ids)
}
