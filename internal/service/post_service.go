package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"scribe/internal/auth"
	"scribe/internal/media"
	"scribe/internal/models"
	"scribe/internal/policy"
	"scribe/internal/repository"
	"scribe/internal/validation"
)

type PostService struct {
	posts          repository.PostRepository
	users          repository.UserRepository
	store          media.Store
	maxUploadBytes int64
	publish        PublishFunc
}

type CreatePostInput struct {
	Title       string
	Description string
	Category    string
	Image       *media.Upload
}

// UpdatePostInput carries the editable post fields. Nil fields are left untouched.
type UpdatePostInput struct {
	Title       *string
	Description *string
	Category    *string
}

// ListPostsInput holds the raw query parameters of the post list.
type ListPostsInput struct {
	PageNumber string
	Category   string
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	store media.Store,
	maxUploadBytes int64,
	publish PublishFunc,
) *PostService {
	return &PostService{
		posts:          posts,
		users:          users,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		publish:        publish,
	}
}

func (s *PostService) CreatePost(ctx context.Context, caller *auth.Identity, in CreatePostInput) (*models.Post, error) {
	if err := policy.Authenticated(caller, 0); err != nil {
		return nil, err
	}
	if in.Image == nil {
		return nil, models.NewValidationError("no image provided")
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if err := validation.First(
		validation.ValidatePostTitle(title),
		validation.ValidatePostDescription(description),
		validation.ValidateCategory("category", category),
	); err != nil {
		return nil, invalid(err)
	}

	prepared, err := prepareUpload(in.Image, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	if _, err := activeCaller(ctx, s.users, caller); err != nil {
		return nil, err
	}
	img, err := s.store.Upload(ctx, prepared)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       title,
		Description: description,
		Category:    category,
		Image:       img,
		UserID:      caller.UserID,
		Likes:       []models.PostLike{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if delErr := s.store.Delete(ctx, img.PublicID); delErr != nil {
			warnBestEffort(ctx, "delete_orphaned_image", delErr, slog.String("public_id", img.PublicID))
		}
		return nil, err
	}
	return post, nil
}

// ListPosts returns a page of three posts when PageNumber is set, the posts
// of one category when Category is set and every post otherwise. All lists
// are newest first.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.Post, error) {
	opts := repository.PostListOptions{Category: strings.TrimSpace(in.Category)}
	if raw := strings.TrimSpace(in.PageNumber); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return nil, models.NewValidationError("pageNumber must be a positive integer")
		}
		opts.Page = page
	}
	posts, err := s.posts.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) CountPosts(ctx context.Context) (int64, error) {
	return s.posts.Count(ctx)
}

func (s *PostService) UpdatePost(ctx context.Context, caller *auth.Identity, id uint, in UpdatePostInput) (*models.Post, error) {
	var fields []string
	var errs []error
	if in.Title != nil {
		*in.Title = strings.TrimSpace(*in.Title)
		errs = append(errs, validation.ValidatePostTitle(*in.Title))
		fields = append(fields, "Title")
	}
	if in.Description != nil {
		*in.Description = strings.TrimSpace(*in.Description)
		errs = append(errs, validation.ValidatePostDescription(*in.Description))
		fields = append(fields, "Description")
	}
	if in.Category != nil {
		*in.Category = strings.TrimSpace(*in.Category)
		errs = append(errs, validation.ValidateCategory("category", *in.Category))
		fields = append(fields, "Category")
	}
	if err := validation.First(errs...); err != nil {
		return nil, invalid(err)
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Owner(caller, post.UserID); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return post, nil
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Description != nil {
		post.Description = *in.Description
	}
	if in.Category != nil {
		post.Category = *in.Category
	}
	if err := s.posts.Update(ctx, post, fields...); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// UpdatePostImage swaps the post's image. Removing the old asset is best effort.
func (s *PostService) UpdatePostImage(ctx context.Context, caller *auth.Identity, id uint, upload *media.Upload) (*models.Post, error) {
	prepared, err := prepareUpload(upload, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Owner(caller, post.UserID); err != nil {
		return nil, err
	}

	if post.Image.HasAsset() {
		if err := s.store.Delete(ctx, post.Image.PublicID); err != nil {
			warnBestEffort(ctx, "delete_post_image", err,
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("public_id", post.Image.PublicID))
		}
	}

	img, err := s.store.Upload(ctx, prepared)
	if err != nil {
		return nil, err
	}
	post.Image = img
	if err := s.posts.Update(ctx, post, "image_url", "image_public_id"); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// DeletePost removes the post with its comments and likes, then its stored
// image. An image failure is reported but the rows stay deleted.
func (s *PostService) DeletePost(ctx context.Context, caller *auth.Identity, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.OwnerOrAdmin(caller, post.UserID); err != nil {
		return nil, err
	}

	if err := s.posts.DeleteCascade(ctx, id); err != nil {
		return nil, err
	}
	if post.Image.HasAsset() {
		if err := s.store.Delete(ctx, post.Image.PublicID); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// ToggleLike adds the caller to the post's like set, or removes them if
// already present.
func (s *PostService) ToggleLike(ctx context.Context, caller *auth.Identity, id uint) (*models.Post, error) {
	if err := policy.Authenticated(caller, 0); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := activeCaller(ctx, s.users, caller); err != nil {
		return nil, err
	}

	liked, err := s.posts.IsLiked(ctx, caller.UserID, id)
	if err != nil {
		return nil, err
	}
	if liked {
		err = s.posts.Unlike(ctx, caller.UserID, id)
	} else {
		err = s.posts.Like(ctx, caller.UserID, id)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !liked && post.UserID != caller.UserID && s.publish != nil {
		s.publish(ctx, post.UserID, EventPostLiked, map[string]interface{}{
			"postId": post.ID,
			"userId": caller.UserID,
			"title":  post.Title,
			"likes":  len(updated.Likes),
		})
	}
	return updated, nil
}
