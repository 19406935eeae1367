package service

import (
	"context"
	"strings"

	"scribe/internal/auth"
	"scribe/internal/models"
	"scribe/internal/policy"
	"scribe/internal/repository"
	"scribe/internal/validation"
)

// CommentService manages comments on posts.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	publish  PublishFunc
}

type CreateCommentInput struct {
	PostID uint
	Text   string
}

// NewCommentService creates a new comment service
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	publish PublishFunc,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		publish:  publish,
	}
}

// CreateComment stores a comment with a snapshot of the author's username.
func (s *CommentService) CreateComment(ctx context.Context, caller *auth.Identity, in CreateCommentInput) (*models.Comment, error) {
	if err := policy.Authenticated(caller, 0); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if in.PostID == 0 {
		return nil, models.NewValidationError("postId is required")
	}
	if err := validation.Required("text", text); err != nil {
		return nil, invalid(err)
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	author, err := activeCaller(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.ID,
		UserID:   author.ID,
		Username: author.Username,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.User = author

	if post.UserID != author.ID && s.publish != nil {
		s.publish(ctx, post.UserID, EventCommentCreated, map[string]interface{}{
			"postId":    post.ID,
			"commentId": comment.ID,
			"userId":    author.ID,
			"username":  author.Username,
			"text":      comment.Text,
		})
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.comments.List(ctx)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) CountComments(ctx context.Context) (int64, error) {
	return s.comments.Count(ctx)
}

// UpdateComment changes the text of a comment. Only its author may do so.
func (s *CommentService) UpdateComment(ctx context.Context, caller *auth.Identity, id uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if err := validation.Required("text", text); err != nil {
		return nil, invalid(err)
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Owner(caller, comment.UserID); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.comments.UpdateText(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, caller *auth.Identity, id uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.OwnerOrAdmin(caller, comment.UserID); err != nil {
		return nil, err
	}
	if err := s.comments.Delete(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
