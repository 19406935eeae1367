package repository

import (
	"context"

	"scribe/internal/cache"
	"scribe/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostsPerPage is the page size of the paginated post list.
const PostsPerPage = 3

// PostListOptions selects the posts returned by List. Page takes precedence
// over Category; zero values mean "all posts".
type PostListOptions struct {
	Page     int
	Category string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, opts PostListOptions) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Post, error)
	ImageIDsByUser(ctx context.Context, userID uint) ([]string, error)
	IDsByUser(ctx context.Context, userID uint) ([]uint, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *models.Post, fields ...string) error
	DeleteCascade(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns a post with its owner, like set and comments.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		err := r.db.WithContext(ctx).
			Preload("User").
			Preload("Likes").
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC")
			}).
			First(&post, id).Error
		return translate(err, "post")
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts newest first, each with its owner, like set and comments.
func (r *postRepository) List(ctx context.Context, opts PostListOptions) ([]models.Post, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Order("created_at DESC").
		Order("id DESC")

	switch {
	case opts.Page > 0:
		q = q.Offset((opts.Page - 1) * PostsPerPage).Limit(PostsPerPage)
	case opts.Category != "":
		q = q.Where("category = ?", opts.Category)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ImageIDsByUser returns the stored asset ids of every image owned by userID.
func (r *postRepository) ImageIDsByUser(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND image_public_id <> ''", userID).
		Pluck("image_public_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *postRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Update writes the named struct fields, or every column when none are named.
func (r *postRepository) Update(ctx context.Context, post *models.Post, fields ...string) error {
	q := r.db.WithContext(ctx).Model(post).Omit(clause.Associations)
	var err error
	if len(fields) > 0 {
		err = q.Select(fields).Updates(post).Error
	} else {
		err = q.Save(post).Error
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// DeleteCascade removes a post with its comments and like rows in one transaction.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate(err, "post")
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// Like adds userID to the post's like set. Liking twice is a no-op.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Create(&models.PostLike{PostID: postID, UserID: userID}).Error
	if err != nil && !isUniqueConstraintError(err) {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
