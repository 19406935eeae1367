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

// CategoryService manages the admin-curated category list.
type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) CreateCategory(ctx context.Context, caller *auth.Identity, title string) (*models.Category, error) {
	if err := policy.Admin(caller, 0); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if err := validation.ValidateCategory("title", title); err != nil {
		return nil, invalid(err)
	}
	category := &models.Category{Title: title, UserID: caller.UserID}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, caller *auth.Identity, id uint) (*models.Category, error) {
	if err := policy.Admin(caller, 0); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return nil, err
	}
	return category, nil
}
