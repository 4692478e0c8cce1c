package service

import (
	"context"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

// CategoryService exposes the seeded catalog taxonomy.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}
