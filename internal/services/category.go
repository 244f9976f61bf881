package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventboard/internal/domain"
)

const maxCategoryNameLen = 50

type categoryService struct {
	categoryRepo domain.CategoryRepository
}

func NewCategoryService(categoryRepo domain.CategoryRepository) domain.CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name, err := validCategoryName(name)
	if err != nil {
		return nil, err
	}
	cat := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) Update(ctx context.Context, id, name string) (*domain.Category, error) {
	name, err := validCategoryName(name)
	if err != nil {
		return nil, err
	}
	cat := &domain.Category{ID: id, Name: name}
	if err := s.categoryRepo.Update(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *categoryService) List(ctx context.Context, from, size int) ([]*domain.Category, error) {
	cats, err := s.categoryRepo.List(ctx, from, size)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("category not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func validCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("category name cannot be blank: %w", domain.ErrValidation)
	}
	if len(name) > maxCategoryNameLen {
		return "", fmt.Errorf("category name must be at most %d characters: %w", maxCategoryNameLen, domain.ErrValidation)
	}
	return name, nil
}
