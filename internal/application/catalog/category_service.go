package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/brightcart/backend/internal/domain/catalog"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// CategoryDTO represents category data transfer object
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, name string) (*CategoryDTO, error) {
	category, err := catalog.NewCategory(name)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("CATEGORY_EXISTS", "Category name already exists")
		}
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create category")
	}

	s.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name))

	return toCategoryDTO(category), nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		s.logger.Error("Failed to find category", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find category")
	}

	return toCategoryDTO(category), nil
}

// List retrieves all categories
func (s *CategoryService) List(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list categories")
	}

	dtos := make([]CategoryDTO, len(categories))
	for i, category := range categories {
		dtos[i] = *toCategoryDTO(category)
	}

	return dtos, nil
}

// Rename changes a category's name
func (s *CategoryService) Rename(ctx context.Context, id uuid.UUID, name string) (*CategoryDTO, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find category")
	}

	if err := category.Rename(name); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("CATEGORY_EXISTS", "Category name already exists")
		}
		s.logger.Error("Failed to update category", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update category")
	}

	s.logger.Info("Category renamed", zap.String("category_id", id.String()))

	return toCategoryDTO(category), nil
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find category")
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		s.logger.Error("Failed to delete category", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete category")
	}

	s.logger.Info("Category deleted", zap.String("category_id", id.String()))

	return nil
}

func toCategoryDTO(category *catalog.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		SortOrder: category.SortOrder,
		CreatedAt: category.CreatedAt,
	}
}
