package persistence

import (
	"context"
	"errors"

	"github.com/brightcart/backend/internal/domain/catalog"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category. A duplicate name comes back as
// shared.ErrAlreadyExists.
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	return translateWriteError(r.db.WithContext(ctx).Create(category).Error)
}

// Update updates an existing category
func (r *GormCategoryRepository) Update(ctx context.Context, category *catalog.Category) error {
	result := r.db.WithContext(ctx).Save(category)
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a category by ID. Products keep their category_id;
// the service layer clears assignments before removal.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindAll returns all categories in display order
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	var categories []*catalog.Category
	if err := r.db.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Ensure GormCategoryRepository implements catalog.CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
