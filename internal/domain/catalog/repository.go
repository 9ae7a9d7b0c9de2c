package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
}

// ProductFilter contains filter options for querying products
type ProductFilter struct {
	Keyword    string
	CategoryID *uuid.UUID
	Status     *ProductStatus

	Page     int
	PageSize int
}

// NewProductFilter creates a new ProductFilter with default values
func NewProductFilter() ProductFilter {
	return ProductFilter{
		Page:     1,
		PageSize: 20,
	}
}

// WithKeyword sets the search keyword
func (f ProductFilter) WithKeyword(keyword string) ProductFilter {
	f.Keyword = keyword
	return f
}

// WithCategory sets the category filter
func (f ProductFilter) WithCategory(categoryID uuid.UUID) ProductFilter {
	f.CategoryID = &categoryID
	return f
}

// WithStatus sets the status filter
func (f ProductFilter) WithStatus(status ProductStatus) ProductFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f ProductFilter) WithPagination(page, pageSize int) ProductFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f ProductFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ProductFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
