package catalog

import (
	"strings"
	"time"

	"github.com/brightcart/backend/internal/domain/shared"
)

// Category groups products for storefront browsing
type Category struct {
	shared.BaseAggregateRoot
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex"`
	SortOrder int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot exceed 100 characters")
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
