package catalog

import (
	"strings"
	"time"

	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a catalog item. Storefront catalog endpoints are plain
// request/response wrappers around this aggregate.
type Product struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	ImageKey    string          `gorm:"type:varchar(500)"` // object storage key for the product image
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Price:             price,
		Status:            ProductStatusActive,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetImageKey stores the object storage key of the product image
func (p *Product) SetImageKey(key string) {
	p.ImageKey = key
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate makes the product visible in the storefront
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
