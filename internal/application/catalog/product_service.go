package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/brightcart/backend/internal/domain/catalog"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles catalog product operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// CreateProductInput contains input for creating a product
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  *uuid.UUID
}

// UpdateProductInput contains input for updating a product
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *uuid.UUID
}

// ProductDTO represents product data transfer object
type ProductDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       string     `json:"price"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ImageKey    string     `json:"image_key,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProductListResult represents paginated product list result
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	s.logger.Info("Creating new product", zap.String("name", input.Name))

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
			}
			s.logger.Error("Failed to check category existence", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate category")
		}
	}

	product, err := catalog.NewProduct(input.Name, input.Price)
	if err != nil {
		return nil, err
	}
	product.Description = input.Description
	if input.CategoryID != nil {
		product.SetCategory(input.CategoryID)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create product")
	}

	s.logger.Info("Product created successfully",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	return toProductDTO(product), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		s.logger.Error("Failed to find product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}

	return toProductDTO(product), nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter catalog.ProductFilter) (*ProductListResult, error) {
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list products")
	}

	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	productDTOs := make([]ProductDTO, len(products))
	for i, product := range products {
		productDTOs[i] = *toProductDTO(product)
	}

	return &ProductListResult{
		Products:   productDTOs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates a product's information
func (s *ProductService) Update(ctx context.Context, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.productRepo.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}

	name := product.Name
	if input.Name != nil {
		name = *input.Name
	}
	description := product.Description
	if input.Description != nil {
		description = *input.Description
	}
	if err := product.Update(name, description); err != nil {
		return nil, err
	}

	if input.Price != nil {
		if err := product.SetPrice(*input.Price); err != nil {
			return nil, err
		}
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
			}
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate category")
		}
		product.SetCategory(input.CategoryID)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update product")
	}

	s.logger.Info("Product updated", zap.String("product_id", input.ID.String()))

	return toProductDTO(product), nil
}

// Activate makes a product visible in the storefront
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	return s.setStatus(ctx, id, true)
}

// Deactivate hides a product from the storefront
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	return s.setStatus(ctx, id, false)
}

func (s *ProductService) setStatus(ctx context.Context, id uuid.UUID, active bool) (*ProductDTO, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}

	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product status", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update product status")
	}

	s.logger.Info("Product status updated",
		zap.String("product_id", id.String()),
		zap.String("status", string(product.Status)))

	return toProductDTO(product), nil
}

// Delete permanently removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find product")
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		s.logger.Error("Failed to delete product", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete product")
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))

	return nil
}

func toProductDTO(product *catalog.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.String(),
		CategoryID:  product.CategoryID,
		ImageKey:    product.ImageKey,
		Status:      string(product.Status),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
