package handler

import (
	catalogapp "github.com/brightcart/backend/internal/application/catalog"
	"github.com/brightcart/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler handles product catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// CreateProductRequest represents a request to create a product
// @Description Request body for creating a new product
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200" example:"Wireless Mouse"`
	Description string  `json:"description" binding:"max=2000" example:"Ergonomic 2.4GHz wireless mouse"`
	Price       float64 `json:"price" binding:"required,gt=0" example:"29.99"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid" example:"7b68bd05-5c84-46e0-96b8-5c1d0a721131"`
}

// UpdateProductRequest represents a request to update a product
// @Description Request body for updating a product
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200" example:"Wireless Mouse v2"`
	Description *string  `json:"description" binding:"omitempty,max=2000" example:"Updated description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0" example:"34.99"`
	CategoryID  *string  `json:"category_id" binding:"omitempty,uuid" example:"7b68bd05-5c84-46e0-96b8-5c1d0a721131"`
}

// ListProductsRequest represents query parameters for listing products
// @Description Query parameters for the product listing endpoint
type ListProductsRequest struct {
	Keyword    string `form:"keyword" binding:"omitempty,max=200"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RequestImageUploadRequest represents a request for a presigned image upload
// @Description Request body for requesting a product image upload URL
type RequestImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required" example:"image/png"`
}

// ConfirmImageUploadRequest represents a request to attach an uploaded image
// @Description Request body for confirming a completed image upload
type ConfirmImageUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500" example:"products/7b68bd05/image.png"`
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product creation request"
// @Success      201 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       toDecimal(req.Price),
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID")
			return
		}
		input.CategoryID = &id
	}

	product, err := h.productService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        category_id query string false "Filter by category"
// @Param        status query string false "Filter by status" Enums(active, inactive)
// @Param        page query int false "Page number (default 1)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} APIResponse[catalogapp.ProductListResult]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := catalog.ProductFilter{}.
		WithKeyword(req.Keyword).
		WithPagination(req.Page, req.PageSize)
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID")
			return
		}
		filter = filter.WithCategory(id)
	}
	if req.Status != "" {
		filter = filter.WithStatus(catalog.ProductStatus(req.Status))
	}

	result, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Products, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body UpdateProductRequest true "Product update request"
// @Success      200 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Price != nil {
		input.Price = toDecimalPtr(*req.Price)
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID")
			return
		}
		input.CategoryID = &categoryID
	}

	product, err := h.productService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Activate godoc
// @ID           activateProduct
// @Summary      Activate a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Deactivate godoc
// @ID           deactivateProduct
// @Summary      Deactivate a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RequestImageUpload godoc
// @ID           requestProductImageUpload
// @Summary      Request a presigned product image upload URL
// @Description  Returns a presigned upload target. Nothing is recorded on the product until the upload is confirmed.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body RequestImageUploadRequest true "Upload request"
// @Success      200 {object} APIResponse[catalogapp.ImageUploadDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id}/image [post]
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req RequestImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	upload, err := h.imageService.RequestUpload(c.Request.Context(), catalogapp.RequestImageUploadInput{
		ProductID:   id,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, upload)
}

// ConfirmImageUpload godoc
// @ID           confirmProductImageUpload
// @Summary      Attach an uploaded image to a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body ConfirmImageUploadRequest true "Confirmation request"
// @Success      200 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id}/image/confirm [post]
func (h *ProductHandler) ConfirmImageUpload(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.imageService.ConfirmUpload(c.Request.Context(), id, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetImageURL godoc
// @ID           getProductImageURL
// @Summary      Get a presigned product image download URL
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ImageURLDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id}/image [get]
func (h *ProductHandler) GetImageURL(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	imageURL, err := h.imageService.GetImageURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, imageURL)
}

// DeleteImage godoc
// @ID           deleteProductImage
// @Summary      Remove a product's image
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/products/{id}/image [delete]
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.imageService.DeleteImage(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
