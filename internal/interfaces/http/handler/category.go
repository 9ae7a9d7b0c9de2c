package handler

import (
	catalogapp "github.com/brightcart/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category catalog API endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// CreateCategoryRequest represents a request to create a category
// @Description Request body for creating a new category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200" example:"Peripherals"`
}

// RenameCategoryRequest represents a request to rename a category
// @Description Request body for renaming a category
type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200" example:"Accessories"`
}

// Create godoc
// @ID           createCategory
// @Summary      Create a category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body CreateCategoryRequest true "Category creation request"
// @Success      201 {object} APIResponse[catalogapp.CategoryDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// GetByID godoc
// @ID           getCategory
// @Summary      Get a category
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} APIResponse[catalogapp.CategoryDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// List godoc
// @ID           listCategories
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalogapp.CategoryDTO]
// @Router       /catalog/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}

// Rename godoc
// @ID           renameCategory
// @Summary      Rename a category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body RenameCategoryRequest true "Rename request"
// @Success      200 {object} APIResponse[catalogapp.CategoryDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/categories/{id} [put]
func (h *CategoryHandler) Rename(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// Delete godoc
// @ID           deleteCategory
// @Summary      Delete a category
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/catalog/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
